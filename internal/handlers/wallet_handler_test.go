package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mattiachiarle/ezwallet-sub000/internal/authz"
	"github.com/mattiachiarle/ezwallet-sub000/internal/models"
	"github.com/mattiachiarle/ezwallet-sub000/internal/repository"
	"github.com/mattiachiarle/ezwallet-sub000/internal/service"
	"github.com/mattiachiarle/ezwallet-sub000/pkg/tokens"
)

const walletTestSecret = "test-secret-key-that-is-long-enough"

type walletFixture struct {
	handler *WalletHandler
	repo    *repository.InMemoryRepository
	codec   *tokens.Codec
}

func newWalletFixture(t *testing.T) *walletFixture {
	t.Helper()
	repo := repository.NewInMemoryRepository()
	codec := tokens.NewCodec(walletTestSecret, time.Hour, 168*time.Hour)
	handler := NewWalletHandler(service.NewWalletService(repo), authz.NewEvaluator(codec))
	return &walletFixture{handler: handler, repo: repo, codec: codec}
}

func (f *walletFixture) addUser(t *testing.T, username, email, role string) *models.User {
	t.Helper()
	user := &models.User{
		ID:           "id-" + username,
		Username:     username,
		Email:        email,
		PasswordHash: "unused",
		Role:         role,
		CreatedAt:    time.Now(),
	}
	if err := f.repo.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("Failed to seed user %s: %v", username, err)
	}
	return user
}

// sessionRequest builds a request holding a freshly minted cookie pair for
// the given user. An expired access token is minted when expiredAccess is
// set, which drives the renewal path.
func (f *walletFixture) sessionRequest(t *testing.T, method, target, body string, user *models.User, expiredAccess bool) *http.Request {
	t.Helper()
	claims := tokens.Claims{Username: user.Username, Email: user.Email, ID: user.ID, Role: user.Role}

	accessCodec := f.codec
	if expiredAccess {
		accessCodec = tokens.NewCodec(walletTestSecret, -time.Hour, -time.Hour)
	}
	access, err := accessCodec.IssueAccessToken(claims)
	if err != nil {
		t.Fatalf("Failed to issue access token: %v", err)
	}
	refresh, err := f.codec.IssueRefreshToken(claims)
	if err != nil {
		t.Fatalf("Failed to issue refresh token: %v", err)
	}

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	r := httptest.NewRequest(method, target, reader)
	r.AddCookie(&http.Cookie{Name: authz.AccessCookieName, Value: access})
	r.AddCookie(&http.Cookie{Name: authz.RefreshCookieName, Value: refresh})
	return r
}

// ============================================================================
// Category Endpoint Tests
// ============================================================================

func TestCreateCategoryRequiresAdmin(t *testing.T) {
	f := newWalletFixture(t)
	admin := f.addUser(t, "root", "root@example.com", models.RoleAdmin)
	regular := f.addUser(t, "alice", "alice@example.com", models.RoleRegular)

	tests := []struct {
		name       string
		user       *models.User
		wantStatus int
		wantError  string
	}{
		{name: "admin allowed", user: admin, wantStatus: http.StatusOK},
		{name: "regular denied", user: regular, wantStatus: http.StatusUnauthorized, wantError: authz.CauseWrongAdmin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `{"type":"` + tt.name + `","color":"#ff0000"}`
			r := f.sessionRequest(t, http.MethodPost, "/api/categories", body, tt.user, false)
			w := httptest.NewRecorder()
			f.handler.CreateCategory(w, r)

			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantError != "" {
				if resp := decodeEnvelope(t, w); resp["error"] != tt.wantError {
					t.Errorf("Expected error %q, got %v", tt.wantError, resp["error"])
				}
			}
		})
	}
}

func TestCreateCategoryWithoutCookies(t *testing.T) {
	f := newWalletFixture(t)

	r := httptest.NewRequest(http.MethodPost, "/api/categories", strings.NewReader(`{"type":"food","color":"#ff0000"}`))
	w := httptest.NewRecorder()
	f.handler.CreateCategory(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", w.Code)
	}
	if resp := decodeEnvelope(t, w); resp["error"] != authz.CauseUnauthorized {
		t.Errorf("Expected %q, got %v", authz.CauseUnauthorized, resp["error"])
	}
}

func TestCreateCategoryDuplicate(t *testing.T) {
	f := newWalletFixture(t)
	admin := f.addUser(t, "root", "root@example.com", models.RoleAdmin)

	body := `{"type":"food","color":"#ff0000"}`
	w := httptest.NewRecorder()
	f.handler.CreateCategory(w, f.sessionRequest(t, http.MethodPost, "/api/categories", body, admin, false))
	if w.Code != http.StatusOK {
		t.Fatalf("First create failed: %d", w.Code)
	}

	w = httptest.NewRecorder()
	f.handler.CreateCategory(w, f.sessionRequest(t, http.MethodPost, "/api/categories", body, admin, false))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for duplicate category, got %d", w.Code)
	}
}

func TestListCategoriesUserMode(t *testing.T) {
	f := newWalletFixture(t)
	alice := f.addUser(t, "alice", "alice@example.com", models.RoleRegular)
	f.repo.CreateCategory(context.Background(), &models.Category{Type: "food", Color: "#ff0000"})

	// Own categories: allowed.
	r := f.sessionRequest(t, http.MethodGet, "/api/users/alice/categories", "", alice, false)
	r.SetPathValue("username", "alice")
	w := httptest.NewRecorder()
	f.handler.ListCategories(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Someone else's path: denied.
	r = f.sessionRequest(t, http.MethodGet, "/api/users/bob/categories", "", alice, false)
	r.SetPathValue("username", "bob")
	w = httptest.NewRecorder()
	f.handler.ListCategories(w, r)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", w.Code)
	}
	if resp := decodeEnvelope(t, w); resp["error"] != authz.CauseWrongUser {
		t.Errorf("Expected %q, got %v", authz.CauseWrongUser, resp["error"])
	}
}

// ============================================================================
// Renewal Propagation Tests
// ============================================================================

func TestRenewalNoticeForwardedOnSuccess(t *testing.T) {
	f := newWalletFixture(t)
	alice := f.addUser(t, "alice", "alice@example.com", models.RoleRegular)

	r := f.sessionRequest(t, http.MethodGet, "/api/users/alice/categories", "", alice, true)
	r.SetPathValue("username", "alice")
	w := httptest.NewRecorder()
	f.handler.ListCategories(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	body := decodeEnvelope(t, w)
	if body["refreshedTokenMessage"] != authz.RefreshedMessage {
		t.Errorf("Expected renewal notice in response, got %v", body)
	}

	cookie := responseCookie(w, authz.AccessCookieName)
	if cookie == nil {
		t.Fatal("Expected replacement access cookie")
	}
	if _, err := f.codec.Verify(cookie.Value); err != nil {
		t.Errorf("Replacement cookie holds an unverifiable token: %v", err)
	}
}

func TestRenewalCookieSetEvenWhenDenied(t *testing.T) {
	f := newWalletFixture(t)
	alice := f.addUser(t, "alice", "alice@example.com", models.RoleRegular)

	// Expired access, valid refresh, but the route needs Admin.
	body := `{"type":"food","color":"#ff0000"}`
	r := f.sessionRequest(t, http.MethodPost, "/api/categories", body, alice, true)
	w := httptest.NewRecorder()
	f.handler.CreateCategory(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", w.Code)
	}
	if responseCookie(w, authz.AccessCookieName) == nil {
		t.Error("Replacement cookie expected even on denial")
	}
}

// ============================================================================
// Transaction Endpoint Tests
// ============================================================================

func TestCreateTransaction(t *testing.T) {
	f := newWalletFixture(t)
	alice := f.addUser(t, "alice", "alice@example.com", models.RoleRegular)
	f.repo.CreateCategory(context.Background(), &models.Category{Type: "food", Color: "#ff0000"})

	r := f.sessionRequest(t, http.MethodPost, "/api/users/alice/transactions", `{"type":"food","amount":42.5}`, alice, false)
	r.SetPathValue("username", "alice")
	w := httptest.NewRecorder()
	f.handler.CreateTransaction(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	body := decodeEnvelope(t, w)
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("Expected data object, got %v", body)
	}
	if data["username"] != "alice" || data["type"] != "food" || data["amount"] != 42.5 {
		t.Errorf("Unexpected transaction payload: %v", data)
	}
}

func TestCreateTransactionUnknownCategory(t *testing.T) {
	f := newWalletFixture(t)
	alice := f.addUser(t, "alice", "alice@example.com", models.RoleRegular)

	r := f.sessionRequest(t, http.MethodPost, "/api/users/alice/transactions", `{"type":"nope","amount":1}`, alice, false)
	r.SetPathValue("username", "alice")
	w := httptest.NewRecorder()
	f.handler.CreateTransaction(w, r)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", w.Code)
	}
}

func TestListAllTransactionsRequiresAdmin(t *testing.T) {
	f := newWalletFixture(t)
	alice := f.addUser(t, "alice", "alice@example.com", models.RoleRegular)

	r := f.sessionRequest(t, http.MethodGet, "/api/transactions", "", alice, false)
	w := httptest.NewRecorder()
	f.handler.ListTransactions(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", w.Code)
	}
}

// ============================================================================
// Group Endpoint Tests
// ============================================================================

func TestCreateGroupCallerMustBeMember(t *testing.T) {
	f := newWalletFixture(t)
	alice := f.addUser(t, "alice", "alice@example.com", models.RoleRegular)
	f.addUser(t, "bob", "bob@example.com", models.RoleRegular)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{
			name:       "caller in member list",
			body:       `{"name":"family","memberEmails":["alice@example.com","bob@example.com"]}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "caller not in member list",
			body:       `{"name":"others","memberEmails":["bob@example.com"]}`,
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := f.sessionRequest(t, http.MethodPost, "/api/groups", tt.body, alice, false)
			w := httptest.NewRecorder()
			f.handler.CreateGroup(w, r)

			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestGetGroupMemberOnly(t *testing.T) {
	f := newWalletFixture(t)
	alice := f.addUser(t, "alice", "alice@example.com", models.RoleRegular)
	carol := f.addUser(t, "carol", "carol@example.com", models.RoleRegular)

	f.repo.CreateGroup(context.Background(), &models.Group{
		Name:    "family",
		Members: []models.GroupMember{{Email: alice.Email, UserID: alice.ID}},
	})

	r := f.sessionRequest(t, http.MethodGet, "/api/groups/family", "", alice, false)
	r.SetPathValue("name", "family")
	w := httptest.NewRecorder()
	f.handler.GetGroup(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("Member should read the group, got %d", w.Code)
	}

	r = f.sessionRequest(t, http.MethodGet, "/api/groups/family", "", carol, false)
	r.SetPathValue("name", "family")
	w = httptest.NewRecorder()
	f.handler.GetGroup(w, r)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Outsider should be denied, got %d", w.Code)
	}
	if resp := decodeEnvelope(t, w); resp["error"] != authz.CauseWrongGroup {
		t.Errorf("Expected %q, got %v", authz.CauseWrongGroup, resp["error"])
	}
}

func TestAddGroupMembers(t *testing.T) {
	f := newWalletFixture(t)
	alice := f.addUser(t, "alice", "alice@example.com", models.RoleRegular)
	f.addUser(t, "bob", "bob@example.com", models.RoleRegular)

	f.repo.CreateGroup(context.Background(), &models.Group{
		Name:    "family",
		Members: []models.GroupMember{{Email: alice.Email, UserID: alice.ID}},
	})

	r := f.sessionRequest(t, http.MethodPost, "/api/groups/family/members", `{"emails":["bob@example.com"]}`, alice, false)
	r.SetPathValue("name", "family")
	w := httptest.NewRecorder()
	f.handler.AddGroupMembers(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	group, _ := f.repo.GetGroup(context.Background(), "family")
	if len(group.Members) != 2 {
		t.Errorf("Expected 2 members, got %d", len(group.Members))
	}
}

func TestGetGroupNotFound(t *testing.T) {
	f := newWalletFixture(t)
	alice := f.addUser(t, "alice", "alice@example.com", models.RoleRegular)

	r := f.sessionRequest(t, http.MethodGet, "/api/groups/ghost", "", alice, false)
	r.SetPathValue("name", "ghost")
	w := httptest.NewRecorder()
	f.handler.GetGroup(w, r)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", w.Code)
	}
}

// ============================================================================
// User Administration Tests
// ============================================================================

func TestListUsersRequiresAdmin(t *testing.T) {
	f := newWalletFixture(t)
	admin := f.addUser(t, "root", "root@example.com", models.RoleAdmin)
	regular := f.addUser(t, "alice", "alice@example.com", models.RoleRegular)

	r := f.sessionRequest(t, http.MethodGet, "/api/users", "", admin, false)
	w := httptest.NewRecorder()
	f.handler.ListUsers(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 for admin, got %d", w.Code)
	}

	var body struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if len(body.Data) != 2 {
		t.Errorf("Expected 2 users, got %d", len(body.Data))
	}

	r = f.sessionRequest(t, http.MethodGet, "/api/users", "", regular, false)
	w = httptest.NewRecorder()
	f.handler.ListUsers(w, r)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 for regular user, got %d", w.Code)
	}
}

func TestGetUserSelfOnly(t *testing.T) {
	f := newWalletFixture(t)
	alice := f.addUser(t, "alice", "alice@example.com", models.RoleRegular)

	r := f.sessionRequest(t, http.MethodGet, "/api/users/alice", "", alice, false)
	r.SetPathValue("username", "alice")
	w := httptest.NewRecorder()
	f.handler.GetUser(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	body := decodeEnvelope(t, w)
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("Expected data object, got %v", body)
	}
	if data["username"] != "alice" {
		t.Errorf("Unexpected user payload: %v", data)
	}
	if _, leaked := data["passwordHash"]; leaked {
		t.Error("Password hash must not be serialized")
	}
}

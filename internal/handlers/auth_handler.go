package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mattiachiarle/ezwallet-sub000/internal/authz"
	"github.com/mattiachiarle/ezwallet-sub000/internal/logging"
	"github.com/mattiachiarle/ezwallet-sub000/internal/models"
	"github.com/mattiachiarle/ezwallet-sub000/internal/ratelimit"
	"github.com/mattiachiarle/ezwallet-sub000/internal/repository"
	"github.com/mattiachiarle/ezwallet-sub000/internal/service"
	"github.com/mattiachiarle/ezwallet-sub000/pkg/tokens"
)

// AuthHandler exposes the session issuer over HTTP: registration, login
// (setting the two session cookies), and logout (clearing them).
type AuthHandler struct {
	auth    *service.AuthService
	codec   *tokens.Codec
	limiter ratelimit.Limiter
}

func NewAuthHandler(auth *service.AuthService, codec *tokens.Codec, limiter ratelimit.Limiter) *AuthHandler {
	return &AuthHandler{
		auth:    auth,
		codec:   codec,
		limiter: limiter,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, false)
}

func (h *AuthHandler) RegisterAdmin(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, true)
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request, admin bool) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var err error
	if admin {
		_, err = h.auth.RegisterAdmin(r.Context(), &req)
	} else {
		_, err = h.auth.Register(r.Context(), &req)
	}
	if err != nil {
		writeAuthError(w, err)
		return
	}

	writeData(w, http.StatusOK, map[string]string{"message": "User added successfully"}, "")
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ip := getClientIP(r)
	allowed, err := h.limiter.Allow(r.Context(), "login:"+ip)
	if err != nil {
		// Fail open: a broken limiter must not lock everyone out.
		slog.Warn("rate limiter unavailable", logging.Error(err), logging.IP(ip))
	} else if !allowed {
		writeError(w, http.StatusTooManyRequests, "too many login attempts")
		return
	}

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.auth.Login(r.Context(), &req)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	http.SetCookie(w, authz.AccessCookie(resp.AccessToken, h.codec.AccessTTL()))
	http.SetCookie(w, authz.RefreshCookie(resp.RefreshToken, h.codec.RefreshTTL()))
	writeData(w, http.StatusOK, resp, "")
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(authz.RefreshCookieName)
	if err != nil || cookie.Value == "" {
		writeError(w, http.StatusBadRequest, "user not found")
		return
	}

	if err := h.auth.Logout(r.Context(), cookie.Value); err != nil {
		writeAuthError(w, err)
		return
	}

	http.SetCookie(w, authz.ExpiredCookie(authz.AccessCookieName))
	http.SetCookie(w, authz.ExpiredCookie(authz.RefreshCookieName))
	writeData(w, http.StatusOK, map[string]string{"message": "User logged out"}, "")
}

func (h *AuthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}

// writeAuthError maps session issuer failures onto the wire: every
// user-correctable outcome is a 400; anything else is an infrastructure
// fault.
func writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrMissingFields),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrBadCredentials),
		errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrEmailExists),
		errors.Is(err, repository.ErrUsernameExists):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("auth operation failed", logging.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

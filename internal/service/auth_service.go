package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mattiachiarle/ezwallet-sub000/internal/models"
	"github.com/mattiachiarle/ezwallet-sub000/internal/repository"
	"github.com/mattiachiarle/ezwallet-sub000/pkg/tokens"
)

var (
	ErrMissingFields  = errors.New("missing or empty required fields")
	ErrInvalidEmail   = errors.New("invalid email format")
	ErrBadCredentials = errors.New("wrong credentials")
)

// RFC-lite email check: local@domain.tld with alphanumeric/._- segments and
// a 2-3 character TLD.
var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

// AuthService is the session issuer: it creates accounts, verifies
// credentials, and mints/clears the dual-token session.
type AuthService struct {
	repo       repository.Repository
	codec      *tokens.Codec
	bcryptCost int
}

func NewAuthService(repo repository.Repository, codec *tokens.Codec, bcryptCost int) *AuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		repo:       repo,
		codec:      codec,
		bcryptCost: bcryptCost,
	}
}

// Register creates a Regular user account.
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	return s.register(ctx, req, models.RoleRegular)
}

// RegisterAdmin is identical to Register but grants the Admin role.
func (s *AuthService) RegisterAdmin(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	return s.register(ctx, req, models.RoleAdmin)
}

func (s *AuthService) register(ctx context.Context, req *models.RegisterRequest, role string) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	password := strings.TrimSpace(req.Password)

	if username == "" || email == "" || password == "" {
		return nil, ErrMissingFields
	}
	if !emailPattern.MatchString(email) {
		return nil, ErrInvalidEmail
	}

	// Email is checked before username so a request conflicting on both
	// reports the email conflict.
	if _, err := s.repo.GetUserByEmail(ctx, email); err == nil {
		return nil, repository.ErrEmailExists
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}
	if _, err := s.repo.GetUserByUsername(ctx, username); err == nil {
		return nil, repository.ErrUsernameExists
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now(),
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	slog.Info("user registered",
		slog.String("username", user.Username),
		slog.String("role", user.Role),
	)
	return user, nil
}

// Login verifies the credentials and mints a fresh access/refresh token
// pair carrying the user's claims. The refresh token replaces any previous
// one on the user record; concurrent logins are last-write-wins.
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	email := strings.TrimSpace(req.Email)
	password := strings.TrimSpace(req.Password)

	if email == "" || password == "" {
		return nil, ErrMissingFields
	}
	if !emailPattern.MatchString(email) {
		return nil, ErrInvalidEmail
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrBadCredentials
	}

	claims := tokens.Claims{
		Username: user.Username,
		Email:    user.Email,
		ID:       user.ID,
		Role:     user.Role,
	}

	accessToken, err := s.codec.IssueAccessToken(claims)
	if err != nil {
		return nil, fmt.Errorf("issuing access token: %w", err)
	}
	refreshToken, err := s.codec.IssueRefreshToken(claims)
	if err != nil {
		return nil, fmt.Errorf("issuing refresh token: %w", err)
	}

	if err := s.repo.SetRefreshToken(ctx, user.ID, &refreshToken); err != nil {
		return nil, fmt.Errorf("persisting refresh token: %w", err)
	}

	slog.Info("user logged in", slog.String("username", user.Username))
	return &models.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Logout clears the stored refresh token for whichever user currently holds
// the presented one.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return repository.ErrUserNotFound
	}

	user, err := s.repo.GetUserByRefreshToken(ctx, refreshToken)
	if err != nil {
		return err
	}

	if err := s.repo.SetRefreshToken(ctx, user.ID, nil); err != nil {
		return fmt.Errorf("clearing refresh token: %w", err)
	}

	slog.Info("user logged out", slog.String("username", user.Username))
	return nil
}

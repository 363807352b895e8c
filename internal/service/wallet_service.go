package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mattiachiarle/ezwallet-sub000/internal/models"
	"github.com/mattiachiarle/ezwallet-sub000/internal/repository"
)

// WalletService covers the data-shape operations around the auth core:
// categories, transactions, groups, and user administration.
type WalletService struct {
	repo repository.Repository
}

func NewWalletService(repo repository.Repository) *WalletService {
	return &WalletService{repo: repo}
}

func (s *WalletService) CreateCategory(ctx context.Context, req *models.CreateCategoryRequest) (*models.Category, error) {
	categoryType := strings.TrimSpace(req.Type)
	color := strings.TrimSpace(req.Color)
	if categoryType == "" || color == "" {
		return nil, ErrMissingFields
	}

	category := &models.Category{Type: categoryType, Color: color}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *WalletService) UpdateCategory(ctx context.Context, categoryType, color string) (*models.Category, error) {
	color = strings.TrimSpace(color)
	if color == "" {
		return nil, ErrMissingFields
	}

	category := &models.Category{Type: categoryType, Color: color}
	if err := s.repo.UpdateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *WalletService) DeleteCategory(ctx context.Context, categoryType string) error {
	return s.repo.DeleteCategory(ctx, categoryType)
}

func (s *WalletService) ListCategories(ctx context.Context) ([]*models.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *WalletService) CreateTransaction(ctx context.Context, username string, req *models.CreateTransactionRequest) (*models.Transaction, error) {
	categoryType := strings.TrimSpace(req.Type)
	if categoryType == "" {
		return nil, ErrMissingFields
	}

	if _, err := s.repo.GetUserByUsername(ctx, username); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetCategory(ctx, categoryType); err != nil {
		return nil, err
	}

	tx := &models.Transaction{
		ID:       uuid.NewString(),
		Username: username,
		Type:     categoryType,
		Amount:   req.Amount,
		Date:     time.Now(),
	}
	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *WalletService) ListTransactions(ctx context.Context) ([]*models.Transaction, error) {
	return s.repo.ListTransactions(ctx)
}

func (s *WalletService) ListUserTransactions(ctx context.Context, username string) ([]*models.Transaction, error) {
	if _, err := s.repo.GetUserByUsername(ctx, username); err != nil {
		return nil, err
	}
	return s.repo.ListTransactionsByUsername(ctx, username)
}

func (s *WalletService) DeleteTransaction(ctx context.Context, username, id string) error {
	return s.repo.DeleteTransaction(ctx, username, id)
}

// CreateGroup resolves every proposed member email to a user record; an
// unknown email fails the whole request.
func (s *WalletService) CreateGroup(ctx context.Context, req *models.CreateGroupRequest) (*models.Group, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || len(req.MemberEmails) == 0 {
		return nil, ErrMissingFields
	}

	members, err := s.resolveMembers(ctx, req.MemberEmails)
	if err != nil {
		return nil, err
	}

	group := &models.Group{Name: name, Members: members}
	if err := s.repo.CreateGroup(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

func (s *WalletService) GetGroup(ctx context.Context, name string) (*models.Group, error) {
	return s.repo.GetGroup(ctx, name)
}

func (s *WalletService) ListGroups(ctx context.Context) ([]*models.Group, error) {
	return s.repo.ListGroups(ctx)
}

func (s *WalletService) AddGroupMembers(ctx context.Context, name string, emails []string) (*models.Group, error) {
	if len(emails) == 0 {
		return nil, ErrMissingFields
	}

	group, err := s.repo.GetGroup(ctx, name)
	if err != nil {
		return nil, err
	}

	newMembers, err := s.resolveMembers(ctx, emails)
	if err != nil {
		return nil, err
	}

	existing := make(map[string]bool, len(group.Members))
	for _, m := range group.Members {
		existing[m.Email] = true
	}
	for _, m := range newMembers {
		if !existing[m.Email] {
			group.Members = append(group.Members, m)
			existing[m.Email] = true
		}
	}

	if err := s.repo.UpdateGroupMembers(ctx, name, group.Members); err != nil {
		return nil, err
	}
	return group, nil
}

func (s *WalletService) RemoveGroupMembers(ctx context.Context, name string, emails []string) (*models.Group, error) {
	if len(emails) == 0 {
		return nil, ErrMissingFields
	}

	group, err := s.repo.GetGroup(ctx, name)
	if err != nil {
		return nil, err
	}

	remove := make(map[string]bool, len(emails))
	for _, email := range emails {
		remove[email] = true
	}

	var kept []models.GroupMember
	for _, m := range group.Members {
		if !remove[m.Email] {
			kept = append(kept, m)
		}
	}
	group.Members = kept

	if err := s.repo.UpdateGroupMembers(ctx, name, group.Members); err != nil {
		return nil, err
	}
	return group, nil
}

func (s *WalletService) DeleteGroup(ctx context.Context, name string) error {
	return s.repo.DeleteGroup(ctx, name)
}

func (s *WalletService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.repo.ListUsers(ctx)
}

func (s *WalletService) GetUser(ctx context.Context, username string) (*models.User, error) {
	return s.repo.GetUserByUsername(ctx, username)
}

func (s *WalletService) DeleteUser(ctx context.Context, username string) error {
	return s.repo.DeleteUser(ctx, username)
}

func (s *WalletService) resolveMembers(ctx context.Context, emails []string) ([]models.GroupMember, error) {
	members := make([]models.GroupMember, 0, len(emails))
	for _, email := range emails {
		email = strings.TrimSpace(email)
		user, err := s.repo.GetUserByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("resolving member %s: %w", email, err)
		}
		members = append(members, models.GroupMember{Email: user.Email, UserID: user.ID})
	}
	return members, nil
}

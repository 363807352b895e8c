package repository

import (
	"context"
	"errors"

	"github.com/mattiachiarle/ezwallet-sub000/internal/models"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailExists         = errors.New("email already registered")
	ErrUsernameExists      = errors.New("username already taken")
	ErrGroupNotFound       = errors.New("group not found")
	ErrGroupExists         = errors.New("group already exists")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrCategoryExists      = errors.New("category already exists")
	ErrTransactionNotFound = errors.New("transaction not found")
)

type Repository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByRefreshToken(ctx context.Context, token string) (*models.User, error)
	SetRefreshToken(ctx context.Context, userID string, token *string) error
	ListUsers(ctx context.Context) ([]*models.User, error)
	DeleteUser(ctx context.Context, username string) error

	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, name string) (*models.Group, error)
	ListGroups(ctx context.Context) ([]*models.Group, error)
	UpdateGroupMembers(ctx context.Context, name string, members []models.GroupMember) error
	DeleteGroup(ctx context.Context, name string) error

	CreateCategory(ctx context.Context, category *models.Category) error
	GetCategory(ctx context.Context, categoryType string) (*models.Category, error)
	ListCategories(ctx context.Context) ([]*models.Category, error)
	UpdateCategory(ctx context.Context, category *models.Category) error
	DeleteCategory(ctx context.Context, categoryType string) error

	CreateTransaction(ctx context.Context, tx *models.Transaction) error
	ListTransactions(ctx context.Context) ([]*models.Transaction, error)
	ListTransactionsByUsername(ctx context.Context, username string) ([]*models.Transaction, error)
	DeleteTransaction(ctx context.Context, username, id string) error
}

package repository

import (
	"context"
	"sync"

	"github.com/mattiachiarle/ezwallet-sub000/internal/models"
)

// InMemoryRepository backs development and tests. Maps are indexed the way
// lookups happen: users by email with secondary indexes on username and the
// outstanding refresh token.
type InMemoryRepository struct {
	usersByEmail    map[string]*models.User
	usersByUsername map[string]*models.User
	groups          map[string]*models.Group
	categories      map[string]*models.Category
	transactions    map[string]*models.Transaction
	mu              sync.RWMutex
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		usersByEmail:    make(map[string]*models.User),
		usersByUsername: make(map[string]*models.User),
		groups:          make(map[string]*models.Group),
		categories:      make(map[string]*models.Category),
		transactions:    make(map[string]*models.Transaction),
	}
}

func (r *InMemoryRepository) CreateUser(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.usersByEmail[user.Email]; exists {
		return ErrEmailExists
	}
	if _, exists := r.usersByUsername[user.Username]; exists {
		return ErrUsernameExists
	}

	r.usersByEmail[user.Email] = user
	r.usersByUsername[user.Username] = user
	return nil
}

func (r *InMemoryRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.usersByEmail[email]
	if !exists {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (r *InMemoryRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.usersByUsername[username]
	if !exists {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (r *InMemoryRepository) GetUserByRefreshToken(ctx context.Context, token string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.usersByEmail {
		if user.RefreshToken != nil && *user.RefreshToken == token {
			return user, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *InMemoryRepository) SetRefreshToken(ctx context.Context, userID string, token *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.usersByEmail {
		if user.ID == userID {
			user.RefreshToken = token
			return nil
		}
	}
	return ErrUserNotFound
}

func (r *InMemoryRepository) ListUsers(ctx context.Context) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*models.User, 0, len(r.usersByEmail))
	for _, user := range r.usersByEmail {
		users = append(users, user)
	}
	return users, nil
}

func (r *InMemoryRepository) DeleteUser(ctx context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, exists := r.usersByUsername[username]
	if !exists {
		return ErrUserNotFound
	}
	delete(r.usersByUsername, username)
	delete(r.usersByEmail, user.Email)
	return nil
}

func (r *InMemoryRepository) CreateGroup(ctx context.Context, group *models.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.groups[group.Name]; exists {
		return ErrGroupExists
	}
	r.groups[group.Name] = group
	return nil
}

func (r *InMemoryRepository) GetGroup(ctx context.Context, name string) (*models.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	group, exists := r.groups[name]
	if !exists {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

func (r *InMemoryRepository) ListGroups(ctx context.Context) ([]*models.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	groups := make([]*models.Group, 0, len(r.groups))
	for _, group := range r.groups {
		groups = append(groups, group)
	}
	return groups, nil
}

func (r *InMemoryRepository) UpdateGroupMembers(ctx context.Context, name string, members []models.GroupMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	group, exists := r.groups[name]
	if !exists {
		return ErrGroupNotFound
	}
	group.Members = members
	return nil
}

func (r *InMemoryRepository) DeleteGroup(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.groups[name]; !exists {
		return ErrGroupNotFound
	}
	delete(r.groups, name)
	return nil
}

func (r *InMemoryRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.categories[category.Type]; exists {
		return ErrCategoryExists
	}
	r.categories[category.Type] = category
	return nil
}

func (r *InMemoryRepository) GetCategory(ctx context.Context, categoryType string) (*models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	category, exists := r.categories[categoryType]
	if !exists {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

func (r *InMemoryRepository) ListCategories(ctx context.Context) ([]*models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	categories := make([]*models.Category, 0, len(r.categories))
	for _, category := range r.categories {
		categories = append(categories, category)
	}
	return categories, nil
}

func (r *InMemoryRepository) UpdateCategory(ctx context.Context, category *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.categories[category.Type]; !exists {
		return ErrCategoryNotFound
	}
	r.categories[category.Type] = category
	return nil
}

func (r *InMemoryRepository) DeleteCategory(ctx context.Context, categoryType string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.categories[categoryType]; !exists {
		return ErrCategoryNotFound
	}
	delete(r.categories, categoryType)
	return nil
}

func (r *InMemoryRepository) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.transactions[tx.ID] = tx
	return nil
}

func (r *InMemoryRepository) ListTransactions(ctx context.Context) ([]*models.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	txs := make([]*models.Transaction, 0, len(r.transactions))
	for _, tx := range r.transactions {
		txs = append(txs, tx)
	}
	return txs, nil
}

func (r *InMemoryRepository) ListTransactionsByUsername(ctx context.Context, username string) ([]*models.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var txs []*models.Transaction
	for _, tx := range r.transactions {
		if tx.Username == username {
			txs = append(txs, tx)
		}
	}
	return txs, nil
}

func (r *InMemoryRepository) DeleteTransaction(ctx context.Context, username, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, exists := r.transactions[id]
	if !exists || tx.Username != username {
		return ErrTransactionNotFound
	}
	delete(r.transactions, id)
	return nil
}

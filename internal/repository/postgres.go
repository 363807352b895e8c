package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mattiachiarle/ezwallet-sub000/internal/models"
)

const queryTimeout = 5 * time.Second

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(ctx context.Context, connString string) (*PostgresRepository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

func (r *PostgresRepository) Close() {
	r.pool.Close()
}

func isUniqueViolation(err error, constraintPart string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return false
	}
	return constraintPart == "" || strings.Contains(pgErr.ConstraintName, constraintPart)
}

func (r *PostgresRepository) CreateUser(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		INSERT INTO users (id, username, email, password_hash, role, refresh_token, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash,
		user.Role, user.RefreshToken, user.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err, "email") {
			return ErrEmailExists
		}
		if isUniqueViolation(err, "username") {
			return ErrUsernameExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

const userColumns = `id, username, email, password_hash, role, refresh_token, created_at`

func (r *PostgresRepository) scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.Role, &user.RefreshToken, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *PostgresRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, username))
}

func (r *PostgresRepository) GetUserByRefreshToken(ctx context.Context, token string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE refresh_token = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, token))
}

func (r *PostgresRepository) SetRefreshToken(ctx context.Context, userID string, token *string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `UPDATE users SET refresh_token = $1 WHERE id = $2`, token, userID)
	if err != nil {
		return fmt.Errorf("failed to set refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *PostgresRepository) ListUsers(ctx context.Context) ([]*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *PostgresRepository) DeleteUser(ctx context.Context, username string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE username = $1`, username)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *PostgresRepository) CreateGroup(ctx context.Context, group *models.Group) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `INSERT INTO groups (name) VALUES ($1)`, group.Name); err != nil {
		if isUniqueViolation(err, "") {
			return ErrGroupExists
		}
		return fmt.Errorf("failed to create group: %w", err)
	}

	for _, member := range group.Members {
		_, err := tx.Exec(ctx,
			`INSERT INTO group_members (group_name, email, user_id) VALUES ($1, $2, $3)`,
			group.Name, member.Email, member.UserID,
		)
		if err != nil {
			return fmt.Errorf("failed to add group member: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *PostgresRepository) GetGroup(ctx context.Context, name string) (*models.Group, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var group models.Group
	err := r.pool.QueryRow(ctx, `SELECT name FROM groups WHERE name = $1`, name).Scan(&group.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	members, err := r.groupMembers(ctx, name)
	if err != nil {
		return nil, err
	}
	group.Members = members
	return &group, nil
}

func (r *PostgresRepository) groupMembers(ctx context.Context, name string) ([]models.GroupMember, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT email, user_id FROM group_members WHERE group_name = $1 ORDER BY email`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to list group members: %w", err)
	}
	defer rows.Close()

	var members []models.GroupMember
	for rows.Next() {
		var m models.GroupMember
		if err := rows.Scan(&m.Email, &m.UserID); err != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *PostgresRepository) ListGroups(ctx context.Context) ([]*models.Group, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `SELECT name FROM groups ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		var group models.Group
		if err := rows.Scan(&group.Name); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, &group)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, group := range groups {
		members, err := r.groupMembers(ctx, group.Name)
		if err != nil {
			return nil, err
		}
		group.Members = members
	}
	return groups, nil
}

func (r *PostgresRepository) UpdateGroupMembers(ctx context.Context, name string, members []models.GroupMember) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM groups WHERE name = $1)`, name).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check group: %w", err)
	}
	if !exists {
		return ErrGroupNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM group_members WHERE group_name = $1`, name); err != nil {
		return fmt.Errorf("failed to clear group members: %w", err)
	}
	for _, member := range members {
		_, err := tx.Exec(ctx,
			`INSERT INTO group_members (group_name, email, user_id) VALUES ($1, $2, $3)`,
			name, member.Email, member.UserID,
		)
		if err != nil {
			return fmt.Errorf("failed to add group member: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *PostgresRepository) DeleteGroup(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM groups WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrGroupNotFound
	}
	return nil
}

func (r *PostgresRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO categories (type, color) VALUES ($1, $2)`,
		category.Type, category.Color,
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return ErrCategoryExists
		}
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetCategory(ctx context.Context, categoryType string) (*models.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var category models.Category
	err := r.pool.QueryRow(ctx,
		`SELECT type, color FROM categories WHERE type = $1`, categoryType,
	).Scan(&category.Type, &category.Color)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &category, nil
}

func (r *PostgresRepository) ListCategories(ctx context.Context) ([]*models.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `SELECT type, color FROM categories ORDER BY type`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		var category models.Category
		if err := rows.Scan(&category.Type, &category.Color); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, &category)
	}
	return categories, rows.Err()
}

func (r *PostgresRepository) UpdateCategory(ctx context.Context, category *models.Category) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx,
		`UPDATE categories SET color = $1 WHERE type = $2`,
		category.Color, category.Type,
	)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteCategory(ctx context.Context, categoryType string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE type = $1`, categoryType)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (r *PostgresRepository) CreateTransaction(ctx context.Context, transaction *models.Transaction) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO transactions (id, username, type, amount, date) VALUES ($1, $2, $3, $4, $5)`,
		transaction.ID, transaction.Username, transaction.Type, transaction.Amount, transaction.Date,
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

const transactionColumns = `id, username, type, amount, date`

func (r *PostgresRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]*models.Transaction, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txs []*models.Transaction
	for rows.Next() {
		var tx models.Transaction
		if err := rows.Scan(&tx.ID, &tx.Username, &tx.Type, &tx.Amount, &tx.Date); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, &tx)
	}
	return txs, rows.Err()
}

func (r *PostgresRepository) ListTransactions(ctx context.Context) ([]*models.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return r.queryTransactions(ctx, `SELECT `+transactionColumns+` FROM transactions ORDER BY date DESC`)
}

func (r *PostgresRepository) ListTransactionsByUsername(ctx context.Context, username string) ([]*models.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return r.queryTransactions(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE username = $1 ORDER BY date DESC`, username)
}

func (r *PostgresRepository) DeleteTransaction(ctx context.Context, username, id string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx,
		`DELETE FROM transactions WHERE id = $1 AND username = $2`, id, username)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

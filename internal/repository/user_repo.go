package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"germanclash/internal/database"
	"germanclash/internal/models"
)

// ErrOAuthAlreadyLinked is returned when an account is already bound to a provider
var ErrOAuthAlreadyLinked = errors.New("oauth provider already linked")

const userColumns = `id, email, COALESCE(password_hash, ''), name, COALESCE(oauth_provider, ''), COALESCE(oauth_subject, ''), created_at, updated_at`

// UserRepository handles database operations for accounts and their roles
type UserRepository struct {
	db database.DBTX
}

// NewUserRepository creates a new user repository
func NewUserRepository(db database.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.OAuthProvider,
		&user.OAuthSubject,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) one(ctx context.Context, query string, args ...any) (*models.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// CountUsers returns the number of accounts
func (r *UserRepository) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// CreateUser inserts a new account. passwordHash is empty for OAuth-only accounts.
func (r *UserRepository) CreateUser(ctx context.Context, email, passwordHash, name string) (*models.User, error) {
	now := time.Now().UTC()
	query := `
		INSERT INTO users (email, password_hash, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query, email, nullable(passwordHash), name, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &models.User{
		ID:           id,
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// GetUserByEmail retrieves a user by email address
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.one(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

// GetUserByID retrieves a user by ID
func (r *UserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return r.one(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// GetUserByOAuth retrieves a user by OAuth provider and subject
func (r *UserRepository) GetUserByOAuth(ctx context.Context, provider, subject string) (*models.User, error) {
	return r.one(ctx, `SELECT `+userColumns+` FROM users WHERE oauth_provider = ? AND oauth_subject = ?`, provider, subject)
}

// LinkOAuthProvider links an existing user to an OAuth provider
func (r *UserRepository) LinkOAuthProvider(ctx context.Context, userID int64, provider, subject string) error {
	query := `
		UPDATE users
		SET oauth_provider = ?, oauth_subject = ?, updated_at = ?
		WHERE id = ?
		AND (oauth_provider IS NULL OR oauth_provider = '')
	`
	result, err := r.db.ExecContext(ctx, query, provider, subject, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to link oauth provider: %w", err)
	}
	return requireAffected(result, ErrOAuthAlreadyLinked)
}

// ListUsers retrieves all users, newest first
func (r *UserRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

// DeleteUser deletes a user; profile, roles and scores cascade
func (r *UserRepository) DeleteUser(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return requireAffected(result, ErrNotFound)
}

// GetRoles returns the roles granted to a user
func (r *UserRepository) GetRoles(ctx context.Context, userID int64) ([]models.Role, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT role FROM user_roles WHERE user_id = ? ORDER BY role", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query roles: %w", err)
	}
	defer rows.Close()

	var roles []models.Role
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, models.Role(role))
	}
	return roles, rows.Err()
}

// AssignRole grants a role. Granting a role the user already has is a no-op.
func (r *UserRepository) AssignRole(ctx context.Context, userID int64, role models.Role) error {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM user_roles WHERE user_id = ? AND role = ?", userID, string(role)).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check role: %w", err)
	}
	if count > 0 {
		return nil
	}

	_, err = r.db.ExecContext(ctx, "INSERT INTO user_roles (user_id, role, created_at) VALUES (?, ?, ?)",
		userID, string(role), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to assign role: %w", err)
	}
	return nil
}

// RemoveRole revokes a role
func (r *UserRepository) RemoveRole(ctx context.Context, userID int64, role models.Role) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM user_roles WHERE user_id = ? AND role = ?", userID, string(role))
	if err != nil {
		return fmt.Errorf("failed to remove role: %w", err)
	}
	return requireAffected(result, ErrNotFound)
}

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

// ProfileRepository handles player profiles
type ProfileRepository struct {
	db database.DBTX
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db database.DBTX) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetByUserID retrieves a profile, or nil when the user has none
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID int64) (*models.Profile, error) {
	query := `
		SELECT user_id, username, avatar_icon, level_progress, created_at, updated_at
		FROM profiles
		WHERE user_id = ?
	`
	p := &models.Profile{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&p.UserID, &p.Username, &p.AvatarIcon, &p.LevelProgress, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

// Create inserts a profile with empty level progress
func (r *ProfileRepository) Create(ctx context.Context, p *models.Profile) error {
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	query := `
		INSERT INTO profiles (user_id, username, avatar_icon, level_progress, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query, p.UserID, p.Username, p.AvatarIcon, p.LevelProgress, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// UpdateLevelProgress replaces the stored progress document
func (r *ProfileRepository) UpdateLevelProgress(ctx context.Context, userID int64, progress models.LevelProgress) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE profiles SET level_progress = ?, updated_at = ? WHERE user_id = ?",
		progress, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to update level progress: %w", err)
	}
	return requireAffected(result, ErrNotFound)
}

// UpdateProfile changes the public name and avatar
func (r *ProfileRepository) UpdateProfile(ctx context.Context, userID int64, username, avatarIcon string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE profiles SET username = ?, avatar_icon = ?, updated_at = ? WHERE user_id = ?",
		username, avatarIcon, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return requireAffected(result, ErrNotFound)
}

// ListAll returns every profile joined with its account email, for the admin user list.
// Role is left empty; callers resolve it from the role table.
func (r *ProfileRepository) ListAll(ctx context.Context) ([]models.ProfileWithAccount, error) {
	query := `
		SELECT p.user_id, p.username, p.avatar_icon, p.level_progress, p.created_at, p.updated_at, u.email
		FROM profiles p
		JOIN users u ON u.id = p.user_id
		ORDER BY p.created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	var out []models.ProfileWithAccount
	for rows.Next() {
		var p models.ProfileWithAccount
		if err := rows.Scan(&p.UserID, &p.Username, &p.AvatarIcon, &p.LevelProgress, &p.CreatedAt, &p.UpdatedAt, &p.Email); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

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

// AppConfigRepository stores runtime settings editable by admins
type AppConfigRepository struct {
	db database.DBTX
}

// NewAppConfigRepository creates a new app config repository
func NewAppConfigRepository(db database.DBTX) *AppConfigRepository {
	return &AppConfigRepository{db: db}
}

// GetAll returns every setting ordered by key
func (r *AppConfigRepository) GetAll(ctx context.Context) ([]models.ConfigEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT config_key, config_value, description, updated_at FROM app_config ORDER BY config_key")
	if err != nil {
		return nil, fmt.Errorf("failed to query app config: %w", err)
	}
	defer rows.Close()

	var entries []models.ConfigEntry
	for rows.Next() {
		var e models.ConfigEntry
		if err := rows.Scan(&e.Key, &e.Value, &e.Description, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan app config: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Get retrieves one setting, or nil when it is not set
func (r *AppConfigRepository) Get(ctx context.Context, key string) (*models.ConfigEntry, error) {
	e := &models.ConfigEntry{}
	err := r.db.QueryRowContext(ctx,
		"SELECT config_key, config_value, description, updated_at FROM app_config WHERE config_key = ?", key).
		Scan(&e.Key, &e.Value, &e.Description, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get app config %q: %w", key, err)
	}
	return e, nil
}

// Upsert writes a setting. An empty description keeps the stored one.
func (r *AppConfigRepository) Upsert(ctx context.Context, entry models.ConfigEntry) error {
	query := r.db.GetDialect().UpsertConfig()
	_, err := r.db.ExecContext(ctx, query, entry.Key, entry.Value, entry.Description, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set app config %q: %w", entry.Key, err)
	}
	return nil
}

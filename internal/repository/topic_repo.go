package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"germanclash/internal/database"
	"germanclash/internal/models"
)

const topicColumns = `id, title, COALESCE(description, ''), COALESCE(youtube_url, ''), COALESCE(explanation_url, ''),
	is_visible, order_position, created_at, updated_at`

// TopicRepository handles topic rows
type TopicRepository struct {
	db database.DBTX
}

// NewTopicRepository creates a new topic repository
func NewTopicRepository(db database.DBTX) *TopicRepository {
	return &TopicRepository{db: db}
}

func scanTopic(row rowScanner) (*models.Topic, error) {
	t := &models.Topic{}
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.YoutubeURL, &t.ExplanationURL,
		&t.IsVisible, &t.OrderPosition, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *TopicRepository) list(ctx context.Context, query string, args ...any) ([]models.Topic, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query topics: %w", err)
	}
	defer rows.Close()

	var topics []models.Topic
	for rows.Next() {
		t, err := scanTopic(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan topic: %w", err)
		}
		topics = append(topics, *t)
	}
	return topics, rows.Err()
}

func (r *TopicRepository) one(ctx context.Context, query string, args ...any) (*models.Topic, error) {
	t, err := scanTopic(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get topic: %w", err)
	}
	return t, nil
}

// ListAll returns every topic in display order
func (r *TopicRepository) ListAll(ctx context.Context) ([]models.Topic, error) {
	return r.list(ctx, `SELECT `+topicColumns+` FROM topics ORDER BY order_position, title`)
}

// ListVisible returns the topics shown to players
func (r *TopicRepository) ListVisible(ctx context.Context) ([]models.Topic, error) {
	return r.list(ctx, `SELECT `+topicColumns+` FROM topics WHERE is_visible = ? ORDER BY order_position, title`, true)
}

// Latest returns the most recently created topic, or nil when there are none
func (r *TopicRepository) Latest(ctx context.Context) (*models.Topic, error) {
	return r.one(ctx, `SELECT `+topicColumns+` FROM topics ORDER BY created_at DESC LIMIT 1`)
}

// GetByID retrieves a topic, or nil when it does not exist
func (r *TopicRepository) GetByID(ctx context.Context, id string) (*models.Topic, error) {
	return r.one(ctx, `SELECT `+topicColumns+` FROM topics WHERE id = ?`, id)
}

// GetByTitle finds a topic ignoring case and surrounding spaces
func (r *TopicRepository) GetByTitle(ctx context.Context, title string) (*models.Topic, error) {
	return r.one(ctx, `SELECT `+topicColumns+` FROM topics WHERE LOWER(title) = ?`, strings.ToLower(strings.TrimSpace(title)))
}

// TopicDescription returns the description of the topic with the given title, or "" if unknown
func (r *TopicRepository) TopicDescription(ctx context.Context, title string) (string, error) {
	t, err := r.GetByTitle(ctx, title)
	if err != nil || t == nil {
		return "", err
	}
	return t.Description, nil
}

// Create inserts a topic, assigning an id when it has none
func (r *TopicRepository) Create(ctx context.Context, t *models.Topic) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now

	query := `
		INSERT INTO topics (id, title, description, youtube_url, explanation_url, is_visible, order_position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query, t.ID, t.Title, nullable(t.Description), nullable(t.YoutubeURL),
		nullable(t.ExplanationURL), t.IsVisible, t.OrderPosition, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create topic: %w", err)
	}
	return nil
}

// Update overwrites the editable columns of a topic
func (r *TopicRepository) Update(ctx context.Context, t *models.Topic) error {
	t.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE topics
		SET title = ?, description = ?, youtube_url = ?, explanation_url = ?, is_visible = ?, order_position = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query, t.Title, nullable(t.Description), nullable(t.YoutubeURL),
		nullable(t.ExplanationURL), t.IsVisible, t.OrderPosition, t.UpdatedAt, t.ID)
	if err != nil {
		return fmt.Errorf("failed to update topic: %w", err)
	}
	return requireAffected(result, ErrNotFound)
}

// Delete removes a topic. Exercises keep their topic title.
func (r *TopicRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM topics WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete topic: %w", err)
	}
	return requireAffected(result, ErrNotFound)
}

// Upsert updates the topic with the same title, or creates it. It reports whether a row was created.
func (r *TopicRepository) Upsert(ctx context.Context, t *models.Topic) (bool, error) {
	existing, err := r.GetByTitle(ctx, t.Title)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return true, r.Create(ctx, t)
	}
	t.ID = existing.ID
	t.CreatedAt = existing.CreatedAt
	return false, r.Update(ctx, t)
}

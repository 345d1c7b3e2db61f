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

// RankingRepository stores submitted scores
type RankingRepository struct {
	db database.DBTX
}

// NewRankingRepository creates a new ranking repository
func NewRankingRepository(db database.DBTX) *RankingRepository {
	return &RankingRepository{db: db}
}

// Insert stores a score and fills in its generated id
func (r *RankingRepository) Insert(ctx context.Context, ranking *models.DailyRanking) error {
	if ranking.CreatedAt.IsZero() {
		ranking.CreatedAt = time.Now()
	}
	ranking.CreatedAt = ranking.CreatedAt.UTC()

	query := `
		INSERT INTO daily_rankings (user_id, level, score, username, avatar_icon, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query,
		ranking.UserID, ranking.Level, ranking.Score, ranking.Username, ranking.AvatarIcon, ranking.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert ranking: %w", err)
	}
	ranking.ID = id
	return nil
}

func (r *RankingRepository) list(ctx context.Context, query string, args ...any) ([]models.DailyRanking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rankings: %w", err)
	}
	defer rows.Close()

	var rankings []models.DailyRanking
	for rows.Next() {
		var dr models.DailyRanking
		if err := rows.Scan(&dr.ID, &dr.UserID, &dr.Level, &dr.Score, &dr.Username, &dr.AvatarIcon, &dr.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ranking: %w", err)
		}
		rankings = append(rankings, dr)
	}
	return rankings, rows.Err()
}

// ListSince returns the highest scores of a level submitted at or after since
func (r *RankingRepository) ListSince(ctx context.Context, level int, since time.Time, limit int) ([]models.DailyRanking, error) {
	query := `
		SELECT id, user_id, level, score, username, avatar_icon, created_at
		FROM daily_rankings
		WHERE level = ? AND created_at >= ?
		ORDER BY score DESC, created_at ASC
		LIMIT ?
	`
	return r.list(ctx, query, level, since.UTC(), limit)
}

// ListForUserSince returns every score a user submitted at or after since
func (r *RankingRepository) ListForUserSince(ctx context.Context, userID int64, since time.Time) ([]models.DailyRanking, error) {
	query := `
		SELECT id, user_id, level, score, username, avatar_icon, created_at
		FROM daily_rankings
		WHERE user_id = ? AND created_at >= ?
		ORDER BY created_at
	`
	return r.list(ctx, query, userID, since.UTC())
}

// ListAllSince returns every score submitted at or after since, for exports
func (r *RankingRepository) ListAllSince(ctx context.Context, since time.Time) ([]models.DailyRanking, error) {
	query := `
		SELECT id, user_id, level, score, username, avatar_icon, created_at
		FROM daily_rankings
		WHERE created_at >= ?
		ORDER BY created_at
	`
	return r.list(ctx, query, since.UTC())
}

// BestScoreSince returns the user's best score on a level, with ok false when there is none
func (r *RankingRepository) BestScoreSince(ctx context.Context, userID int64, level int, since time.Time) (int, bool, error) {
	query := `
		SELECT MAX(score)
		FROM daily_rankings
		WHERE user_id = ? AND level = ? AND created_at >= ?
	`
	var best sql.NullInt64
	err := r.db.QueryRowContext(ctx, query, userID, level, since.UTC()).Scan(&best)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, false, fmt.Errorf("failed to get best score: %w", err)
	}
	if !best.Valid {
		return 0, false, nil
	}
	return int(best.Int64), true, nil
}

// CountAboveSince counts scores on a level strictly greater than score
func (r *RankingRepository) CountAboveSince(ctx context.Context, level, score int, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM daily_rankings
		WHERE level = ? AND created_at >= ? AND score > ?
	`
	var count int
	if err := r.db.QueryRowContext(ctx, query, level, since.UTC(), score).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rankings: %w", err)
	}
	return count, nil
}

// DeleteBefore prunes scores older than cutoff and returns how many were removed
func (r *RankingRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM daily_rankings WHERE created_at < ?", cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete old rankings: %w", err)
	}
	return result.RowsAffected()
}

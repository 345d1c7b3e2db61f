package service

import (
	"context"
	"fmt"
	"time"

	"germanclash/internal/database"
	"germanclash/internal/models"
	"germanclash/internal/repository"
)

const (
	// RankingWindow is how far back daily rankings and highscores look
	RankingWindow = 24 * time.Hour
	// DailyRankingLimit caps the rows returned for one level
	DailyRankingLimit = 100
)

// RankingService records scores and answers ranking queries
type RankingService struct {
	db       *database.DB
	rankings *repository.RankingRepository
	now      func() time.Time
}

// NewRankingService creates a new ranking service
func NewRankingService(db *database.DB) *RankingService {
	return &RankingService{
		db:       db,
		rankings: repository.NewRankingRepository(db),
		now:      time.Now,
	}
}

func (s *RankingService) since() time.Time {
	return s.now().Add(-RankingWindow)
}

// SubmitScore stores a score with the player's current name and avatar, and raises the
// stored level highscore when the new score beats it.
func (s *RankingService) SubmitScore(ctx context.Context, userID int64, level, score int) error {
	if !validLevel(level) {
		return ErrInvalidLevel
	}
	if score < 0 {
		return ErrInvalidScore
	}

	return s.db.WithTx(ctx, func(tx *database.Tx) error {
		profiles := repository.NewProfileRepository(tx)
		profile, err := profiles.GetByUserID(ctx, userID)
		if err != nil {
			return err
		}

		ranking := &models.DailyRanking{
			UserID:     userID,
			Level:      level,
			Score:      score,
			Username:   models.DefaultUsername,
			AvatarIcon: models.DefaultAvatarIcon,
			CreatedAt:  s.now(),
		}
		if profile != nil {
			if profile.Username != "" {
				ranking.Username = profile.Username
			}
			if profile.AvatarIcon != "" {
				ranking.AvatarIcon = profile.AvatarIcon
			}
		}
		if err := repository.NewRankingRepository(tx).Insert(ctx, ranking); err != nil {
			return err
		}

		if profile == nil {
			return nil
		}
		progress, changed := profile.LevelProgress.WithScore(level, score, s.now().UTC())
		if !changed {
			return nil
		}
		return profiles.UpdateLevelProgress(ctx, userID, progress)
	})
}

// GetDailyRankings returns the top scores of a level in the last 24 hours
func (s *RankingService) GetDailyRankings(ctx context.Context, level int) ([]models.DailyRanking, error) {
	if !validLevel(level) {
		return nil, ErrInvalidLevel
	}
	rankings, err := s.rankings.ListSince(ctx, level, s.since(), DailyRankingLimit)
	if err != nil {
		return nil, err
	}
	for i := range rankings {
		if rankings[i].Username == "" {
			rankings[i].Username = models.DefaultUsername
		}
		if rankings[i].AvatarIcon == "" {
			rankings[i].AvatarIcon = models.DefaultAvatarIcon
		}
	}
	return rankings, nil
}

// GetUserHighscoreLast24h returns the user's best score on a level, 0 when there is none
func (s *RankingService) GetUserHighscoreLast24h(ctx context.Context, userID int64, level int) (int, error) {
	best, _, err := s.rankings.BestScoreSince(ctx, userID, level, s.since())
	return best, err
}

// GetUserRankPosition returns 1 + the number of scores above the user's best on a level.
// ok is false when the user has no score in the window.
func (s *RankingService) GetUserRankPosition(ctx context.Context, userID int64, level int) (position int, ok bool, err error) {
	since := s.since()
	best, ok, err := s.rankings.BestScoreSince(ctx, userID, level, since)
	if err != nil || !ok {
		return 0, false, err
	}
	above, err := s.rankings.CountAboveSince(ctx, level, best, since)
	if err != nil {
		return 0, false, err
	}
	return above + 1, true, nil
}

// GetDailyStats summarises the user's best score per level over the last 24 hours
func (s *RankingService) GetDailyStats(ctx context.Context, userID int64) (models.DailyStats, error) {
	rows, err := s.rankings.ListForUserSince(ctx, userID, s.since())
	if err != nil {
		return models.DailyStats{}, err
	}

	best := make(map[int]int)
	for _, r := range rows {
		if cur, seen := best[r.Level]; !seen || r.Score > cur {
			best[r.Level] = r.Score
		}
	}

	var stats models.DailyStats
	for level, score := range best {
		stats.LevelsCompleted++
		stats.TotalScore += score
		if level > stats.HighestLevel {
			stats.HighestLevel = level
		}
	}
	return stats, nil
}

// Prune deletes scores older than the retention period
func (s *RankingService) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	n, err := s.rankings.DeleteBefore(ctx, s.now().Add(-retention))
	if err != nil {
		return 0, fmt.Errorf("failed to prune rankings: %w", err)
	}
	return n, nil
}

// userScoreSink binds score submission to one signed-in player
type userScoreSink struct {
	rankings *RankingService
	userID   int64
}

func (u userScoreSink) SubmitScore(ctx context.Context, level, score int) error {
	return u.rankings.SubmitScore(ctx, u.userID, level, score)
}

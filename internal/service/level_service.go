package service

import (
	"context"

	"germanclash/internal/models"
)

const (
	// MaxLevel is the highest game level (C2)
	MaxLevel = 6
	// UnlockRankThreshold is the worst daily rank on a level that still unlocks the next one
	UnlockRankThreshold = 5
)

// LevelStatus is what the level picker shows for one level
type LevelStatus struct {
	Level       int    `json:"level"`
	Name        string `json:"name"`
	Unlocked    bool   `json:"unlocked"`
	Highscore24 int    `json:"highscore_24h"`
}

// LevelService decides which levels a player may start
type LevelService struct {
	profiles *ProfileService
	rankings *RankingService
}

// NewLevelService creates a new level service
func NewLevelService(profiles *ProfileService, rankings *RankingService) *LevelService {
	return &LevelService{profiles: profiles, rankings: rankings}
}

// UnlockedLevels returns the levels a player may start. Level 1 is always open. PRO and
// ADMIN players get every level. Otherwise level n+1 opens when the stored highscore for
// level n is positive and the player's daily rank on n is within the threshold.
// userID 0 is an anonymous player.
func (s *LevelService) UnlockedLevels(ctx context.Context, userID int64, role models.Role) ([]int, error) {
	unlocked := []int{1}
	if userID == 0 {
		return unlocked, nil
	}
	if role == models.RolePro || role == models.RoleAdmin {
		return []int{1, 2, 3, 4, 5, 6}, nil
	}

	profile, err := s.profiles.GetProfile(ctx, userID)
	if err == ErrProfileNotFound {
		return unlocked, nil
	}
	if err != nil {
		return nil, err
	}

	for level := 1; level < MaxLevel; level++ {
		if profile.LevelProgress.Highscore(level) <= 0 {
			continue
		}
		position, ok, err := s.rankings.GetUserRankPosition(ctx, userID, level)
		if err != nil {
			return nil, err
		}
		if ok && position <= UnlockRankThreshold {
			unlocked = append(unlocked, level+1)
		}
	}
	return unlocked, nil
}

// IsUnlocked reports whether a player may start level
func (s *LevelService) IsUnlocked(ctx context.Context, userID int64, role models.Role, level int) (bool, error) {
	if !validLevel(level) {
		return false, ErrInvalidLevel
	}
	levels, err := s.UnlockedLevels(ctx, userID, role)
	if err != nil {
		return false, err
	}
	for _, l := range levels {
		if l == level {
			return true, nil
		}
	}
	return false, nil
}

// Highscores24h returns the best score of the last 24 hours on every level
func (s *LevelService) Highscores24h(ctx context.Context, userID int64) (map[int]int, error) {
	scores := make(map[int]int, MaxLevel)
	for level := 1; level <= MaxLevel; level++ {
		if userID == 0 {
			scores[level] = 0
			continue
		}
		best, err := s.rankings.GetUserHighscoreLast24h(ctx, userID, level)
		if err != nil {
			return nil, err
		}
		scores[level] = best
	}
	return scores, nil
}

// Levels combines unlock state and highscores for the level picker
func (s *LevelService) Levels(ctx context.Context, userID int64, role models.Role) ([]LevelStatus, error) {
	unlocked, err := s.UnlockedLevels(ctx, userID, role)
	if err != nil {
		return nil, err
	}
	scores, err := s.Highscores24h(ctx, userID)
	if err != nil {
		return nil, err
	}

	open := make(map[int]bool, len(unlocked))
	for _, l := range unlocked {
		open[l] = true
	}
	out := make([]LevelStatus, 0, MaxLevel)
	for level := 1; level <= MaxLevel; level++ {
		out = append(out, LevelStatus{
			Level:       level,
			Name:        models.LevelName(level),
			Unlocked:    open[level],
			Highscore24: scores[level],
		})
	}
	return out, nil
}

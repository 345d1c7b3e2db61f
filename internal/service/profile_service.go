package service

import (
	"context"
	"strings"
	"time"

	"germanclash/internal/database"
	"germanclash/internal/models"
	"germanclash/internal/repository"
	"germanclash/internal/validation"
)

// ProfileService manages the public player identity
type ProfileService struct {
	profiles *repository.ProfileRepository
	users    *repository.UserRepository
	now      func() time.Time
}

// NewProfileService creates a new profile service
func NewProfileService(db *database.DB) *ProfileService {
	return &ProfileService{
		profiles: repository.NewProfileRepository(db),
		users:    repository.NewUserRepository(db),
		now:      time.Now,
	}
}

// GetProfile returns the user's profile
func (s *ProfileService) GetProfile(ctx context.Context, userID int64) (*models.Profile, error) {
	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProfileNotFound
	}
	return p, nil
}

// UpdateProfile changes the username and avatar shown in rankings
func (s *ProfileService) UpdateProfile(ctx context.Context, userID int64, username, avatarIcon string) (*models.Profile, error) {
	username = strings.TrimSpace(username)
	avatarIcon = strings.TrimSpace(avatarIcon)
	if err := validation.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := validation.ValidateAvatar(avatarIcon); err != nil {
		return nil, err
	}

	if err := s.profiles.UpdateProfile(ctx, userID, username, avatarIcon); err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return s.GetProfile(ctx, userID)
}

// UpdateLevelProgress records score as the level highscore when it is higher than the stored one.
// It reports whether the profile changed.
func (s *ProfileService) UpdateLevelProgress(ctx context.Context, userID int64, level, score int) (bool, error) {
	if !validLevel(level) {
		return false, ErrInvalidLevel
	}
	p, err := s.GetProfile(ctx, userID)
	if err != nil {
		return false, err
	}
	progress, changed := p.LevelProgress.WithScore(level, score, s.now().UTC())
	if !changed {
		return false, nil
	}
	return true, s.profiles.UpdateLevelProgress(ctx, userID, progress)
}

// ListProfiles returns every profile with its account email and highest role
func (s *ProfileService) ListProfiles(ctx context.Context) ([]models.ProfileWithAccount, error) {
	profiles, err := s.profiles.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range profiles {
		roles, err := s.users.GetRoles(ctx, profiles[i].UserID)
		if err != nil {
			return nil, err
		}
		profiles[i].Role = models.HighestRole(roles)
	}
	return profiles, nil
}

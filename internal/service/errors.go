package service

import "errors"

var (
	ErrInvalidLevel       = errors.New("level must be between 1 and 6")
	ErrInvalidScore       = errors.New("score must not be negative")
	ErrLevelLocked        = errors.New("level is locked")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrTopicNotFound      = errors.New("topic not found")
	ErrTopicTitleTaken    = errors.New("a topic with this title already exists")
	ErrExerciseNotFound   = errors.New("exercise not found")
	ErrInvalidRole        = errors.New("invalid role")
	ErrUserNotFound       = errors.New("user not found")
	ErrContactDisabled    = errors.New("contact form is not configured")
	ErrContactRateLimited = errors.New("contact message limit reached")
	ErrGenerationDisabled = errors.New("exercise generation is not configured")
	ErrInvalidConfigKey   = errors.New("config key is required")
	ErrUnsupportedBackup  = errors.New("unsupported backup version")
	ErrInvalidBackup      = errors.New("backup is not valid JSON")
)

// validLevel reports whether level is one of the six game levels
func validLevel(level int) bool {
	return level >= 1 && level <= 6
}

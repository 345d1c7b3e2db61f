package service

import (
	"context"
	"log"
	"strconv"
	"strings"
	"sync"

	"germanclash/internal/database"
	"germanclash/internal/models"
	"germanclash/internal/repository"
)

// Runtime configuration keys
const (
	ConfigDefaultTopic          = "default_topic"
	ConfigAppName               = "app_name"
	ConfigMaxDailyExercisesFree = "max_daily_exercises_free"
	ConfigEnableTTS             = "enable_tts"
	ConfigContactEmail          = "contact_email"
)

// fallbackConfig is served when the table cannot be read
var fallbackConfig = map[string]string{
	ConfigDefaultTopic:          "Die Betonung",
	ConfigAppName:               "German Learning App",
	ConfigMaxDailyExercisesFree: "10",
	ConfigEnableTTS:             "true",
}

// ConfigService caches the app_config table. The cache loads lazily on first read and
// is updated in place by writes.
type ConfigService struct {
	db   *database.DB
	repo *repository.AppConfigRepository

	loadMu sync.Mutex
	mu     sync.RWMutex
	values map[string]string
	ready  bool
}

// NewConfigService creates a new config service
func NewConfigService(db *database.DB) *ConfigService {
	return &ConfigService{
		db:     db,
		repo:   repository.NewAppConfigRepository(db),
		values: make(map[string]string),
	}
}

// init loads the cache once. Concurrent callers wait for the first load.
func (s *ConfigService) init(ctx context.Context) {
	if s.Ready() {
		return
	}
	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	if s.Ready() {
		return
	}

	values := make(map[string]string)
	entries, err := s.repo.GetAll(ctx)
	if err != nil {
		log.Printf("Warning: failed to load app config, using defaults: %v", err)
		for k, v := range fallbackConfig {
			values[k] = v
		}
	} else {
		for _, e := range entries {
			values[e.Key] = e.Value
		}
		log.Printf("Config cache initialized with %d values", len(entries))
	}

	s.mu.Lock()
	s.values = values
	s.ready = true
	s.mu.Unlock()
}

// Ready reports whether the cache has been loaded
func (s *ConfigService) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Refresh drops the cache and loads it again
func (s *ConfigService) Refresh(ctx context.Context) {
	s.mu.Lock()
	s.ready = false
	s.values = make(map[string]string)
	s.mu.Unlock()
	s.init(ctx)
}

// Get returns a cached value
func (s *ConfigService) Get(ctx context.Context, key string) (string, bool) {
	s.init(ctx)
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// GetString returns a value or fallback when it is missing or blank
func (s *ConfigService) GetString(ctx context.Context, key, fallback string) string {
	v, ok := s.Get(ctx, key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

// GetInt returns an integer value or fallback when it is missing or malformed
func (s *ConfigService) GetInt(ctx context.Context, key string, fallback int) int {
	v, ok := s.Get(ctx, key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return n
}

// GetBool returns a boolean value or fallback when it is missing or malformed
func (s *ConfigService) GetBool(ctx context.Context, key string, fallback bool) bool {
	v, ok := s.Get(ctx, key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return b
}

// Values returns a copy of the cached key/value pairs
func (s *ConfigService) Values(ctx context.Context) map[string]string {
	s.init(ctx)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// All reads every entry from the database, bypassing the cache
func (s *ConfigService) All(ctx context.Context) ([]models.ConfigEntry, error) {
	return s.repo.GetAll(ctx)
}

// Set stores one value and updates the cache. An empty description keeps the stored one.
func (s *ConfigService) Set(ctx context.Context, key, value, description string) error {
	return s.SetMultiple(ctx, []models.ConfigEntry{{Key: key, Value: value, Description: description}})
}

// SetMultiple stores several values in one transaction and updates the cache
func (s *ConfigService) SetMultiple(ctx context.Context, entries []models.ConfigEntry) error {
	for _, e := range entries {
		if strings.TrimSpace(e.Key) == "" {
			return ErrInvalidConfigKey
		}
	}

	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		repo := repository.NewAppConfigRepository(tx)
		for _, e := range entries {
			if err := repo.Upsert(ctx, e); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.init(ctx)
	s.mu.Lock()
	for _, e := range entries {
		s.values[e.Key] = e.Value
	}
	s.mu.Unlock()
	return nil
}

// PublicValues returns the settings clients may read. The contact address stays server side.
func (s *ConfigService) PublicValues(ctx context.Context) map[string]string {
	values := s.Values(ctx)
	delete(values, ConfigContactEmail)
	return values
}

package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"germanclash/internal/game"
	"germanclash/internal/models"
	"germanclash/internal/security"
)

var ErrSessionNotFound = errors.New("session not found")

// Player identifies who starts or drives a session. UserID 0 is an anonymous player.
type Player struct {
	UserID int64
	Role   models.Role
}

// Anonymous reports whether the player is not signed in
func (p Player) Anonymous() bool {
	return p.UserID == 0
}

type storedSession struct {
	session  *game.Session
	userID   int64
	lastUsed time.Time
}

// SessionService keeps running game sessions in memory
type SessionService struct {
	pool     game.Pool
	levels   *LevelService
	rankings *RankingService
	config   *ConfigService
	ttl      time.Duration
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*storedSession
}

// NewSessionService creates a new session service. Sessions idle for longer than ttl
// are removed by Sweep.
func NewSessionService(pool game.Pool, levels *LevelService, rankings *RankingService, config *ConfigService, ttl time.Duration) *SessionService {
	return &SessionService{
		pool:     pool,
		levels:   levels,
		rankings: rankings,
		config:   config,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*storedSession),
	}
}

// Start assembles a new session for the player. An empty topic means the configured
// default topic, or the whole level when that topic has no exercises.
func (s *SessionService) Start(ctx context.Context, player Player, level int, topic string) (string, *game.Session, error) {
	if !validLevel(level) {
		return "", nil, ErrInvalidLevel
	}
	unlocked, err := s.levels.IsUnlocked(ctx, player.UserID, player.Role, level)
	if err != nil {
		return "", nil, err
	}
	if !unlocked {
		return "", nil, ErrLevelLocked
	}

	var opts []game.Option
	if !player.Anonymous() {
		opts = append(opts, game.WithScoreSink(userScoreSink{rankings: s.rankings, userID: player.UserID}))
	}

	var sess *game.Session
	if topic == "" {
		topic = s.config.GetString(ctx, ConfigDefaultTopic, fallbackConfig[ConfigDefaultTopic])
		sess, err = game.Start(ctx, s.pool, level, topic, opts...)
		if errors.Is(err, game.ErrPoolEmpty) {
			log.Printf("Warning: no exercises for default topic %q on level %d, using all topics", topic, level)
			sess, err = game.Start(ctx, s.pool, level, "", opts...)
		}
	} else {
		sess, err = game.Start(ctx, s.pool, level, topic, opts...)
	}
	if err != nil {
		return "", nil, err
	}

	id := security.NewID()
	s.mu.Lock()
	s.sessions[id] = &storedSession{session: sess, userID: player.UserID, lastUsed: s.now()}
	s.mu.Unlock()
	return id, sess, nil
}

// Get returns a session owned by the player
func (s *SessionService) Get(id string, player Player) (*game.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.sessions[id]
	if !ok || stored.userID != player.UserID {
		return nil, ErrSessionNotFound
	}
	stored.lastUsed = s.now()
	return stored.session, nil
}

// Discard drops a session. Leaving a session mid-way never submits a score.
func (s *SessionService) Discard(id string, player Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.sessions[id]
	if !ok || stored.userID != player.UserID {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// Len returns the number of live sessions
func (s *SessionService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep removes sessions idle for longer than the TTL and returns how many went
func (s *SessionService) Sweep() int {
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, stored := range s.sessions {
		if stored.lastUsed.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps idle sessions every interval until ctx is cancelled
func (s *SessionService) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				log.Printf("Swept %d idle game sessions", n)
			}
		}
	}
}

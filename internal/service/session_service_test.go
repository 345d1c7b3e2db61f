package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"germanclash/internal/game"
	"germanclash/internal/models"
	"germanclash/internal/testutil"
)

// topicPool serves exercises only for the topics it knows; "" returns everything
type topicPool struct {
	byTopic map[string][]*models.Exercise
	topics  []string
}

func (p *topicPool) FetchExercises(_ context.Context, level int, topic string) ([]*models.Exercise, error) {
	p.topics = append(p.topics, topic)
	if topic != "" {
		return p.byTopic[topic], nil
	}
	var all []*models.Exercise
	for _, exs := range p.byTopic {
		all = append(all, exs...)
	}
	return all, nil
}

func newSessionService(t *testing.T, pool game.Pool) (*SessionService, *RankingService) {
	t.Helper()
	db := testutil.NewDB(t)
	rankings := NewRankingService(db)
	levels := NewLevelService(NewProfileService(db), rankings)
	return NewSessionService(pool, levels, rankings, NewConfigService(db), time.Hour), rankings
}

func TestSessionServiceStart(t *testing.T) {
	ex := fillInTheBlank(1, "Sein")
	ex.ID = "ex-1"
	pool := &topicPool{byTopic: map[string][]*models.Exercise{"Sein": {ex}}}
	sessions, _ := newSessionService(t, pool)
	ctx := context.Background()
	anon := Player{}

	_, _, err := sessions.Start(ctx, anon, 2, "Sein")
	assert.ErrorIs(t, err, ErrLevelLocked, "anonymous players only get level 1")
	_, _, err = sessions.Start(ctx, anon, 0, "")
	assert.ErrorIs(t, err, ErrInvalidLevel)

	id, sess, err := sessions.Start(ctx, anon, 1, "")
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, []string{"Die Betonung", ""}, pool.topics, "empty default topic falls back to the whole level")
	assert.Equal(t, game.PhasePlaying, sess.Snapshot().Phase)

	_, _, err = sessions.Start(ctx, anon, 1, "Unbekannt")
	assert.ErrorIs(t, err, game.ErrPoolEmpty)

	got, err := sessions.Get(id, anon)
	require.NoError(t, err)
	assert.Same(t, sess, got)

	_, err = sessions.Get(id, Player{UserID: 5})
	assert.ErrorIs(t, err, ErrSessionNotFound, "sessions belong to the player who started them")

	assert.ErrorIs(t, sessions.Discard(id, Player{UserID: 5}), ErrSessionNotFound)
	require.NoError(t, sessions.Discard(id, anon))
	assert.Zero(t, sessions.Len())
}

func TestSessionServiceProPlayer(t *testing.T) {
	ex := fillInTheBlank(6, "Konjunktiv")
	ex.ID = "ex-6"
	sessions, _ := newSessionService(t, &topicPool{byTopic: map[string][]*models.Exercise{"Konjunktiv": {ex}}})

	_, sess, err := sessions.Start(context.Background(), Player{UserID: 3, Role: models.RolePro}, 6, "Konjunktiv")
	require.NoError(t, err)
	assert.Equal(t, 6, sess.Level())
}

type failingPool struct{}

func (failingPool) FetchExercises(context.Context, int, string) ([]*models.Exercise, error) {
	return nil, errors.New("database unavailable")
}

func TestSessionServicePoolError(t *testing.T) {
	sessions, _ := newSessionService(t, failingPool{})
	_, _, err := sessions.Start(context.Background(), Player{}, 1, "Sein")
	assert.ErrorContains(t, err, "database unavailable")
	assert.Zero(t, sessions.Len())
}

func TestSessionServiceSweep(t *testing.T) {
	ex := fillInTheBlank(1, "Sein")
	ex.ID = "ex-1"
	sessions, _ := newSessionService(t, &topicPool{byTopic: map[string][]*models.Exercise{"Sein": {ex}}})
	clock := &fixedClock{t: time.Now()}
	sessions.now = clock.Now
	ctx := context.Background()

	stale, _, err := sessions.Start(ctx, Player{}, 1, "Sein")
	require.NoError(t, err)
	clock.Advance(45 * time.Minute)
	fresh, _, err := sessions.Start(ctx, Player{}, 1, "Sein")
	require.NoError(t, err)

	clock.Advance(30 * time.Minute)
	assert.Equal(t, 1, sessions.Sweep())

	_, err = sessions.Get(stale, Player{})
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = sessions.Get(fresh, Player{})
	assert.NoError(t, err)
}

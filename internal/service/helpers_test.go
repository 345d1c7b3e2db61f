package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"germanclash/internal/database"
	"germanclash/internal/models"
	"germanclash/internal/repository"
	"germanclash/internal/testutil"
)

// newPlayer creates an account with a profile but no roles
func newPlayer(t *testing.T, db *database.DB, email, username string) int64 {
	t.Helper()
	id := testutil.CreateUser(t, db, email)
	err := repository.NewProfileRepository(db).Create(context.Background(), &models.Profile{
		UserID:     id,
		Username:   username,
		AvatarIcon: "🦊",
	})
	require.NoError(t, err)
	return id
}

func fillInTheBlank(level int, topic string) *models.Exercise {
	return &models.Exercise{
		Level:            level,
		Type:             models.TypeFillInTheBlank,
		Topic:            topic,
		Statement:        "Ich ___ müde.",
		CorrectAnswer:    "bin",
		IncorrectAnswer1: "bist",
		IncorrectAnswer2: "ist",
	}
}

type fixedClock struct{ t time.Time }

func (c *fixedClock) Now() time.Time          { return c.t }
func (c *fixedClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

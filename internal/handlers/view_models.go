package handlers

import (
	"time"

	"germanclash/internal/game"
	"germanclash/internal/models"
	"germanclash/internal/service"
)

// ExerciseView is the player's view of the current exercise. Answers stay on the server.
type ExerciseView struct {
	ID                 string              `json:"id"`
	Type               models.ExerciseType `json:"type"`
	Topic              string              `json:"topic"`
	Statement          string              `json:"statement"`
	Emoji              string              `json:"emoji,omitempty"`
	Hint               string              `json:"hint,omitempty"`
	SpanishTranslation string              `json:"spanish_translation,omitempty"`
	WordTranslations   map[string]string   `json:"word_translations,omitempty"`
	HasAudio           bool                `json:"has_audio"`
}

// SessionView is the JSON shape of a game session
type SessionView struct {
	ID           string         `json:"id"`
	Phase        game.Phase     `json:"phase"`
	Level        int            `json:"level"`
	LevelName    string         `json:"level_name"`
	Topic        string         `json:"topic,omitempty"`
	Index        int            `json:"index"`
	Total        int            `json:"total"`
	Score        int            `json:"score"`
	Exercise     *ExerciseView  `json:"exercise,omitempty"`
	Options      []string       `json:"options,omitempty"`
	WrongAnswers []string       `json:"wrong_answers,omitempty"`
	Attempts     int            `json:"attempts,omitempty"`
	HintUses     int            `json:"hint_uses,omitempty"`
	Board        string         `json:"board,omitempty"`
	Guessed      []string       `json:"guessed,omitempty"`
	Grid         [][]string     `json:"grid,omitempty"`
	FoundCells   []game.Cell    `json:"found_cells,omitempty"`
	WrongCells   []game.Cell    `json:"wrong_cells,omitempty"`
	Feedback     *game.Feedback `json:"feedback,omitempty"`
	Result       *game.Result   `json:"result,omitempty"`
	PendingSaved bool           `json:"pending_score_saved,omitempty"`
}

func newExerciseView(snap game.Snapshot) *ExerciseView {
	ex := snap.Exercise
	if ex == nil {
		return nil
	}
	v := &ExerciseView{
		ID:        ex.ID,
		Type:      ex.Type,
		Topic:     ex.Topic,
		Statement: ex.Statement,
		HasAudio:  ex.Type == models.TypeListening,
	}
	switch ex.Type {
	case models.TypeIdentifyTheWord:
		v.Emoji = ex.Emoji
		if snap.HintShown {
			v.Hint = ex.Hint
		}
	case models.TypeWheelOfFortune:
		v.SpanishTranslation = ex.SpanishTranslation
		if snap.HintShown {
			v.Hint = ex.Hint
		}
	case models.TypeWordSearch:
		v.SpanishTranslation = ex.SpanishTranslation
	}
	if ex.WordTranslations.State() == models.TranslationsValid {
		v.WordTranslations = ex.WordTranslations.Entries()
	}
	return v
}

func newSessionView(id string, snap game.Snapshot) SessionView {
	return SessionView{
		ID:           id,
		Phase:        snap.Phase,
		Level:        snap.Level,
		LevelName:    models.LevelName(snap.Level),
		Topic:        snap.Topic,
		Index:        snap.Index,
		Total:        snap.Total,
		Score:        snap.Score,
		Exercise:     newExerciseView(snap),
		Options:      snap.Options,
		WrongAnswers: snap.WrongAnswers,
		Attempts:     snap.Attempts,
		HintUses:     snap.HintUses,
		Board:        snap.Board,
		Guessed:      snap.Guessed,
		Grid:         snap.Grid,
		FoundCells:   snap.FoundCells,
		WrongCells:   snap.WrongCells,
		Feedback:     snap.Feedback,
		Result:       snap.Result,
	}
}

// UserView is the signed-in account returned by the auth endpoints
type UserView struct {
	ID    int64         `json:"id"`
	Email string        `json:"email"`
	Name  string        `json:"name"`
	Role  models.Role   `json:"role"`
	Roles []models.Role `json:"roles"`
}

func newUserView(identity *service.Identity) UserView {
	return UserView{
		ID:    identity.UserID,
		Email: identity.Email,
		Name:  identity.Name,
		Role:  identity.Role(),
		Roles: identity.Roles,
	}
}

// AuthResponse is returned after register and login
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserView  `json:"user"`
}

// RankPositionView answers the rank position endpoint
type RankPositionView struct {
	Level    int  `json:"level"`
	Position int  `json:"position,omitempty"`
	Ranked   bool `json:"ranked"`
}

// ContactResponse reports the quota left after a contact message
type ContactResponse struct {
	Success   bool `json:"success"`
	Remaining int  `json:"remaining"`
}

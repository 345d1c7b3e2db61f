package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"germanclash/internal/audio"
	"germanclash/internal/game"
	"germanclash/internal/models"
	"germanclash/internal/security"
	"germanclash/internal/service"
)

// audioTimeout bounds the whole retry loop of one audio request
const audioTimeout = 8 * time.Second

// GameHandler drives game sessions over HTTP
type GameHandler struct {
	sessions  *service.SessionService
	exercises *service.ExerciseService
	config    *service.ConfigService
	speaker   audio.Speaker
	pending   *security.PendingScoreSigner
}

// NewGameHandler creates a new game handler. speaker may be nil, which disables audio.
func NewGameHandler(sessions *service.SessionService, exercises *service.ExerciseService, config *service.ConfigService, speaker audio.Speaker, pending *security.PendingScoreSigner) *GameHandler {
	return &GameHandler{
		sessions:  sessions,
		exercises: exercises,
		config:    config,
		speaker:   speaker,
		pending:   pending,
	}
}

type startSessionRequest struct {
	Level int    `json:"level"`
	Topic string `json:"topic"`
}

// StartSession assembles a new session for the caller
func (h *GameHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	player := playerFromContext(r.Context())
	id, sess, err := h.sessions.Start(r.Context(), player, req.Level, req.Topic)
	if err != nil {
		respondWithServiceError(w, "Error starting session", err)
		return
	}
	log.Printf("[DEBUG] Session %s started: user=%d level=%d topic=%q", id, player.UserID, req.Level, req.Topic)
	respondWithJSON(w, http.StatusCreated, newSessionView(id, sess.Snapshot()))
}

// GetSession returns the current state of a session
func (h *GameHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sess, err := h.sessions.Get(id, playerFromContext(r.Context()))
	if err != nil {
		respondWithServiceError(w, "Error loading session", err)
		return
	}
	respondWithJSON(w, http.StatusOK, newSessionView(id, sess.Snapshot()))
}

// DiscardSession abandons a session without submitting a score
func (h *GameHandler) DiscardSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Discard(r.PathValue("id"), playerFromContext(r.Context())); err != nil {
		respondWithServiceError(w, "Error discarding session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// act runs one player action against a session. When the action completes an anonymous
// level 1 session, the final score goes into the pending score cookie.
func (h *GameHandler) act(w http.ResponseWriter, r *http.Request, action func(*game.Session) (game.Snapshot, error)) {
	id := r.PathValue("id")
	player := playerFromContext(r.Context())
	sess, err := h.sessions.Get(id, player)
	if err != nil {
		respondWithServiceError(w, "Error loading session", err)
		return
	}

	wasComplete := sess.Snapshot().Phase == game.PhaseComplete
	snap, err := action(sess)
	if err != nil {
		respondWithServiceError(w, "Error applying action to session "+id, err)
		return
	}

	view := newSessionView(id, snap)
	if !wasComplete && snap.Phase == game.PhaseComplete && snap.Result != nil {
		log.Printf("Session %s complete: user=%d level=%d score=%d", id, player.UserID, snap.Result.Level, snap.Result.Score)
		if player.Anonymous() && snap.Result.Level == 1 {
			view.PendingSaved = setPendingScore(w, r, h.pending, models.PendingScore{Level: snap.Result.Level, Score: snap.Result.Score})
		}
	}
	respondWithJSON(w, http.StatusOK, view)
}

type answerRequest struct {
	Option string `json:"option"`
}

// Answer selects an option of a multiple-choice exercise
func (h *GameHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.act(w, r, func(s *game.Session) (game.Snapshot, error) { return s.SelectOption(req.Option) })
}

type letterRequest struct {
	Letter string `json:"letter"`
}

// GuessLetter guesses one letter of a wheel of fortune exercise
func (h *GameHandler) GuessLetter(w http.ResponseWriter, r *http.Request) {
	var req letterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.act(w, r, func(s *game.Session) (game.Snapshot, error) { return s.GuessLetter(req.Letter) })
}

// Hint shows the hint of the current exercise
func (h *GameHandler) Hint(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, (*game.Session).UseHint)
}

// Reveal gives up on a wheel of fortune exercise
func (h *GameHandler) Reveal(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, (*game.Session).Reveal)
}

// SelectCell selects one cell of a word search grid
func (h *GameHandler) SelectCell(w http.ResponseWriter, r *http.Request) {
	var cell game.Cell
	if !decodeJSON(w, r, &cell) {
		return
	}
	h.act(w, r, func(s *game.Session) (game.Snapshot, error) { return s.SelectCell(cell) })
}

// Solve gives up on a word search exercise
func (h *GameHandler) Solve(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, (*game.Session).Solve)
}

// Continue moves past an exercise that needs no answer
func (h *GameHandler) Continue(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, (*game.Session).Continue)
}

// Acknowledge dismisses the feedback of the last answer
func (h *GameHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, (*game.Session).Acknowledge)
}

type audioUnavailableBody struct {
	Error        string `json:"error"`
	FallbackText string `json:"fallback_text"`
}

// ExerciseAudio streams the spoken word of a listening exercise. When speech cannot be
// produced the written word is returned instead so the player can keep going.
func (h *GameHandler) ExerciseAudio(w http.ResponseWriter, r *http.Request) {
	ex, err := h.exercises.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithServiceError(w, "Error loading exercise", err)
		return
	}
	if ex.Type != models.TypeListening {
		respondWithError(w, http.StatusNotFound, ErrAudioUnavailable, "", nil)
		return
	}

	fallback := audioUnavailableBody{Error: ErrAudioUnavailable, FallbackText: ex.GermanWord}
	if h.speaker == nil || !h.config.GetBool(r.Context(), service.ConfigEnableTTS, true) {
		respondWithJSON(w, http.StatusServiceUnavailable, fallback)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), audioTimeout)
	defer cancel()
	clip, err := audio.SpeakWithRetry(ctx, h.speaker, ex.GermanWord, audio.Options{Language: audio.DefaultLanguage}, audio.DefaultRetryPolicy)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Printf("Warning: audio failed for exercise %s: %v", ex.ID, err)
		}
		respondWithJSON(w, http.StatusServiceUnavailable, fallback)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(clip); err != nil {
		log.Printf("Warning: failed to write audio: %v", err)
	}
}

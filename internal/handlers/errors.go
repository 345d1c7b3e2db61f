package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"germanclash/internal/game"
	"germanclash/internal/generation"
	"germanclash/internal/models"
	"germanclash/internal/service"
	"germanclash/internal/validation"
)

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 1 << 20

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	}

	respondWithJSON(w, status, errorBody{Error: userMsg})
}

func respondWithJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Warning: failed to write response: %v", err)
	}
}

// decodeJSON reads a JSON body into dst and answers 400 when it is malformed
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidBody, "", nil)
		return false
	}
	return true
}

// respondWithServiceError maps domain errors onto HTTP statuses. Anything unknown is a
// 500 with the error logged.
func respondWithServiceError(w http.ResponseWriter, logMsg string, err error) {
	var verr validation.ValidationError
	if errors.As(err, &verr) {
		respondWithJSON(w, http.StatusBadRequest, errorBody{Error: verr.Message, Field: verr.Field})
		return
	}

	var limited *service.RateLimitError
	if errors.As(err, &limited) {
		w.Header().Set("Retry-After", retryAfterSeconds(limited.RetryAfter))
		respondWithError(w, http.StatusTooManyRequests, err.Error(), "", nil)
		return
	}

	var genErr *generation.ValidationError
	if errors.As(err, &genErr) {
		respondWithJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":            err.Error(),
			"validationErrors": genErr.Messages,
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrProfileNotFound),
		errors.Is(err, service.ErrTopicNotFound),
		errors.Is(err, service.ErrExerciseNotFound),
		errors.Is(err, service.ErrUserNotFound):
		respondWithError(w, http.StatusNotFound, err.Error(), "", nil)
	case errors.Is(err, service.ErrLevelLocked):
		respondWithError(w, http.StatusForbidden, err.Error(), "", nil)
	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrTopicTitleTaken):
		respondWithError(w, http.StatusConflict, err.Error(), "", nil)
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken):
		respondWithError(w, http.StatusUnauthorized, err.Error(), "", nil)
	case errors.Is(err, service.ErrContactDisabled),
		errors.Is(err, service.ErrGenerationDisabled):
		respondWithError(w, http.StatusServiceUnavailable, err.Error(), "", nil)
	case errors.Is(err, game.ErrPoolEmpty):
		respondWithError(w, http.StatusNotFound, err.Error(), "", nil)
	case errors.Is(err, service.ErrInvalidLevel),
		errors.Is(err, service.ErrInvalidScore),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrInvalidConfigKey),
		errors.Is(err, service.ErrUnsupportedBackup),
		errors.Is(err, service.ErrInvalidBackup),
		errors.Is(err, models.ErrInvalidExerciseShape),
		errors.Is(err, generation.ErrMissingParameters):
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
	case isGameRuleError(err):
		respondWithError(w, http.StatusConflict, err.Error(), "", nil)
	default:
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, logMsg, err)
	}
}

// isGameRuleError reports whether err is a rejected player action rather than a fault
func isGameRuleError(err error) bool {
	for _, target := range []error{
		game.ErrWrongPhase, game.ErrWrongExerciseType, game.ErrAlreadyAnswered,
		game.ErrOptionRejected, game.ErrUnknownOption, game.ErrInvalidLetter,
		game.ErrAlreadyGuessed, game.ErrNoHint, game.ErrHintAlreadyShown,
		game.ErrCellOutOfRange, game.ErrAlreadySelected,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

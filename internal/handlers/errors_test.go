package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"germanclash/internal/game"
	"germanclash/internal/generation"
	"germanclash/internal/models"
	"germanclash/internal/service"
	"germanclash/internal/validation"
)

func TestRespondWithErrorWritesStatusAndBody(t *testing.T) {
	recorder := httptest.NewRecorder()

	respondWithError(recorder, 418, "Teapot", "", nil)

	if recorder.Code != 418 {
		t.Fatalf("expected status 418, got %d", recorder.Code)
	}
	if ct := recorder.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected JSON content type, got %q", ct)
	}

	var body errorBody
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if body.Error != "Teapot" {
		t.Fatalf("expected error 'Teapot', got %q", body.Error)
	}
}

func TestRespondWithErrorLogsMessage(t *testing.T) {
	var buf bytes.Buffer
	logger := log.Default()
	originalOutput := logger.Writer()
	logger.SetOutput(&buf)
	defer logger.SetOutput(originalOutput)

	recorder := httptest.NewRecorder()
	err := errors.New("boom")

	respondWithError(recorder, 500, "Internal server error", "", err)

	logOutput := buf.String()
	if !strings.Contains(logOutput, "Internal server error") {
		t.Fatalf("expected log to include user message, got %q", logOutput)
	}
	if !strings.Contains(logOutput, "boom") {
		t.Fatalf("expected log to include error, got %q", logOutput)
	}
}

func TestRespondWithServiceErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", validation.ValidationError{Field: "email", Message: "invalid email format"}, http.StatusBadRequest},
		{"rate limited", &service.RateLimitError{RetryAfter: 90 * time.Second}, http.StatusTooManyRequests},
		{"generation", &generation.ValidationError{Messages: []string{"item 1: missing statement"}}, http.StatusUnprocessableEntity},
		{"session not found", service.ErrSessionNotFound, http.StatusNotFound},
		{"wrapped exercise not found", fmt.Errorf("loading: %w", service.ErrExerciseNotFound), http.StatusNotFound},
		{"empty pool", game.ErrPoolEmpty, http.StatusNotFound},
		{"locked", service.ErrLevelLocked, http.StatusForbidden},
		{"email taken", service.ErrEmailTaken, http.StatusConflict},
		{"credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"contact disabled", service.ErrContactDisabled, http.StatusServiceUnavailable},
		{"invalid level", service.ErrInvalidLevel, http.StatusBadRequest},
		{"bad shape", models.ErrInvalidExerciseShape, http.StatusBadRequest},
		{"invalid backup", service.ErrInvalidBackup, http.StatusBadRequest},
		{"game rule", game.ErrAlreadyAnswered, http.StatusConflict},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			respondWithServiceError(recorder, "test", tt.err)
			if recorder.Code != tt.want {
				t.Errorf("status = %d, want %d", recorder.Code, tt.want)
			}
		})
	}
}

func TestRespondWithServiceErrorDetails(t *testing.T) {
	recorder := httptest.NewRecorder()
	respondWithServiceError(recorder, "test", validation.ValidationError{Field: "username", Message: "username must be at least 3 characters"})

	var body errorBody
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if body.Field != "username" {
		t.Errorf("field = %q, want username", body.Field)
	}

	recorder = httptest.NewRecorder()
	respondWithServiceError(recorder, "test", &service.RateLimitError{RetryAfter: 1500 * time.Millisecond})
	if got := recorder.Header().Get("Retry-After"); got != "2" {
		t.Errorf("Retry-After = %q, want 2", got)
	}

	recorder = httptest.NewRecorder()
	respondWithServiceError(recorder, "test", errors.New("secret detail"))
	if strings.Contains(recorder.Body.String(), "secret detail") {
		t.Error("internal errors must not leak into the response")
	}
}

func TestDecodeJSONRejectsMalformedBody(t *testing.T) {
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))

	var dst map[string]any
	if decodeJSON(recorder, req, &dst) {
		t.Fatal("expected decodeJSON to fail")
	}
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", recorder.Code)
	}
}

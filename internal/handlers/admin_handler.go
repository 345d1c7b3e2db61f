package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"germanclash/internal/generation"
	"germanclash/internal/models"
	"germanclash/internal/service"
)

// maxBackupBytes caps uploaded backup files
const maxBackupBytes = 10 << 20

// AdminHandler handles admin-only content, configuration and account routes
type AdminHandler struct {
	exercises *service.ExerciseService
	topics    *service.TopicService
	config    *service.ConfigService
	auth      *service.AuthService
	profiles  *service.ProfileService
	backup    *service.BackupService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(exercises *service.ExerciseService, topics *service.TopicService, config *service.ConfigService, auth *service.AuthService, profiles *service.ProfileService, backup *service.BackupService) *AdminHandler {
	return &AdminHandler{
		exercises: exercises,
		topics:    topics,
		config:    config,
		auth:      auth,
		profiles:  profiles,
		backup:    backup,
	}
}

// ListExercises lists exercises, optionally filtered by ?level= and ?topic=
func (h *AdminHandler) ListExercises(w http.ResponseWriter, r *http.Request) {
	level := 0
	if raw := r.URL.Query().Get("level"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, ErrInvalidLevelParam, "", nil)
			return
		}
		level = n
	}

	exercises, err := h.exercises.List(r.Context(), level, r.URL.Query().Get("topic"))
	if err != nil {
		respondWithServiceError(w, "Error listing exercises", err)
		return
	}
	if exercises == nil {
		exercises = []*models.Exercise{}
	}
	respondWithJSON(w, http.StatusOK, exercises)
}

// GetExercise returns one exercise including its answers
func (h *AdminHandler) GetExercise(w http.ResponseWriter, r *http.Request) {
	ex, err := h.exercises.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithServiceError(w, "Error loading exercise", err)
		return
	}
	respondWithJSON(w, http.StatusOK, ex)
}

// CreateExercise stores a new exercise
func (h *AdminHandler) CreateExercise(w http.ResponseWriter, r *http.Request) {
	var ex models.Exercise
	if !decodeJSON(w, r, &ex) {
		return
	}
	if err := h.exercises.Create(r.Context(), &ex); err != nil {
		respondWithServiceError(w, "Error creating exercise", err)
		return
	}
	log.Printf("Exercise %s created by admin %d", ex.ID, GetIdentityFromContext(r.Context()).UserID)
	respondWithJSON(w, http.StatusCreated, ex)
}

// UpdateExercise replaces an exercise
func (h *AdminHandler) UpdateExercise(w http.ResponseWriter, r *http.Request) {
	var ex models.Exercise
	if !decodeJSON(w, r, &ex) {
		return
	}
	ex.ID = r.PathValue("id")
	if err := h.exercises.Update(r.Context(), &ex); err != nil {
		respondWithServiceError(w, "Error updating exercise", err)
		return
	}
	respondWithJSON(w, http.StatusOK, ex)
}

// DeleteExercise removes an exercise
func (h *AdminHandler) DeleteExercise(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.exercises.Delete(r.Context(), id); err != nil {
		respondWithServiceError(w, "Error deleting exercise", err)
		return
	}
	log.Printf("Exercise %s deleted by admin %d", id, GetIdentityFromContext(r.Context()).UserID)
	w.WriteHeader(http.StatusNoContent)
}

type generateRequest struct {
	Level int    `json:"level"`
	Topic string `json:"topic"`
	Count int    `json:"count"`
	Type  string `json:"type"`
	Save  bool   `json:"save"`
}

// GenerateExercises asks the language model for new exercises. With save set they are
// stored, otherwise they are returned for review.
func (h *AdminHandler) GenerateExercises(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.exercises.Generate(r.Context(), generation.Request{
		Level: req.Level,
		Topic: req.Topic,
		Count: req.Count,
		Type:  models.ExerciseType(req.Type),
	}, req.Save)
	if err != nil {
		respondWithServiceError(w, "Error generating exercises", err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// ListTopics lists every topic including hidden ones
func (h *AdminHandler) ListTopics(w http.ResponseWriter, r *http.Request) {
	topics, err := h.topics.ListAll(r.Context())
	if err != nil {
		respondWithServiceError(w, "Error listing topics", err)
		return
	}
	if topics == nil {
		topics = []models.Topic{}
	}
	respondWithJSON(w, http.StatusOK, topics)
}

// CreateTopic stores a new topic
func (h *AdminHandler) CreateTopic(w http.ResponseWriter, r *http.Request) {
	var topic models.Topic
	if !decodeJSON(w, r, &topic) {
		return
	}
	if err := h.topics.Create(r.Context(), &topic); err != nil {
		respondWithServiceError(w, "Error creating topic", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, topic)
}

// UpdateTopic replaces a topic
func (h *AdminHandler) UpdateTopic(w http.ResponseWriter, r *http.Request) {
	var topic models.Topic
	if !decodeJSON(w, r, &topic) {
		return
	}
	topic.ID = r.PathValue("id")
	if err := h.topics.Update(r.Context(), &topic); err != nil {
		respondWithServiceError(w, "Error updating topic", err)
		return
	}
	respondWithJSON(w, http.StatusOK, topic)
}

// DeleteTopic removes a topic. Its exercises stay.
func (h *AdminHandler) DeleteTopic(w http.ResponseWriter, r *http.Request) {
	if err := h.topics.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondWithServiceError(w, "Error deleting topic", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListConfig returns every stored config entry
func (h *AdminHandler) ListConfig(w http.ResponseWriter, r *http.Request) {
	entries, err := h.config.All(r.Context())
	if err != nil {
		respondWithServiceError(w, "Error listing config", err)
		return
	}
	if entries == nil {
		entries = []models.ConfigEntry{}
	}
	respondWithJSON(w, http.StatusOK, entries)
}

// UpdateConfig stores one or more config entries
func (h *AdminHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var entries []models.ConfigEntry
	if !decodeJSON(w, r, &entries) {
		return
	}
	if err := h.config.SetMultiple(r.Context(), entries); err != nil {
		respondWithServiceError(w, "Error updating config", err)
		return
	}
	log.Printf("Config updated by admin %d: %d entries", GetIdentityFromContext(r.Context()).UserID, len(entries))
	respondWithJSON(w, http.StatusOK, h.config.Values(r.Context()))
}

// RefreshConfig reloads the config cache from the database
func (h *AdminHandler) RefreshConfig(w http.ResponseWriter, r *http.Request) {
	h.config.Refresh(r.Context())
	respondWithJSON(w, http.StatusOK, h.config.Values(r.Context()))
}

// ListUsers lists every profile with its account email and highest role
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.profiles.ListProfiles(r.Context())
	if err != nil {
		respondWithServiceError(w, "Error listing users", err)
		return
	}
	if profiles == nil {
		profiles = []models.ProfileWithAccount{}
	}
	respondWithJSON(w, http.StatusOK, profiles)
}

func userIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		respondWithError(w, http.StatusBadRequest, ErrInvalidUserID, "", nil)
		return 0, false
	}
	return id, true
}

func (h *AdminHandler) respondWithRoles(w http.ResponseWriter, r *http.Request, userID int64) {
	roles, err := h.auth.Roles(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, "Error loading roles", err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"user_id": userID, "roles": roles})
}

// AssignRole grants a role to a user
func (h *AdminHandler) AssignRole(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}
	role := models.Role(strings.ToUpper(r.PathValue("role")))
	if err := h.auth.AssignRole(r.Context(), userID, role); err != nil {
		respondWithServiceError(w, "Error assigning role", err)
		return
	}
	log.Printf("Role %s assigned to user %d by admin %d", role, userID, GetIdentityFromContext(r.Context()).UserID)
	h.respondWithRoles(w, r, userID)
}

// RemoveRole revokes a role from a user
func (h *AdminHandler) RemoveRole(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}
	role := models.Role(strings.ToUpper(r.PathValue("role")))
	if err := h.auth.RemoveRole(r.Context(), userID, role); err != nil {
		respondWithServiceError(w, "Error removing role", err)
		return
	}
	log.Printf("Role %s removed from user %d by admin %d", role, userID, GetIdentityFromContext(r.Context()).UserID)
	h.respondWithRoles(w, r, userID)
}

// ExportBackup streams a content backup as a JSON download
func (h *AdminHandler) ExportBackup(w http.ResponseWriter, r *http.Request) {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("germanclash_backup_%s.json", timestamp)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	data, err := h.backup.Export(r.Context(), w)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to export backup", "Error exporting backup", err)
		return
	}
	log.Printf("Backup exported by admin %d: %d topics, %d exercises", GetIdentityFromContext(r.Context()).UserID, len(data.Topics), len(data.Exercises))
}

// ImportBackup restores a backup from the request body
func (h *AdminHandler) ImportBackup(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBackupBytes)
	stats, err := h.backup.Import(r.Context(), r.Body)
	if err != nil {
		respondWithServiceError(w, "Error importing backup", err)
		return
	}
	log.Printf("Backup imported by admin %d: %+v", GetIdentityFromContext(r.Context()).UserID, stats)
	respondWithJSON(w, http.StatusOK, stats)
}

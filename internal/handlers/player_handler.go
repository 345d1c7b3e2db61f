package handlers

import (
	"net/http"
	"strconv"

	"germanclash/internal/models"
	"germanclash/internal/service"
)

// PlayerHandler serves rankings, levels, profiles and the other player-facing reads
type PlayerHandler struct {
	rankings *service.RankingService
	levels   *service.LevelService
	profiles *service.ProfileService
	topics   *service.TopicService
	config   *service.ConfigService
	contact  *service.ContactService
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(rankings *service.RankingService, levels *service.LevelService, profiles *service.ProfileService, topics *service.TopicService, config *service.ConfigService, contact *service.ContactService) *PlayerHandler {
	return &PlayerHandler{
		rankings: rankings,
		levels:   levels,
		profiles: profiles,
		topics:   topics,
		config:   config,
		contact:  contact,
	}
}

// levelParam parses the {level} path value, answering 400 when it is not 1..6
func levelParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	level, err := strconv.Atoi(r.PathValue("level"))
	if err != nil || level < 1 || level > service.MaxLevel {
		respondWithError(w, http.StatusBadRequest, ErrInvalidLevelParam, "", nil)
		return 0, false
	}
	return level, true
}

// Rankings returns the daily leaderboard of a level
func (h *PlayerHandler) Rankings(w http.ResponseWriter, r *http.Request) {
	level, ok := levelParam(w, r)
	if !ok {
		return
	}
	rankings, err := h.rankings.GetDailyRankings(r.Context(), level)
	if err != nil {
		respondWithServiceError(w, "Error loading rankings", err)
		return
	}
	if rankings == nil {
		rankings = []models.DailyRanking{}
	}
	respondWithJSON(w, http.StatusOK, rankings)
}

// RankPosition returns the caller's position on a level's daily leaderboard
func (h *PlayerHandler) RankPosition(w http.ResponseWriter, r *http.Request) {
	level, ok := levelParam(w, r)
	if !ok {
		return
	}
	identity := GetIdentityFromContext(r.Context())
	position, ranked, err := h.rankings.GetUserRankPosition(r.Context(), identity.UserID, level)
	if err != nil {
		respondWithServiceError(w, "Error loading rank position", err)
		return
	}
	respondWithJSON(w, http.StatusOK, RankPositionView{Level: level, Position: position, Ranked: ranked})
}

// Levels returns the level picker for the caller. Anonymous players only see level 1 open.
func (h *PlayerHandler) Levels(w http.ResponseWriter, r *http.Request) {
	player := playerFromContext(r.Context())
	levels, err := h.levels.Levels(r.Context(), player.UserID, player.Role)
	if err != nil {
		respondWithServiceError(w, "Error loading levels", err)
		return
	}
	respondWithJSON(w, http.StatusOK, levels)
}

// Profile returns the caller's profile
func (h *PlayerHandler) Profile(w http.ResponseWriter, r *http.Request) {
	identity := GetIdentityFromContext(r.Context())
	profile, err := h.profiles.GetProfile(r.Context(), identity.UserID)
	if err != nil {
		respondWithServiceError(w, "Error loading profile", err)
		return
	}
	respondWithJSON(w, http.StatusOK, profile)
}

type updateProfileRequest struct {
	Username   string `json:"username"`
	AvatarIcon string `json:"avatar_icon"`
}

// UpdateProfile changes the caller's username and avatar
func (h *PlayerHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	identity := GetIdentityFromContext(r.Context())
	profile, err := h.profiles.UpdateProfile(r.Context(), identity.UserID, req.Username, req.AvatarIcon)
	if err != nil {
		respondWithServiceError(w, "Error updating profile", err)
		return
	}
	respondWithJSON(w, http.StatusOK, profile)
}

// ProfileStats returns the caller's summary of the last 24 hours
func (h *PlayerHandler) ProfileStats(w http.ResponseWriter, r *http.Request) {
	identity := GetIdentityFromContext(r.Context())
	stats, err := h.rankings.GetDailyStats(r.Context(), identity.UserID)
	if err != nil {
		respondWithServiceError(w, "Error loading stats", err)
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}

// Topics lists the visible topics in display order
func (h *PlayerHandler) Topics(w http.ResponseWriter, r *http.Request) {
	topics, err := h.topics.ListVisible(r.Context())
	if err != nil {
		respondWithServiceError(w, "Error loading topics", err)
		return
	}
	if topics == nil {
		topics = []models.Topic{}
	}
	respondWithJSON(w, http.StatusOK, topics)
}

// LatestTopic returns the most recently created visible topic
func (h *PlayerHandler) LatestTopic(w http.ResponseWriter, r *http.Request) {
	topic, err := h.topics.Latest(r.Context())
	if err != nil {
		respondWithServiceError(w, "Error loading latest topic", err)
		return
	}
	respondWithJSON(w, http.StatusOK, topic)
}

// TopicByTitle looks a topic up by its exact title
func (h *PlayerHandler) TopicByTitle(w http.ResponseWriter, r *http.Request) {
	topic, err := h.topics.GetByTitle(r.Context(), r.PathValue("title"))
	if err != nil {
		respondWithServiceError(w, "Error loading topic", err)
		return
	}
	respondWithJSON(w, http.StatusOK, topic)
}

// Config returns the settings clients may read
func (h *PlayerHandler) Config(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.config.PublicValues(r.Context()))
}

type contactRequest struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Contact forwards a message from the caller to the site owner
func (h *PlayerHandler) Contact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	identity := GetIdentityFromContext(r.Context())
	remaining, err := h.contact.Send(r.Context(), service.ContactRequest{
		UserID:    identity.UserID,
		UserEmail: identity.Email,
		Subject:   req.Subject,
		Message:   req.Message,
	})
	if err != nil {
		respondWithServiceError(w, "Error sending contact message", err)
		return
	}
	respondWithJSON(w, http.StatusOK, ContactResponse{Success: true, Remaining: remaining})
}

package handlers

import "net/http"

// Handlers groups every route handler the server mounts
type Handlers struct {
	Auth   *AuthHandler
	Game   *GameHandler
	Player *PlayerHandler
	Admin  *AdminHandler
	Health *HealthHandler
}

// RegisterRoutes mounts the JSON API on mux
func RegisterRoutes(mux *http.ServeMux, m *Middleware, h Handlers) {
	mux.HandleFunc("GET /healthz", h.Health.Healthz)

	// Auth
	mux.HandleFunc("POST /api/auth/register", m.RateLimit(h.Auth.Register))
	mux.HandleFunc("POST /api/auth/login", m.RateLimit(h.Auth.Login))
	mux.HandleFunc("POST /api/auth/logout", h.Auth.Logout)
	mux.HandleFunc("GET /api/auth/me", m.RequireAuth(h.Auth.Me))
	mux.HandleFunc("GET /auth/{provider}/start", h.Auth.StartOAuth)
	mux.HandleFunc("GET /auth/{provider}/callback", h.Auth.OAuthCallback)
	mux.HandleFunc("POST /api/scores/pending", m.RequireAuth(h.Auth.FlushPendingScore))

	// Game sessions
	mux.HandleFunc("POST /api/sessions", m.OptionalAuth(h.Game.StartSession))
	mux.HandleFunc("GET /api/sessions/{id}", m.OptionalAuth(h.Game.GetSession))
	mux.HandleFunc("DELETE /api/sessions/{id}", m.OptionalAuth(h.Game.DiscardSession))
	mux.HandleFunc("POST /api/sessions/{id}/answer", m.OptionalAuth(h.Game.Answer))
	mux.HandleFunc("POST /api/sessions/{id}/letter", m.OptionalAuth(h.Game.GuessLetter))
	mux.HandleFunc("POST /api/sessions/{id}/hint", m.OptionalAuth(h.Game.Hint))
	mux.HandleFunc("POST /api/sessions/{id}/reveal", m.OptionalAuth(h.Game.Reveal))
	mux.HandleFunc("POST /api/sessions/{id}/cell", m.OptionalAuth(h.Game.SelectCell))
	mux.HandleFunc("POST /api/sessions/{id}/solve", m.OptionalAuth(h.Game.Solve))
	mux.HandleFunc("POST /api/sessions/{id}/continue", m.OptionalAuth(h.Game.Continue))
	mux.HandleFunc("POST /api/sessions/{id}/acknowledge", m.OptionalAuth(h.Game.Acknowledge))
	mux.HandleFunc("GET /api/exercises/{id}/audio", h.Game.ExerciseAudio)

	// Rankings, levels and profile
	mux.HandleFunc("GET /api/rankings/{level}", h.Player.Rankings)
	mux.HandleFunc("GET /api/rankings/{level}/position", m.RequireAuth(h.Player.RankPosition))
	mux.HandleFunc("GET /api/levels", m.OptionalAuth(h.Player.Levels))
	mux.HandleFunc("GET /api/profile", m.RequireAuth(h.Player.Profile))
	mux.HandleFunc("PUT /api/profile", m.RequireAuth(h.Player.UpdateProfile))
	mux.HandleFunc("GET /api/profile/stats", m.RequireAuth(h.Player.ProfileStats))

	// Topics, config and contact
	mux.HandleFunc("GET /api/topics", h.Player.Topics)
	mux.HandleFunc("GET /api/topics/latest", h.Player.LatestTopic)
	mux.HandleFunc("GET /api/topics/by-title/{title}", h.Player.TopicByTitle)
	mux.HandleFunc("GET /api/config", h.Player.Config)
	mux.HandleFunc("POST /api/contact", m.RequireAuth(m.RateLimit(h.Player.Contact)))

	// Admin
	mux.HandleFunc("GET /api/admin/exercises", m.RequireAdmin(h.Admin.ListExercises))
	mux.HandleFunc("POST /api/admin/exercises", m.RequireAdmin(h.Admin.CreateExercise))
	mux.HandleFunc("POST /api/admin/exercises/generate", m.RequireAdmin(h.Admin.GenerateExercises))
	mux.HandleFunc("GET /api/admin/exercises/{id}", m.RequireAdmin(h.Admin.GetExercise))
	mux.HandleFunc("PUT /api/admin/exercises/{id}", m.RequireAdmin(h.Admin.UpdateExercise))
	mux.HandleFunc("DELETE /api/admin/exercises/{id}", m.RequireAdmin(h.Admin.DeleteExercise))
	mux.HandleFunc("GET /api/admin/topics", m.RequireAdmin(h.Admin.ListTopics))
	mux.HandleFunc("POST /api/admin/topics", m.RequireAdmin(h.Admin.CreateTopic))
	mux.HandleFunc("PUT /api/admin/topics/{id}", m.RequireAdmin(h.Admin.UpdateTopic))
	mux.HandleFunc("DELETE /api/admin/topics/{id}", m.RequireAdmin(h.Admin.DeleteTopic))
	mux.HandleFunc("GET /api/admin/config", m.RequireAdmin(h.Admin.ListConfig))
	mux.HandleFunc("PUT /api/admin/config", m.RequireAdmin(h.Admin.UpdateConfig))
	mux.HandleFunc("POST /api/admin/config/refresh", m.RequireAdmin(h.Admin.RefreshConfig))
	mux.HandleFunc("GET /api/admin/users", m.RequireAdmin(h.Admin.ListUsers))
	mux.HandleFunc("PUT /api/admin/users/{id}/roles/{role}", m.RequireAdmin(h.Admin.AssignRole))
	mux.HandleFunc("DELETE /api/admin/users/{id}/roles/{role}", m.RequireAdmin(h.Admin.RemoveRole))
	mux.HandleFunc("GET /api/admin/backup", m.RequireAdmin(h.Admin.ExportBackup))
	mux.HandleFunc("POST /api/admin/backup", m.RequireAdmin(h.Admin.ImportBackup))
}

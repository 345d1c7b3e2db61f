package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"germanclash/internal/models"
	"germanclash/internal/security"
	"germanclash/internal/service"
)

// pendingScoreTTL is how long an anonymous score waits for sign-up
const pendingScoreTTL = 24 * time.Hour

// AuthHandler handles accounts, sign-in and the pending score slot
type AuthHandler struct {
	authService          *service.AuthService
	pending              *security.PendingScoreSigner
	oauthProviders       map[string]OAuthProvider
	oauthRedirectBaseURL string
	appBaseURL           string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, pending *security.PendingScoreSigner, oauthProviders map[string]OAuthProvider, oauthRedirectBaseURL, appBaseURL string) *AuthHandler {
	return &AuthHandler{
		authService:          authService,
		pending:              pending,
		oauthProviders:       oauthProviders,
		oauthRedirectBaseURL: oauthRedirectBaseURL,
		appBaseURL:           appBaseURL,
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Register creates an account and signs it in
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.authService.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		respondWithServiceError(w, "Error registering user", err)
		return
	}
	log.Printf("User registered: id=%d", user.ID)
	h.signIn(w, r, user, http.StatusCreated)
}

// Login signs in with email and password
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondWithServiceError(w, "Error logging in", err)
		return
	}
	h.signIn(w, r, user, http.StatusOK)
}

// Logout clears the auth cookie. Bearer tokens simply expire.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, security.CreateDeleteCookie(r, security.AuthCookie))
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the signed-in account
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, newUserView(GetIdentityFromContext(r.Context())))
}

// FlushPendingScore records the pending score cookie for the signed-in player
func (h *AuthHandler) FlushPendingScore(w http.ResponseWriter, r *http.Request) {
	identity := GetIdentityFromContext(r.Context())
	saved := h.flushPendingScore(w, r, identity.UserID)
	respondWithJSON(w, http.StatusOK, map[string]bool{"saved": saved})
}

// signIn issues a token, sets the auth cookie and flushes any pending score
func (h *AuthHandler) signIn(w http.ResponseWriter, r *http.Request, user *models.User, status int) {
	token, expires, err := h.authService.IssueToken(r.Context(), user)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error issuing token", err)
		return
	}
	http.SetCookie(w, security.CreateCookie(r, security.AuthCookie, token, expires))
	h.flushPendingScore(w, r, user.ID)

	identity, err := h.authService.Authenticate(r.Context(), token)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error loading identity", err)
		return
	}
	respondWithJSON(w, status, AuthResponse{Token: token, ExpiresAt: expires, User: newUserView(identity)})
}

// flushPendingScore submits and clears the pending score cookie. Failures are logged and
// never block sign-in.
func (h *AuthHandler) flushPendingScore(w http.ResponseWriter, r *http.Request, userID int64) bool {
	cookie, err := r.Cookie(security.PendingScoreCookie)
	if err != nil || cookie.Value == "" {
		return false
	}
	http.SetCookie(w, security.CreateDeleteCookie(r, security.PendingScoreCookie))

	pending, err := h.pending.Decode(cookie.Value)
	if err != nil {
		log.Printf("Warning: discarding pending score for user %d: %v", userID, err)
		return false
	}
	if err := h.authService.FlushPendingScore(context.WithoutCancel(r.Context()), userID, pending); err != nil {
		log.Printf("Warning: failed to save pending score for user %d: %v", userID, err)
		return false
	}
	log.Printf("Saved pending score %d on level %d for user %d", pending.Score, pending.Level, userID)
	return true
}

// setPendingScore stores the final score of an anonymous session, replacing any earlier one
func setPendingScore(w http.ResponseWriter, r *http.Request, signer *security.PendingScoreSigner, score models.PendingScore) bool {
	value, err := signer.Encode(score)
	if err != nil {
		log.Printf("Warning: failed to encode pending score: %v", err)
		return false
	}
	http.SetCookie(w, security.CreateCookie(r, security.PendingScoreCookie, value, time.Now().Add(pendingScoreTTL)))
	return true
}

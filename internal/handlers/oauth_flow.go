package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"germanclash/internal/security"
)

const (
	oauthStateCookie    = "oauth_state"
	oauthProviderCookie = "oauth_provider"
	oauthCookieTTL      = 10 * time.Minute

	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// OAuthProvider defines provider configuration and metadata
type OAuthProvider struct {
	Name        string
	Label       string
	Config      *oauth2.Config
	UserInfoURL string
	AuthParams  map[string]string
}

// NewGoogleProvider returns the Google sign-in provider, or false when it is not configured
func NewGoogleProvider(clientID, clientSecret string) (OAuthProvider, bool) {
	if clientID == "" || clientSecret == "" {
		return OAuthProvider{}, false
	}
	return OAuthProvider{
		Name:  "google",
		Label: "Google",
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		UserInfoURL: googleUserInfoURL,
		AuthParams:  map[string]string{"prompt": "select_account"},
	}, true
}

type oauthUserInfo struct {
	Subject string
	Email   string
	Name    string
}

func (p OAuthProvider) configured() bool {
	return p.Config != nil && p.Config.ClientID != "" && p.Config.ClientSecret != ""
}

func (h *AuthHandler) provider(r *http.Request) (string, OAuthProvider, bool) {
	key := r.PathValue("provider")
	provider, ok := h.oauthProviders[key]
	if !ok || !provider.configured() {
		return key, OAuthProvider{}, false
	}
	return key, provider, true
}

// StartOAuth initiates the OAuth flow for a provider
func (h *AuthHandler) StartOAuth(w http.ResponseWriter, r *http.Request) {
	providerKey, provider, ok := h.provider(r)
	if !ok {
		respondWithError(w, http.StatusNotFound, ErrOAuthNotConfigured, "OAuth start for unknown provider "+providerKey, nil)
		return
	}

	state := security.NewID()
	h.setTempCookie(w, r, oauthStateCookie, state)
	h.setTempCookie(w, r, oauthProviderCookie, providerKey)

	config := *provider.Config
	config.RedirectURL = h.oauthRedirectURL(r, providerKey)

	options := []oauth2.AuthCodeOption{oauth2.AccessTypeOnline}
	for key, value := range provider.AuthParams {
		options = append(options, oauth2.SetAuthURLParam(key, value))
	}
	http.Redirect(w, r, config.AuthCodeURL(state, options...), http.StatusFound)
}

// OAuthCallback handles the OAuth provider callback. On success the auth cookie is set and
// the browser goes back to the app.
func (h *AuthHandler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	providerKey, provider, ok := h.provider(r)
	if !ok {
		respondWithError(w, http.StatusNotFound, ErrOAuthNotConfigured, "OAuth callback for unknown provider "+providerKey, nil)
		return
	}

	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if code == "" {
		respondWithError(w, http.StatusBadRequest, "Missing authorization code", "OAuth callback without code", nil)
		return
	}

	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != state {
		respondWithError(w, http.StatusBadRequest, "Invalid OAuth state", "OAuth state mismatch", err)
		return
	}
	if providerCookie, err := r.Cookie(oauthProviderCookie); err == nil && providerCookie.Value != providerKey {
		respondWithError(w, http.StatusBadRequest, "OAuth provider mismatch", "OAuth provider cookie mismatch", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	config := *provider.Config
	config.RedirectURL = h.oauthRedirectURL(r, providerKey)

	token, err := config.Exchange(ctx, code)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Failed to exchange OAuth code", "OAuth code exchange failed", err)
		return
	}

	userInfo, err := fetchOAuthUser(ctx, provider, token)
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "Failed to read your account details", "OAuth user info failed", err)
		return
	}

	h.clearTempCookie(w, r, oauthStateCookie)
	h.clearTempCookie(w, r, oauthProviderCookie)

	user, err := h.authService.OAuthLogin(r.Context(), providerKey, userInfo.Subject, userInfo.Email, userInfo.Name)
	if err != nil {
		respondWithServiceError(w, "Error signing in with "+providerKey, err)
		return
	}

	accessToken, expires, err := h.authService.IssueToken(r.Context(), user)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error issuing token", err)
		return
	}
	http.SetCookie(w, security.CreateCookie(r, security.AuthCookie, accessToken, expires))
	h.flushPendingScore(w, r, user.ID)

	log.Printf("User %d signed in with %s", user.ID, providerKey)
	http.Redirect(w, r, h.appBaseURL, http.StatusSeeOther)
}

// fetchOAuthUser reads the account behind a token from the provider's userinfo endpoint
func fetchOAuthUser(ctx context.Context, provider OAuthProvider, token *oauth2.Token) (oauthUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
	resp, err := client.Get(provider.UserInfoURL)
	if err != nil {
		return oauthUserInfo{}, fmt.Errorf("failed to fetch %s user info: %w", provider.Label, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return oauthUserInfo{}, fmt.Errorf("failed to fetch %s user info: status %d", provider.Label, resp.StatusCode)
	}

	var payload struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return oauthUserInfo{}, fmt.Errorf("failed to parse %s user info: %w", provider.Label, err)
	}
	if payload.ID == "" || payload.Email == "" {
		return oauthUserInfo{}, errors.New("provider did not return an account id and email")
	}
	return oauthUserInfo{Subject: payload.ID, Email: payload.Email, Name: payload.Name}, nil
}

func (h *AuthHandler) oauthRedirectURL(r *http.Request, providerKey string) string {
	baseURL := strings.TrimSpace(h.oauthRedirectBaseURL)
	if baseURL == "" {
		scheme := "http"
		if security.IsSecureRequest(r) {
			scheme = "https"
		}
		baseURL = fmt.Sprintf("%s://%s", scheme, r.Host)
	}
	return fmt.Sprintf("%s/auth/%s/callback", strings.TrimRight(baseURL, "/"), providerKey)
}

func (h *AuthHandler) setTempCookie(w http.ResponseWriter, r *http.Request, name, value string) {
	cookie := security.CreateCookie(r, name, value, time.Now().Add(oauthCookieTTL))
	cookie.MaxAge = int(oauthCookieTTL.Seconds())
	http.SetCookie(w, cookie)
}

func (h *AuthHandler) clearTempCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, security.CreateDeleteCookie(r, name))
}

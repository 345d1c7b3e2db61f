package security

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// AuthCookie carries the access token for browser clients
const AuthCookie = "auth_token"

// NewID returns a random UUID string used for game sessions and OAuth state
func NewID() string {
	return uuid.New().String()
}

// IsSecureRequest determines if the request is over HTTPS, directly or behind a proxy
func IsSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "https" {
		return true
	}
	return r.URL.Scheme == "https"
}

// CreateCookie creates an HttpOnly cookie whose Secure flag follows the request scheme
func CreateCookie(r *http.Request, name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	}
}

// CreateDeleteCookie creates a cookie that clears name
func CreateDeleteCookie(r *http.Request, name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	}
}

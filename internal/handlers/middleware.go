package handlers

import (
	"context"
	"fmt"
	"log"
	"math"
	"net/http"
	"strings"
	"time"

	"germanclash/internal/security"
	"germanclash/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const IdentityContextKey ContextKey = "identity"

// Authenticator resolves access tokens
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*service.Identity, error)
}

// Middleware holds dependencies for middleware functions
type Middleware struct {
	auth    Authenticator
	limiter *security.RateLimiter
}

// NewMiddleware creates a new middleware instance. limiter may be nil to disable RateLimit.
func NewMiddleware(auth Authenticator, limiter *security.RateLimiter) *Middleware {
	return &Middleware{auth: auth, limiter: limiter}
}

// bearerToken reads the access token from the Authorization header or the auth cookie
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(security.AuthCookie); err == nil {
		return cookie.Value
	}
	return ""
}

func (m *Middleware) identify(r *http.Request) (*service.Identity, bool) {
	token := bearerToken(r)
	if token == "" {
		return nil, false
	}
	identity, err := m.auth.Authenticate(r.Context(), token)
	if err != nil {
		return nil, true
	}
	return identity, true
}

// RequireAuth is middleware that requires a valid access token
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, _ := m.identify(r)
		if identity == nil {
			respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
			return
		}
		ctx := context.WithValue(r.Context(), IdentityContextKey, identity)
		next(w, r.WithContext(ctx))
	}
}

// OptionalAuth attaches the identity when a valid token is present. A bad token is
// treated as anonymous and its cookie is cleared.
func (m *Middleware) OptionalAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, presented := m.identify(r)
		if identity == nil {
			if presented {
				http.SetCookie(w, security.CreateDeleteCookie(r, security.AuthCookie))
			}
			next(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), IdentityContextKey, identity)
		next(w, r.WithContext(ctx))
	}
}

// RequireAdmin is middleware that requires the ADMIN role
func (m *Middleware) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		identity := GetIdentityFromContext(r.Context())
		if !identity.IsAdmin() {
			log.Printf("Warning: user %d denied admin access to %s", identity.UserID, r.URL.Path)
			respondWithError(w, http.StatusForbidden, ErrForbidden, "", nil)
			return
		}
		next(w, r)
	})
}

// RateLimit limits requests per client IP
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	if m.limiter == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ip := security.GetClientIP(r)
		if !m.limiter.Allow(ip) {
			log.Printf("Rate limit exceeded for %s on %s", ip, r.URL.Path)
			respondWithError(w, http.StatusTooManyRequests, ErrTooManyRequests, "", nil)
			return
		}
		next(w, r)
	}
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		log.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// GetIdentityFromContext retrieves the signed-in identity, nil for anonymous requests
func GetIdentityFromContext(ctx context.Context) *service.Identity {
	identity, ok := ctx.Value(IdentityContextKey).(*service.Identity)
	if !ok {
		return nil
	}
	return identity
}

// playerFromContext returns the game player of the request, anonymous when signed out
func playerFromContext(ctx context.Context) service.Player {
	if identity := GetIdentityFromContext(ctx); identity != nil {
		return identity.Player()
	}
	return service.Player{}
}

func retryAfterSeconds(d time.Duration) string {
	return fmt.Sprintf("%d", int(math.Ceil(d.Seconds())))
}

package service

import (
	"context"
	"fmt"
	"html"
	"log"
	"strconv"
	"strings"
	"time"

	"germanclash/internal/security"
	"germanclash/internal/validation"
)

const (
	// ContactLimit is how many messages a player may send per ContactWindow
	ContactLimit  = 5
	ContactWindow = time.Hour

	contactSubjectPrefix = "[Contacto] "
)

// RateLimitError is returned when a player has used up the contact quota
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%v: retry after %s", ErrContactRateLimited, e.RetryAfter.Round(time.Second))
}

func (e *RateLimitError) Unwrap() error { return ErrContactRateLimited }

// ContactRequest is a message from a signed-in player to the site owner
type ContactRequest struct {
	UserID    int64
	UserEmail string
	Subject   string
	Message   string
}

// ContactService forwards contact form messages to the configured address
type ContactService struct {
	mailer  Mailer
	config  *ConfigService
	limiter security.WindowLimiter
}

// NewContactService creates a new contact service
func NewContactService(mailer Mailer, config *ConfigService, limiter security.WindowLimiter) *ContactService {
	return &ContactService{mailer: mailer, config: config, limiter: limiter}
}

// Send validates and delivers a message, returning how many messages remain in the window
func (s *ContactService) Send(ctx context.Context, req ContactRequest) (int, error) {
	subject := strings.TrimSpace(req.Subject)
	message := strings.TrimSpace(req.Message)
	if err := validation.ValidateContact(subject, message); err != nil {
		return 0, err
	}

	recipient := s.config.GetString(ctx, ConfigContactEmail, "")
	if recipient == "" || s.mailer == nil || !s.mailer.IsEnabled() {
		log.Printf("Warning: contact message from user %d dropped: contact email not configured", req.UserID)
		return 0, ErrContactDisabled
	}

	decision, err := s.limiter.Allow(ctx, "contact:"+strconv.FormatInt(req.UserID, 10))
	if err != nil {
		return 0, fmt.Errorf("failed to check contact rate limit: %w", err)
	}
	if !decision.Allowed {
		return 0, &RateLimitError{RetryAfter: decision.RetryAfter}
	}

	msg := EmailMessage{
		To:       recipient,
		ReplyTo:  req.UserEmail,
		Subject:  contactSubjectPrefix + subject,
		HTMLBody: contactHTML(req, subject, message),
		TextBody: fmt.Sprintf("De: %s\nAsunto: %s\n\n%s\n\nUsuario ID: %d\n", req.UserEmail, subject, message, req.UserID),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return 0, err
	}

	log.Printf("Contact email sent: user=%d subject=%q", req.UserID, truncate(subject, 50))
	return decision.Remaining, nil
}

func contactHTML(req ContactRequest, subject, message string) string {
	return fmt.Sprintf(`<h2>Nuevo mensaje de contacto</h2>
<p><strong>De:</strong> %s</p>
<p><strong>Asunto:</strong> %s</p>
<hr />
<p><strong>Mensaje:</strong></p>
<div style="white-space: pre-wrap; background: #f5f5f5; padding: 15px; border-radius: 5px;">%s</div>
<hr />
<p style="color: #666; font-size: 12px;">Usuario ID: %d</p>
`, html.EscapeString(req.UserEmail), html.EscapeString(subject), html.EscapeString(message), req.UserID)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

const (
	MinPasswordLength = 8
	MinUsernameLength = 3
	MaxUsernameLength = 30
	MaxAvatarLength   = 8
	MaxSubjectLength  = 200
	MaxMessageLength  = 5000
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	if len(password) < MinPasswordLength {
		return ValidationError{Field: "password", Message: fmt.Sprintf("password must be at least %d characters", MinPasswordLength)}
	}
	return nil
}

// ValidateName checks the account name
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	if utf8.RuneCountInString(name) < 2 {
		return ValidationError{Field: "name", Message: "name must be at least 2 characters"}
	}
	return nil
}

// ValidateUsername checks the public name shown in rankings
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)
	n := utf8.RuneCountInString(username)
	if n < MinUsernameLength {
		return ValidationError{Field: "username", Message: fmt.Sprintf("username must be at least %d characters", MinUsernameLength)}
	}
	if n > MaxUsernameLength {
		return ValidationError{Field: "username", Message: fmt.Sprintf("username must be at most %d characters", MaxUsernameLength)}
	}
	return nil
}

// ValidateAvatar checks the avatar icon, a short emoji sequence
func ValidateAvatar(icon string) error {
	icon = strings.TrimSpace(icon)
	if icon == "" {
		return ValidationError{Field: "avatar_icon", Message: "avatar is required"}
	}
	if utf8.RuneCountInString(icon) > MaxAvatarLength {
		return ValidationError{Field: "avatar_icon", Message: "avatar is too long"}
	}
	return nil
}

// ValidateContact checks a contact form submission. Both fields are expected trimmed.
func ValidateContact(subject, message string) error {
	if subject == "" {
		return ValidationError{Field: "subject", Message: "subject is required"}
	}
	if utf8.RuneCountInString(subject) > MaxSubjectLength {
		return ValidationError{Field: "subject", Message: fmt.Sprintf("subject must be at most %d characters", MaxSubjectLength)}
	}
	if message == "" {
		return ValidationError{Field: "message", Message: "message is required"}
	}
	if utf8.RuneCountInString(message) > MaxMessageLength {
		return ValidationError{Field: "message", Message: fmt.Sprintf("message must be at most %d characters", MaxMessageLength)}
	}
	return nil
}

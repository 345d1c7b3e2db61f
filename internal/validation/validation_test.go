package validation

import (
	"strings"
	"testing"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{
			name:    "valid email",
			email:   "test@example.com",
			wantErr: false,
		},
		{
			name:    "valid email with subdomain",
			email:   "user@mail.example.com",
			wantErr: false,
		},
		{
			name:    "valid email with plus",
			email:   "user+tag@example.com",
			wantErr: false,
		},
		{
			name:    "missing @",
			email:   "testexample.com",
			wantErr: true,
		},
		{
			name:    "missing domain",
			email:   "test@",
			wantErr: true,
		},
		{
			name:    "missing local part",
			email:   "@example.com",
			wantErr: true,
		},
		{
			name:    "empty string",
			email:   "",
			wantErr: true,
		},
		{
			name:    "spaces in email",
			email:   "test @example.com",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:    "valid name",
			input:   "John Doe",
			wantErr: false,
		},
		{
			name:    "single name",
			input:   "John",
			wantErr: false,
		},
		{
			name:    "empty name",
			input:   "",
			wantErr: true,
		},
		{
			name:    "name too short",
			input:   "J",
			wantErr: true,
		},
		{
			name:    "name with hyphen",
			input:   "Mary-Jane",
			wantErr: false,
		},
		{
			name:    "name with apostrophe",
			input:   "O'Brien",
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{
			name:     "valid password",
			password: "password123",
			wantErr:  false,
		},
		{
			name:     "password exactly 8 characters",
			password: "pass1234",
			wantErr:  false,
		},
		{
			name:     "password too short",
			password: "pass123",
			wantErr:  true,
		},
		{
			name:     "empty password",
			password: "",
			wantErr:  true,
		},
		{
			name:     "long password",
			password: "thisIsAVeryLongPasswordThatShouldBeValid123",
			wantErr:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePassword() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid username", input: "LukasB", wantErr: false},
		{name: "exactly 3 characters", input: "Ana", wantErr: false},
		{name: "umlauts count as one character", input: "Jürgen", wantErr: false},
		{name: "too short after trim", input: "  Al  ", wantErr: true},
		{name: "too long", input: strings.Repeat("x", 31), wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateUsername(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateAvatar(t *testing.T) {
	if err := ValidateAvatar("🦊"); err != nil {
		t.Errorf("ValidateAvatar() error = %v", err)
	}
	if err := ValidateAvatar(" "); err == nil {
		t.Error("expected an error for an empty avatar")
	}
	if err := ValidateAvatar(strings.Repeat("🦊", 9)); err == nil {
		t.Error("expected an error for a long avatar")
	}
}

func TestValidateContact(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		message string
		field   string
	}{
		{name: "valid", subject: "Hola", message: "Una pregunta", field: ""},
		{name: "empty subject", subject: "", message: "x", field: "subject"},
		{name: "subject at limit", subject: strings.Repeat("s", 200), message: "x", field: ""},
		{name: "subject too long", subject: strings.Repeat("s", 201), message: "x", field: "subject"},
		{name: "empty message", subject: "Hola", message: "", field: "message"},
		{name: "message too long", subject: "Hola", message: strings.Repeat("m", 5001), field: "message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateContact(tt.subject, tt.message)
			if tt.field == "" {
				if err != nil {
					t.Errorf("ValidateContact() error = %v", err)
				}
				return
			}
			verr, ok := err.(ValidationError)
			if !ok || verr.Field != tt.field {
				t.Errorf("ValidateContact() error = %v, want field %s", err, tt.field)
			}
		})
	}
}

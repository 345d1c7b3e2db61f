package models

import "time"

// Role grants access to paid levels and admin tooling
type Role string

const (
	RoleUser  Role = "USER"
	RolePro   Role = "PRO"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleUser || r == RolePro || r == RoleAdmin
}

// rank orders roles so the highest one can be picked from a set
func (r Role) rank() int {
	switch r {
	case RoleAdmin:
		return 2
	case RolePro:
		return 1
	}
	return 0
}

// HighestRole picks the most privileged role, defaulting to USER
func HighestRole(roles []Role) Role {
	best := RoleUser
	for _, r := range roles {
		if r.rank() > best.rank() {
			best = r
		}
	}
	return best
}

// User represents a player account in the system
type User struct {
	ID            int64
	Email         string
	PasswordHash  string
	Name          string
	OAuthProvider string
	OAuthSubject  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Profile holds the public player identity and per-level progress
type Profile struct {
	UserID        int64         `json:"user_id"`
	Username      string        `json:"username"`
	AvatarIcon    string        `json:"avatar_icon"`
	LevelProgress LevelProgress `json:"level_progress"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// ProfileWithAccount is the admin listing row
type ProfileWithAccount struct {
	Profile
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

const (
	DefaultUsername   = "Usuario"
	DefaultAvatarIcon = "😀"
)

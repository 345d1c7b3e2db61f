package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"germanclash/internal/database"
	"germanclash/internal/models"
	"germanclash/internal/repository"
	"germanclash/internal/security"
	"germanclash/internal/validation"
)

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// Identity is the signed-in user attached to a request
type Identity struct {
	UserID int64
	Email  string
	Name   string
	Roles  []models.Role
}

// Role returns the most privileged role of the identity
func (i *Identity) Role() models.Role {
	return models.HighestRole(i.Roles)
}

// IsAdmin reports whether the identity holds the ADMIN role
func (i *Identity) IsAdmin() bool {
	return i.Role() == models.RoleAdmin
}

// Player returns the identity as a game player
func (i *Identity) Player() Player {
	return Player{UserID: i.UserID, Role: i.Role()}
}

// AuthService handles accounts, sign-in and access tokens
type AuthService struct {
	db       *database.DB
	users    *repository.UserRepository
	tokens   *security.TokenManager
	rankings *RankingService
}

// NewAuthService creates a new auth service
func NewAuthService(db *database.DB, tokens *security.TokenManager, rankings *RankingService) *AuthService {
	return &AuthService{
		db:       db,
		users:    repository.NewUserRepository(db),
		tokens:   tokens,
		rankings: rankings,
	}
}

// profileName picks the initial public name of a new player
func profileName(name string) string {
	name = strings.TrimSpace(name)
	if validation.ValidateUsername(name) != nil {
		return models.DefaultUsername
	}
	return name
}

// createAccount stores a user with its profile and USER role. The very first account
// also becomes ADMIN.
func (s *AuthService) createAccount(ctx context.Context, email, passwordHash, name, provider, subject string) (*models.User, error) {
	var user *models.User
	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		users := repository.NewUserRepository(tx)
		count, err := users.CountUsers(ctx)
		if err != nil {
			return err
		}

		user, err = users.CreateUser(ctx, email, passwordHash, name)
		if err != nil {
			return err
		}
		if provider != "" {
			if err := users.LinkOAuthProvider(ctx, user.ID, provider, subject); err != nil {
				return err
			}
			user.OAuthProvider, user.OAuthSubject = provider, subject
		}

		profile := &models.Profile{
			UserID:     user.ID,
			Username:   profileName(name),
			AvatarIcon: models.DefaultAvatarIcon,
		}
		if err := repository.NewProfileRepository(tx).Create(ctx, profile); err != nil {
			return err
		}

		if err := users.AssignRole(ctx, user.ID, models.RoleUser); err != nil {
			return err
		}
		if count == 0 {
			log.Printf("First account %s granted the ADMIN role", email)
			return users.AssignRole(ctx, user.ID, models.RoleAdmin)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return user, nil
}

// Register creates a new account with an email and password
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}

	existing, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return s.createAccount(ctx, email, hash, name, "", "")
}

// Login checks an email and password
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !security.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// OAuthLogin signs in with an external provider, linking an existing account with the
// same email or creating a new one
func (s *AuthService) OAuthLogin(ctx context.Context, provider, subject, email, name string) (*models.User, error) {
	if provider == "" || subject == "" {
		return nil, errors.New("missing oauth provider information")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByOAuth(ctx, provider, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to lookup oauth user: %w", err)
	}
	if user != nil {
		return user, nil
	}

	existing, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		if err := s.users.LinkOAuthProvider(ctx, existing.ID, provider, subject); err != nil {
			if errors.Is(err, repository.ErrOAuthAlreadyLinked) {
				return nil, ErrEmailTaken
			}
			return nil, fmt.Errorf("failed to link oauth provider: %w", err)
		}
		existing.OAuthProvider, existing.OAuthSubject = provider, subject
		return existing, nil
	}

	if strings.TrimSpace(name) == "" {
		name = strings.Split(email, "@")[0]
	}
	return s.createAccount(ctx, email, "", name, provider, subject)
}

// IssueToken creates an access token carrying the user's current roles
func (s *AuthService) IssueToken(ctx context.Context, user *models.User) (string, time.Time, error) {
	roles, err := s.Roles(ctx, user.ID)
	if err != nil {
		return "", time.Time{}, err
	}
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return s.tokens.Issue(user.ID, user.Email, names)
}

// Authenticate resolves an access token. Roles are read from the database so changes
// apply without a new token.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*Identity, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidToken
	}
	roles, err := s.Roles(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Identity{UserID: user.ID, Email: user.Email, Name: user.Name, Roles: roles}, nil
}

// Roles returns the roles of a user, USER when none are stored
func (s *AuthService) Roles(ctx context.Context, userID int64) ([]models.Role, error) {
	roles, err := s.users.GetRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		return []models.Role{models.RoleUser}, nil
	}
	return roles, nil
}

// AssignRole grants a role to a user
func (s *AuthService) AssignRole(ctx context.Context, userID int64, role models.Role) error {
	if !role.Valid() {
		return ErrInvalidRole
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	return s.users.AssignRole(ctx, userID, role)
}

// RemoveRole takes a role away from a user
func (s *AuthService) RemoveRole(ctx context.Context, userID int64, role models.Role) error {
	if !role.Valid() {
		return ErrInvalidRole
	}
	if err := s.users.RemoveRole(ctx, userID, role); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// FlushPendingScore records the score an anonymous player earned before signing in.
// Anonymous players only play level 1, so any other level is rejected.
func (s *AuthService) FlushPendingScore(ctx context.Context, userID int64, pending models.PendingScore) error {
	if pending.Level != 1 {
		return ErrLevelLocked
	}
	return s.rankings.SubmitScore(ctx, userID, pending.Level, pending.Score)
}

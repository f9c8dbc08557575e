package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"cityconnect/internal/apperr"
	"cityconnect/internal/ids"
	"cityconnect/internal/models"
	"cityconnect/internal/repository"
	"cityconnect/internal/security"
)

const minPasswordLength = 8

var ErrInvalidCredentials = apperr.InvalidCredentials("email or password is incorrect")

type UserStore interface {
	Create(ctx context.Context, user models.User) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	UpdateRole(ctx context.Context, email string, role models.Role) error
}

type TokenIssuer interface {
	Issue(userID string, role models.Role) (string, error)
}

type AuthService struct {
	users  UserStore
	tokens TokenIssuer
	log    zerolog.Logger

	hashPassword func(string) ([]byte, error)
}

func NewAuthService(users UserStore, tokens TokenIssuer, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:        users,
		tokens:       tokens,
		log:          log,
		hashPassword: security.HashPassword,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// AuthResult never carries a password hash.
type AuthResult struct {
	Token string
	User  models.User
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = normalizeEmail(input.Email)

	if input.Name == "" {
		return AuthResult{}, apperr.Validation("name is required")
	}
	if _, err := mail.ParseAddress(input.Email); err != nil || input.Email == "" {
		return AuthResult{}, apperr.Validation("a valid email is required")
	}
	if utf8.RuneCountInString(input.Password) < minPasswordLength {
		return AuthResult{}, apperr.Validation("password must be at least %d characters", minPasswordLength)
	}

	if _, err := s.users.FindByEmail(ctx, input.Email); err == nil {
		return AuthResult{}, repository.ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return AuthResult{}, err
	}

	passwordHash, err := s.hashPassword(input.Password)
	if err != nil {
		return AuthResult{}, err
	}

	user, err := s.users.Create(ctx, models.User{
		ID:           ids.New(),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: passwordHash,
		Role:         models.RoleCitizen,
	})
	if err != nil {
		return AuthResult{}, err
	}

	s.log.Info().Str("user_id", user.ID).Msg("user registered")
	return s.issue(user)
}

// VerifyCredentials distinguishes an unknown email (not found) from a
// wrong password (invalid credentials).
func (s *AuthService) VerifyCredentials(ctx context.Context, email, password string) (models.User, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return models.User{}, err
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("stored password hash unreadable")
		return models.User{}, ErrInvalidCredentials
	}
	if !ok {
		return models.User{}, ErrInvalidCredentials
	}
	return user.Public(), nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	user, err := s.VerifyCredentials(ctx, email, password)
	if err != nil {
		return AuthResult{}, err
	}
	return s.issue(user)
}

func (s *AuthService) Me(ctx context.Context, userID string) (models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return models.User{}, err
	}
	return user.Public(), nil
}

// SetRole is the out-of-band role change used by the admin CLI.
func (s *AuthService) SetRole(ctx context.Context, email string, role string) error {
	parsed, err := models.ParseRole(role)
	if err != nil {
		return apperr.Validation("%s", err.Error())
	}
	if err := s.users.UpdateRole(ctx, normalizeEmail(email), parsed); err != nil {
		return err
	}
	s.log.Info().Str("email", normalizeEmail(email)).Str("role", string(parsed)).Msg("role changed")
	return nil
}

func (s *AuthService) issue(user models.User) (AuthResult, error) {
	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Token: token, User: user.Public()}, nil
}

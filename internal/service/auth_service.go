package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/billdesk/billdesk/internal/auth"
	"github.com/billdesk/billdesk/internal/models"
	"github.com/billdesk/billdesk/internal/session"
	"github.com/billdesk/billdesk/internal/storage"
)

// AuthService handles registration, login and logout. Login establishes the
// session facts wholesale; logout clears them wholesale.
type AuthService struct {
	store         storage.Store
	authenticator auth.Authenticator
	jwt           *auth.JWTManager
}

// NewAuthService creates a new AuthService.
func NewAuthService(store storage.Store, authenticator auth.Authenticator, jwt *auth.JWTManager) *AuthService {
	return &AuthService{
		store:         store,
		authenticator: authenticator,
		jwt:           jwt,
	}
}

// Register creates a new account.
func (s *AuthService) Register(ctx context.Context, reg auth.Registration) (*models.User, error) {
	user, err := s.authenticator.Register(ctx, reg)
	if err != nil {
		return nil, err
	}
	slog.Info("user registered", "user_id", user.ID, "is_biller", user.IsBiller)
	return user, nil
}

// Login verifies credentials, issues a token, and persists the session
// facts record keyed by that token.
func (s *AuthService) Login(ctx context.Context, email, password string) (session.Session, error) {
	user, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	token, err := s.jwt.Generate(user)
	if err != nil {
		return nil, err
	}

	permissions, err := s.store.PermissionsForUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load permissions: %w", err)
	}

	facts := session.Session{
		session.KeyToken:       token,
		session.KeyIsCustomer:  strconv.FormatBool(user.IsCustomer),
		session.KeyIsBiller:    strconv.FormatBool(user.IsBiller),
		session.KeyIsSuperuser: strconv.FormatBool(user.IsSuperuser),
		session.KeyID:          user.ID,
		session.KeyEmail:       user.Email,
		session.KeyFirstName:   user.FirstName,
		session.KeyLastName:    user.LastName,
		session.KeyPermissions: session.EncodePermissions(permissions),
	}

	expiresAt := time.Now().Add(s.jwt.TokenDuration()).Unix()
	if err := s.store.SaveSession(ctx, token, facts, expiresAt); err != nil {
		return nil, err
	}

	slog.Info("user logged in", "user_id", user.ID, "email", user.Email)
	return facts, nil
}

// Logout clears the session record for a token. Unknown tokens are a no-op.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.store.DeleteSession(ctx, token); err != nil {
		return err
	}
	slog.Info("session cleared")
	return nil
}

// SessionFromToken validates the bearer token and loads the stored session
// facts for it. Both checks must pass: a valid JWT whose session was cleared
// by logout is no longer good.
func (s *AuthService) SessionFromToken(ctx context.Context, token string) (session.Session, error) {
	if _, err := s.jwt.Validate(token); err != nil {
		return nil, err
	}

	facts, err := s.store.GetSession(ctx, token)
	if err != nil {
		return nil, auth.ErrInvalidToken
	}

	return session.Session(facts), nil
}

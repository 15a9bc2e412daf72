package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/billdesk/billdesk/internal/auth"
	"github.com/billdesk/billdesk/internal/models"
	"github.com/billdesk/billdesk/internal/session"
)

func newAuthService(t *testing.T) (*AuthService, *models.Group) {
	t.Helper()
	store := newTestStore(t)

	group := &models.Group{Name: "Customers", Permissions: []string{"bills.view", "payments.create"}}
	if err := store.CreateGroup(context.Background(), group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	authenticator := auth.NewPasswordAuthenticator(store)
	jwt := auth.NewJWTManager("test-secret-key-32-bytes-long!!", 24*time.Hour)
	return NewAuthService(store, authenticator, jwt), group
}

func TestLoginEstablishesSessionFacts(t *testing.T) {
	svc, group := newAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, auth.Registration{
		Email:     "pat@test",
		FirstName: "Pat",
		LastName:  "Jones",
		Password:  "correct horse",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := svc.store.AssignUserToGroup(ctx, user.ID, group.ID); err != nil {
		t.Fatalf("AssignUserToGroup failed: %v", err)
	}

	facts, err := svc.Login(ctx, "pat@test", "correct horse")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if facts.Get(session.KeyIsCustomer) != "true" {
		t.Errorf("is_customer = %q, want true", facts.Get(session.KeyIsCustomer))
	}
	if facts.Get(session.KeyIsBiller) != "false" {
		t.Errorf("is_biller = %q, want false", facts.Get(session.KeyIsBiller))
	}
	if facts.Get(session.KeyEmail) != "pat@test" {
		t.Errorf("email = %q, want pat@test", facts.Get(session.KeyEmail))
	}
	if facts.Get(session.KeyFirstName) != "Pat" || facts.Get(session.KeyLastName) != "Jones" {
		t.Errorf("name facts = %q %q", facts.Get(session.KeyFirstName), facts.Get(session.KeyLastName))
	}
	if facts.Token() == "" {
		t.Error("expected a token fact")
	}

	perms := facts.Permissions()
	if len(perms) != 2 {
		t.Fatalf("permissions = %v, want 2 codes", perms)
	}

	// The same facts are readable back through the token.
	loaded, err := svc.SessionFromToken(ctx, facts.Token())
	if err != nil {
		t.Fatalf("SessionFromToken failed: %v", err)
	}
	if loaded.UserID() != user.ID {
		t.Errorf("UserID = %q, want %q", loaded.UserID(), user.ID)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, auth.Registration{
		Email:     "pat@test",
		FirstName: "Pat",
		LastName:  "Jones",
		Password:  "correct horse",
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if _, err := svc.Login(ctx, "pat@test", "wrong"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@test", "correct horse"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, auth.Registration{
		Email:     "pat@test",
		FirstName: "Pat",
		LastName:  "Jones",
		Password:  "correct horse",
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	facts, err := svc.Login(ctx, "pat@test", "correct horse")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if err := svc.Logout(ctx, facts.Token()); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	// The JWT is still cryptographically valid, but the session is gone.
	if _, err := svc.SessionFromToken(ctx, facts.Token()); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken after logout, got %v", err)
	}
}

func TestRegisterRejectsWeakPasswordAndDuplicates(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, auth.Registration{
		Email: "pat@test", FirstName: "Pat", LastName: "J", Password: "short",
	}); !errors.Is(err, auth.ErrWeakPassword) {
		t.Errorf("expected ErrWeakPassword, got %v", err)
	}

	if _, err := svc.Register(ctx, auth.Registration{
		Email: "pat@test", FirstName: "Pat", LastName: "J", Password: "long enough",
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := svc.Register(ctx, auth.Registration{
		Email: "pat@test", FirstName: "Pat", LastName: "J", Password: "long enough",
	}); !errors.Is(err, auth.ErrEmailExists) {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}
}

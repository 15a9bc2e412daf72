package auth

import (
	"context"

	"github.com/billdesk/billdesk/internal/models"
)

// Registration carries the fields needed to open an account.
type Registration struct {
	Email     string
	FirstName string
	LastName  string
	Password  string

	// IsBiller marks the account as biller staff; BillerID links it to
	// the issuing organization. Both zero for customer accounts.
	IsBiller bool
	BillerID string
}

// Authenticator defines the interface for authentication implementations.
// This abstraction allows swapping between different auth methods (password,
// passkeys, OAuth, etc.) without changing the service layer code.
type Authenticator interface {
	// Register creates a new user account.
	// Returns the created user or an error if registration fails.
	Register(ctx context.Context, reg Registration) (*models.User, error)

	// Authenticate verifies the user's credentials and returns the user
	// if successful. Returns an error if authentication fails.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks if the credential meets the
	// implementation's requirements.
	ValidateCredential(credential string) error
}

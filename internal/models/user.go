package models

// User represents a registered account.
//
// A user is either a customer (receives and pays bills), biller staff
// (issues bills on behalf of a Biller), or a superuser (administrative
// access that bypasses role and permission checks).
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Email is the user's email address (unique). Used for login.
	Email string

	// FirstName is the user's given name.
	FirstName string

	// LastName is the user's family name.
	LastName string

	// PasswordHash is the bcrypt hash of the user's password.
	// Never serialized to API responses.
	PasswordHash string

	// IsCustomer is true for customer accounts.
	IsCustomer bool

	// IsBiller is true for biller staff accounts.
	IsBiller bool

	// IsSuperuser is true for administrative accounts. Superusers pass
	// every role and permission check unconditionally.
	IsSuperuser bool

	// BillerID links biller staff to their organization. Empty for
	// customers and superusers.
	BillerID string

	// GroupIDs are the permission groups this user belongs to. The user's
	// effective permission codes are the union of their groups' codes.
	GroupIDs []string

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last modification.
	UpdatedAt int64
}

// FullName returns "First Last", tolerating either part being empty.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

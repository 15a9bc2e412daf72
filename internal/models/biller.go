package models

// Biller represents an organization that issues bills to customers.
type Biller struct {
	// ID is the unique identifier for the biller (UUID format).
	ID string

	// Name is the display name of the organization.
	Name string

	// Email is the billing contact address.
	Email string

	// Phone is an optional contact number.
	Phone string

	// Address is an optional postal address.
	Address string

	// CreatedAt is the Unix timestamp when the biller was registered.
	CreatedAt int64
}

package models

// Group represents a named set of permission codes assignable to users.
// A user's effective permissions are the union of their groups' codes,
// serialized into the session at login.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g. "Billing Admins").
	Name string

	// Permissions is the list of permission codes this group grants.
	Permissions []string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

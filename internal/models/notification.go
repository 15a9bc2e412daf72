package models

// Notification represents a per-user message, e.g. "payment received".
type Notification struct {
	// ID is the unique identifier for the notification (UUID format).
	ID string

	// UserID is the recipient.
	UserID string

	// Title is the short headline shown in lists.
	Title string

	// Message is the notification body.
	Message string

	// Read is true once the user has acknowledged the notification.
	Read bool

	// CreatedAt is the Unix timestamp when the notification was created.
	CreatedAt int64
}

// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/billdesk/billdesk/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrOverAllocation is returned by ApplyPayment when an allocation exceeds
// its bill's remaining amount at apply time.
var ErrOverAllocation = errors.New("allocation exceeds remaining amount")

// Store defines the interface for Billdesk persistence.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the service layer.
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id string) error

	// Billers
	CreateBiller(ctx context.Context, biller *models.Biller) error
	GetBiller(ctx context.Context, id string) (*models.Biller, error)
	ListBillers(ctx context.Context) ([]*models.Biller, error)
	UpdateBiller(ctx context.Context, biller *models.Biller) error
	DeleteBiller(ctx context.Context, id string) error

	// Bills
	CreateBill(ctx context.Context, bill *models.Bill) error
	GetBill(ctx context.Context, id string) (*models.Bill, error)
	ListBillsByCustomer(ctx context.Context, customerID string) ([]*models.Bill, error)
	ListBillsByBiller(ctx context.Context, billerID string) ([]*models.Bill, error)
	ListBills(ctx context.Context) ([]*models.Bill, error)
	UpdateBill(ctx context.Context, bill *models.Bill) error
	DeleteBill(ctx context.Context, id string) error

	// Payments. ApplyPayment inserts the payment with its allocations and
	// rolls the affected bills' paid amounts and statuses forward in one
	// transaction; DeletePayment reverses the same effect.
	ApplyPayment(ctx context.Context, payment *models.Payment) error
	GetPayment(ctx context.Context, id string) (*models.Payment, error)
	ListPaymentsByCustomer(ctx context.Context, customerID string) ([]*models.Payment, error)
	ListPayments(ctx context.Context) ([]*models.Payment, error)
	DeletePayment(ctx context.Context, id string) error

	// Permission groups
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, id string) (*models.Group, error)
	ListGroups(ctx context.Context) ([]*models.Group, error)
	UpdateGroup(ctx context.Context, group *models.Group) error
	DeleteGroup(ctx context.Context, id string) error
	AssignUserToGroup(ctx context.Context, userID, groupID string) error
	RemoveUserFromGroup(ctx context.Context, userID, groupID string) error
	PermissionsForUser(ctx context.Context, userID string) ([]string, error)

	// Notifications
	CreateNotification(ctx context.Context, n *models.Notification) error
	ListNotificationsByUser(ctx context.Context, userID string) ([]*models.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
	DeleteNotification(ctx context.Context, id string) error

	// Sessions: the server-side copy of the login facts, keyed by token.
	// Saved wholesale at login, deleted wholesale at logout.
	SaveSession(ctx context.Context, token string, facts map[string]string, expiresAt int64) error
	GetSession(ctx context.Context, token string) (map[string]string, error)
	DeleteSession(ctx context.Context, token string) error

	// Close releases any resources held by the store.
	Close() error
}

package service

import (
	"context"

	"github.com/billdesk/billdesk/internal/models"
	"github.com/billdesk/billdesk/internal/storage"
)

// NotificationService manages per-user notifications.
type NotificationService struct {
	store storage.Store
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(store storage.Store) *NotificationService {
	return &NotificationService{store: store}
}

// Create persists a notification.
func (s *NotificationService) Create(ctx context.Context, n *models.Notification) error {
	return s.store.CreateNotification(ctx, n)
}

// ListForUser returns a user's notifications, newest first.
func (s *NotificationService) ListForUser(ctx context.Context, userID string) ([]*models.Notification, error) {
	return s.store.ListNotificationsByUser(ctx, userID)
}

// MarkRead flags a notification as acknowledged.
func (s *NotificationService) MarkRead(ctx context.Context, id string) error {
	return s.store.MarkNotificationRead(ctx, id)
}

// Delete removes a notification.
func (s *NotificationService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteNotification(ctx, id)
}

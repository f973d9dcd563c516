package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mediland/clinic/internal/platform/ws"
)

type Service struct {
	repo NotificationRepository
	push ws.Publisher
}

// NewService creates the notification service. push may be nil when no
// websocket hub is wired (tests, CLI tools).
func NewService(repo NotificationRepository, push ws.Publisher) *Service {
	return &Service{repo: repo, push: push}
}

// Notify stores an in-app notification for the user and pushes it to any
// open websocket sessions. Push failures are logged and swallowed; the
// stored notification is the source of truth.
func (s *Service) Notify(ctx context.Context, userID, title, message string) error {
	if userID == "" {
		return fmt.Errorf("user id is required")
	}
	if title == "" {
		return fmt.Errorf("title is required")
	}

	n := &Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}

	if s.push != nil {
		event := ws.Event{
			Type:      "notification",
			UserID:    userID,
			Title:     title,
			Message:   message,
			Timestamp: time.Now().UTC(),
		}
		if err := s.push.Publish(ctx, event); err != nil {
			log.Warn().Err(err).Str("user_id", userID).Msg("notification push failed")
		}
	}
	return nil
}

// List returns the user's notifications, newest first.
func (s *Service) List(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]*Notification, int, error) {
	return s.repo.ListByUser(ctx, userID, unreadOnly, limit, offset)
}

// MarkAsRead marks a single notification read. Users can only mark their own
// notifications.
func (s *Service) MarkAsRead(ctx context.Context, id uuid.UUID, userID string) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("notification not found: %w", err)
	}
	if n.UserID != userID {
		return fmt.Errorf("notification does not belong to user")
	}
	if n.IsRead {
		return nil
	}
	return s.repo.MarkRead(ctx, id)
}

// MarkAllAsRead marks every unread notification for the user read and
// returns how many were updated.
func (s *Service) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

// UnreadCount returns the number of unread notifications for the user.
func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}

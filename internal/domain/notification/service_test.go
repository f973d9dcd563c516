package notification

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mediland/clinic/internal/platform/ws"
)

type mockNotificationRepo struct {
	items map[uuid.UUID]*Notification
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{items: make(map[uuid.UUID]*Notification)}
}

func (m *mockNotificationRepo) Create(_ context.Context, n *Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	m.items[n.ID] = n
	return nil
}

func (m *mockNotificationRepo) GetByID(_ context.Context, id uuid.UUID) (*Notification, error) {
	n, ok := m.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return n, nil
}

func (m *mockNotificationRepo) ListByUser(_ context.Context, userID string, unreadOnly bool, limit, offset int) ([]*Notification, int, error) {
	var matched []*Notification
	for _, n := range m.items {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		matched = append(matched, n)
	}
	return matched, len(matched), nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, id uuid.UUID) error {
	n, ok := m.items[id]
	if !ok {
		return pgx.ErrNoRows
	}
	n.IsRead = true
	return nil
}

func (m *mockNotificationRepo) MarkAllRead(_ context.Context, userID string) (int64, error) {
	var count int64
	for _, n := range m.items {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			count++
		}
	}
	return count, nil
}

func (m *mockNotificationRepo) CountUnread(_ context.Context, userID string) (int, error) {
	count := 0
	for _, n := range m.items {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func TestNotify_UserIDRequired(t *testing.T) {
	svc := NewService(newMockNotificationRepo(), nil)
	if err := svc.Notify(context.Background(), "", "Title", "msg"); err == nil {
		t.Fatal("expected error for missing user id")
	}
}

func TestNotify_StoresAndPushes(t *testing.T) {
	repo := newMockNotificationRepo()
	hub := ws.NewHub()
	svc := NewService(repo, hub)

	if err := svc.Notify(context.Background(), "user_1", "Appointment Approved", "See details"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	items, total, err := svc.List(context.Background(), "user_1", false, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || items[0].Title != "Appointment Approved" {
		t.Fatalf("expected stored notification, got total=%d", total)
	}
	if items[0].IsRead {
		t.Error("new notification should be unread")
	}
}

func TestMarkAsRead_OtherUsersNotification(t *testing.T) {
	repo := newMockNotificationRepo()
	svc := NewService(repo, nil)

	if err := svc.Notify(context.Background(), "user_1", "Title", "msg"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var id uuid.UUID
	for _, n := range repo.items {
		id = n.ID
	}

	if err := svc.MarkAsRead(context.Background(), id, "user_2"); err == nil {
		t.Fatal("expected error marking another user's notification")
	}
	if err := svc.MarkAsRead(context.Background(), id, "user_1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !repo.items[id].IsRead {
		t.Error("notification should be read")
	}
	// Marking an already-read notification is a no-op.
	if err := svc.MarkAsRead(context.Background(), id, "user_1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMarkAllAsRead_CountsUpdates(t *testing.T) {
	repo := newMockNotificationRepo()
	svc := NewService(repo, nil)

	for i := 0; i < 3; i++ {
		if err := svc.Notify(context.Background(), "user_1", "Title", "msg"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if err := svc.Notify(context.Background(), "user_2", "Title", "msg"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated, err := svc.MarkAllAsRead(context.Background(), "user_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated != 3 {
		t.Errorf("expected 3 updated, got %d", updated)
	}

	count, err := svc.UnreadCount(context.Background(), "user_2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Errorf("user_2 should still have 1 unread, got %d", count)
	}
}

package notification

import (
	"time"

	"github.com/google/uuid"
)

// Notification is an in-app message addressed to a single user. Unread
// notifications surface as a badge in the UI; the websocket hub pushes new
// ones to any open sessions.
type Notification struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	Title     string    `db:"title" json:"title"`
	Message   string    `db:"message" json:"message"`
	IsRead    bool      `db:"is_read" json:"isRead"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mediland/clinic/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type NotificationRepoPG struct {
	pool *pgxpool.Pool
}

func NewNotificationRepoPG(pool *pgxpool.Pool) *NotificationRepoPG {
	return &NotificationRepoPG{pool: pool}
}

func (r *NotificationRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const notificationCols = `id, user_id, title, message, is_read, created_at`

func scanNotification(row pgx.Row) (*Notification, error) {
	var n Notification
	err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.IsRead, &n.CreatedAt)
	return &n, err
}

func (r *NotificationRepoPG) Create(ctx context.Context, n *Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	q := `INSERT INTO notifications (id, user_id, title, message, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.conn(ctx).Exec(ctx, q, n.ID, n.UserID, n.Title, n.Message, n.IsRead, n.CreatedAt)
	return err
}

func (r *NotificationRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Notification, error) {
	q := fmt.Sprintf("SELECT %s FROM notifications WHERE id = $1", notificationCols)
	return scanNotification(r.conn(ctx).QueryRow(ctx, q, id))
}

func (r *NotificationRepoPG) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]*Notification, int, error) {
	where := "WHERE user_id = $1"
	if unreadOnly {
		where += " AND is_read = FALSE"
	}

	countQ := fmt.Sprintf("SELECT COUNT(*) FROM notifications %s", where)
	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQ, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf("SELECT %s FROM notifications %s ORDER BY created_at DESC LIMIT $2 OFFSET $3",
		notificationCols, where)
	rows, err := r.conn(ctx).Query(ctx, q, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, n)
	}
	return items, total, nil
}

func (r *NotificationRepoPG) MarkRead(ctx context.Context, id uuid.UUID) error {
	q := `UPDATE notifications SET is_read = TRUE WHERE id = $1`
	tag, err := r.conn(ctx).Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *NotificationRepoPG) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	q := `UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`
	tag, err := r.conn(ctx).Exec(ctx, q, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *NotificationRepoPG) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`, userID).Scan(&count)
	return count, err
}

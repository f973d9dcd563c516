package audit

import (
	"context"
	"fmt"
	"strings"
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

type LogRepoPG struct {
	pool *pgxpool.Pool
}

func NewLogRepoPG(pool *pgxpool.Pool) *LogRepoPG {
	return &LogRepoPG{pool: pool}
}

func (r *LogRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const logCols = `id, user_id, record_id, action, details, created_at`

func scanLog(row pgx.Row) (*Log, error) {
	var l Log
	err := row.Scan(&l.ID, &l.UserID, &l.RecordID, &l.Action, &l.Details, &l.CreatedAt)
	return &l, err
}

func (r *LogRepoPG) Create(ctx context.Context, l *Log) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	q := `INSERT INTO audit_logs (id, user_id, record_id, action, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.conn(ctx).Exec(ctx, q, l.ID, l.UserID, l.RecordID, l.Action, l.Details, l.CreatedAt)
	return err
}

func (r *LogRepoPG) Search(ctx context.Context, params SearchParams, limit, offset int) ([]*Log, int, error) {
	where := []string{}
	args := []interface{}{}
	idx := 1

	if params.UserID != "" {
		where = append(where, fmt.Sprintf("user_id = $%d", idx))
		args = append(args, params.UserID)
		idx++
	}
	if params.RecordID != "" {
		where = append(where, fmt.Sprintf("record_id = $%d", idx))
		args = append(args, params.RecordID)
		idx++
	}
	if params.Query != "" {
		where = append(where, fmt.Sprintf("action ILIKE $%d", idx))
		args = append(args, "%"+params.Query+"%")
		idx++
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	countQ := fmt.Sprintf("SELECT COUNT(*) FROM audit_logs %s", whereClause)
	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf("SELECT %s FROM audit_logs %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		logCols, whereClause, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Log
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, l)
	}
	return items, total, nil
}

package appointment

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

type AppointmentRepoPG struct {
	pool *pgxpool.Pool
}

func NewAppointmentRepoPG(pool *pgxpool.Pool) *AppointmentRepoPG {
	return &AppointmentRepoPG{pool: pool}
}

func (r *AppointmentRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const appointmentCols = `id, patient_id, doctor_id, appointment_date, time, status, type,
	note, reason, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(
		&a.ID, &a.PatientID, &a.DoctorID, &a.AppointmentDate, &a.Time, &a.Status, &a.Type,
		&a.Note, &a.Reason, &a.CreatedAt, &a.UpdatedAt,
	)
	return &a, err
}

func (r *AppointmentRepoPG) Create(ctx context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	q := fmt.Sprintf(`INSERT INTO appointments (%s) VALUES
		($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`, appointmentCols)
	_, err := r.conn(ctx).Exec(ctx, q,
		a.ID, a.PatientID, a.DoctorID, a.AppointmentDate, a.Time, a.Status, a.Type,
		a.Note, a.Reason, a.CreatedAt, a.UpdatedAt,
	)
	return err
}

func (r *AppointmentRepoPG) Update(ctx context.Context, a *Appointment) error {
	a.UpdatedAt = time.Now().UTC()
	q := `UPDATE appointments SET
		appointment_date = $2, time = $3, status = $4, type = $5, note = $6, reason = $7, updated_at = $8
		WHERE id = $1`
	tag, err := r.conn(ctx).Exec(ctx, q,
		a.ID, a.AppointmentDate, a.Time, a.Status, a.Type, a.Note, a.Reason, a.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *AppointmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	q := fmt.Sprintf("SELECT %s FROM appointments WHERE id = $1", appointmentCols)
	return scanAppointment(r.conn(ctx).QueryRow(ctx, q, id))
}

func (r *AppointmentRepoPG) Search(ctx context.Context, params SearchParams, limit, offset int) ([]*Appointment, int, error) {
	where := []string{}
	args := []interface{}{}
	idx := 1

	if params.PatientID != "" {
		where = append(where, fmt.Sprintf("patient_id = $%d", idx))
		args = append(args, params.PatientID)
		idx++
	}
	if params.DoctorID != "" {
		where = append(where, fmt.Sprintf("doctor_id = $%d", idx))
		args = append(args, params.DoctorID)
		idx++
	}
	if params.Status != "" {
		where = append(where, fmt.Sprintf("status = $%d", idx))
		args = append(args, params.Status)
		idx++
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	countQ := fmt.Sprintf("SELECT COUNT(*) FROM appointments %s", whereClause)
	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf("SELECT %s FROM appointments %s ORDER BY appointment_date DESC, created_at DESC LIMIT $%d OFFSET $%d",
		appointmentCols, whereClause, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, nil
}

func (r *AppointmentRepoPG) CountCompleted(ctx context.Context, patientID, doctorID string) (int, error) {
	var count int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM appointments WHERE patient_id = $1 AND doctor_id = $2 AND status = $3`,
		patientID, doctorID, StatusCompleted).Scan(&count)
	return count, err
}

package doctor

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

type DoctorRepoPG struct {
	pool *pgxpool.Pool
}

func NewDoctorRepoPG(pool *pgxpool.Pool) *DoctorRepoPG {
	return &DoctorRepoPG{pool: pool}
}

func (r *DoctorRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const doctorCols = `id, email, name, specialization, license_number, phone, address,
	department, img, color_code, availability_status, type, created_at, updated_at`

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(
		&d.ID, &d.Email, &d.Name, &d.Specialization, &d.LicenseNumber, &d.Phone, &d.Address,
		&d.Department, &d.Img, &d.ColorCode, &d.AvailabilityStatus, &d.JobType, &d.CreatedAt, &d.UpdatedAt,
	)
	return &d, err
}

func (r *DoctorRepoPG) Create(ctx context.Context, d *Doctor) error {
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now
	q := fmt.Sprintf(`INSERT INTO doctors (%s) VALUES
		($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`, doctorCols)
	_, err := r.conn(ctx).Exec(ctx, q,
		d.ID, d.Email, d.Name, d.Specialization, d.LicenseNumber, d.Phone, d.Address,
		d.Department, d.Img, d.ColorCode, d.AvailabilityStatus, d.JobType, d.CreatedAt, d.UpdatedAt,
	)
	return err
}

func (r *DoctorRepoPG) Update(ctx context.Context, d *Doctor) error {
	d.UpdatedAt = time.Now().UTC()
	q := `UPDATE doctors SET
		email = $2, name = $3, specialization = $4, license_number = $5, phone = $6,
		address = $7, department = $8, img = $9, availability_status = $10, type = $11, updated_at = $12
		WHERE id = $1`
	tag, err := r.conn(ctx).Exec(ctx, q,
		d.ID, d.Email, d.Name, d.Specialization, d.LicenseNumber, d.Phone,
		d.Address, d.Department, d.Img, d.AvailabilityStatus, d.JobType, d.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *DoctorRepoPG) Delete(ctx context.Context, id string) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM doctors WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *DoctorRepoPG) GetByID(ctx context.Context, id string) (*Doctor, error) {
	q := fmt.Sprintf("SELECT %s FROM doctors WHERE id = $1", doctorCols)
	d, err := scanDoctor(r.conn(ctx).QueryRow(ctx, q, id))
	if err != nil {
		return nil, err
	}
	days, err := r.ListWorkingDays(ctx, id)
	if err != nil {
		return nil, err
	}
	d.WorkingDays = days
	return d, nil
}

func (r *DoctorRepoPG) GetByLicense(ctx context.Context, licenseNumber string) (*Doctor, error) {
	q := fmt.Sprintf("SELECT %s FROM doctors WHERE license_number = $1", doctorCols)
	return scanDoctor(r.conn(ctx).QueryRow(ctx, q, licenseNumber))
}

func (r *DoctorRepoPG) Search(ctx context.Context, params SearchParams, limit, offset int) ([]*Doctor, int, error) {
	where := []string{}
	args := []interface{}{}
	idx := 1

	if params.Status != "" {
		where = append(where, fmt.Sprintf("availability_status = $%d", idx))
		args = append(args, params.Status)
		idx++
	}
	if params.Specialization != "" {
		where = append(where, fmt.Sprintf("specialization ILIKE $%d", idx))
		args = append(args, "%"+params.Specialization+"%")
		idx++
	}
	if params.Query != "" {
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d)", idx, idx))
		args = append(args, "%"+params.Query+"%")
		idx++
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	countQ := fmt.Sprintf("SELECT COUNT(*) FROM doctors %s", whereClause)
	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf("SELECT %s FROM doctors %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		doctorCols, whereClause, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, nil
}

func (r *DoctorRepoPG) ReplaceWorkingDays(ctx context.Context, doctorID string, days []*WorkingDay) error {
	if _, err := r.conn(ctx).Exec(ctx, `DELETE FROM working_days WHERE doctor_id = $1`, doctorID); err != nil {
		return err
	}
	for _, wd := range days {
		if wd.ID == uuid.Nil {
			wd.ID = uuid.New()
		}
		wd.DoctorID = doctorID
		_, err := r.conn(ctx).Exec(ctx,
			`INSERT INTO working_days (id, doctor_id, day, start_time, close_time) VALUES ($1, $2, $3, $4, $5)`,
			wd.ID, wd.DoctorID, wd.Day, wd.StartTime, wd.CloseTime)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *DoctorRepoPG) ListWorkingDays(ctx context.Context, doctorID string) ([]*WorkingDay, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT id, doctor_id, day, start_time, close_time FROM working_days WHERE doctor_id = $1 ORDER BY id`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []*WorkingDay
	for rows.Next() {
		var wd WorkingDay
		if err := rows.Scan(&wd.ID, &wd.DoctorID, &wd.Day, &wd.StartTime, &wd.CloseTime); err != nil {
			return nil, err
		}
		days = append(days, &wd)
	}
	return days, nil
}

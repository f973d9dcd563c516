package admin

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

type StaffRepoPG struct {
	pool *pgxpool.Pool
}

func NewStaffRepoPG(pool *pgxpool.Pool) *StaffRepoPG {
	return &StaffRepoPG{pool: pool}
}

func (r *StaffRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const staffCols = `id, email, name, phone, address, department, license_number,
	role, status, img, color_code, created_at, updated_at`

func scanStaff(row pgx.Row) (*Staff, error) {
	var s Staff
	err := row.Scan(
		&s.ID, &s.Email, &s.Name, &s.Phone, &s.Address, &s.Department, &s.LicenseNumber,
		&s.Role, &s.Status, &s.Img, &s.ColorCode, &s.CreatedAt, &s.UpdatedAt,
	)
	return &s, err
}

func (r *StaffRepoPG) Create(ctx context.Context, s *Staff) error {
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	q := fmt.Sprintf(`INSERT INTO staff (%s) VALUES
		($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`, staffCols)
	_, err := r.conn(ctx).Exec(ctx, q,
		s.ID, s.Email, s.Name, s.Phone, s.Address, s.Department, s.LicenseNumber,
		s.Role, s.Status, s.Img, s.ColorCode, s.CreatedAt, s.UpdatedAt,
	)
	return err
}

func (r *StaffRepoPG) Update(ctx context.Context, s *Staff) error {
	s.UpdatedAt = time.Now().UTC()
	q := `UPDATE staff SET
		email = $2, name = $3, phone = $4, address = $5, department = $6,
		license_number = $7, role = $8, status = $9, img = $10, updated_at = $11
		WHERE id = $1`
	tag, err := r.conn(ctx).Exec(ctx, q,
		s.ID, s.Email, s.Name, s.Phone, s.Address, s.Department,
		s.LicenseNumber, s.Role, s.Status, s.Img, s.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *StaffRepoPG) GetByID(ctx context.Context, id string) (*Staff, error) {
	q := fmt.Sprintf("SELECT %s FROM staff WHERE id = $1", staffCols)
	return scanStaff(r.conn(ctx).QueryRow(ctx, q, id))
}

func (r *StaffRepoPG) List(ctx context.Context, role string, limit, offset int) ([]*Staff, int, error) {
	where := ""
	args := []interface{}{}
	idx := 1
	if role != "" {
		where = fmt.Sprintf("WHERE role = $%d", idx)
		args = append(args, role)
		idx++
	}

	countQ := fmt.Sprintf("SELECT COUNT(*) FROM staff %s", where)
	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf("SELECT %s FROM staff %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		staffCols, where, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Staff
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, nil
}

type ServiceRepoPG struct {
	pool *pgxpool.Pool
}

func NewServiceRepoPG(pool *pgxpool.Pool) *ServiceRepoPG {
	return &ServiceRepoPG{pool: pool}
}

func (r *ServiceRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const serviceCols = `id, service_name, description, price, category, created_at, updated_at`

func scanService(row pgx.Row) (*CatalogService, error) {
	var s CatalogService
	err := row.Scan(&s.ID, &s.ServiceName, &s.Description, &s.Price, &s.Category, &s.CreatedAt, &s.UpdatedAt)
	return &s, err
}

func (r *ServiceRepoPG) Create(ctx context.Context, s *CatalogService) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	q := fmt.Sprintf(`INSERT INTO services (%s) VALUES ($1, $2, $3, $4, $5, $6, $7)`, serviceCols)
	_, err := r.conn(ctx).Exec(ctx, q,
		s.ID, s.ServiceName, s.Description, s.Price, s.Category, s.CreatedAt, s.UpdatedAt)
	return err
}

func (r *ServiceRepoPG) Update(ctx context.Context, s *CatalogService) error {
	s.UpdatedAt = time.Now().UTC()
	q := `UPDATE services SET service_name = $2, description = $3, price = $4, category = $5, updated_at = $6
		WHERE id = $1`
	tag, err := r.conn(ctx).Exec(ctx, q, s.ID, s.ServiceName, s.Description, s.Price, s.Category, s.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ServiceRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ServiceRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*CatalogService, error) {
	q := fmt.Sprintf("SELECT %s FROM services WHERE id = $1", serviceCols)
	return scanService(r.conn(ctx).QueryRow(ctx, q, id))
}

func (r *ServiceRepoPG) List(ctx context.Context, category string, limit, offset int) ([]*CatalogService, int, error) {
	where := ""
	args := []interface{}{}
	idx := 1
	if category != "" {
		where = fmt.Sprintf("WHERE category = $%d", idx)
		args = append(args, category)
		idx++
	}

	countQ := fmt.Sprintf("SELECT COUNT(*) FROM services %s", where)
	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf("SELECT %s FROM services %s ORDER BY service_name LIMIT $%d OFFSET $%d",
		serviceCols, where, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*CatalogService
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, nil
}

package billing

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

type PaymentRepoPG struct {
	pool *pgxpool.Pool
}

func NewPaymentRepoPG(pool *pgxpool.Pool) *PaymentRepoPG {
	return &PaymentRepoPG{pool: pool}
}

func (r *PaymentRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const paymentCols = `id, patient_id, appointment_id, bill_date, payment_date, discount,
	total_amount, amount_paid, payment_method, status, receipt_number, created_at, updated_at`

func scanPayment(row pgx.Row) (*Payment, error) {
	var p Payment
	err := row.Scan(
		&p.ID, &p.PatientID, &p.AppointmentID, &p.BillDate, &p.PaymentDate, &p.Discount,
		&p.TotalAmount, &p.AmountPaid, &p.PaymentMethod, &p.Status, &p.ReceiptNumber, &p.CreatedAt, &p.UpdatedAt,
	)
	return &p, err
}

// Upsert relies on the UNIQUE constraint on appointment_id so two cashiers
// billing the same appointment converge on one payment row.
func (r *PaymentRepoPG) Upsert(ctx context.Context, p *Payment) (*Payment, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now().UTC()
	q := fmt.Sprintf(`INSERT INTO payments (%s) VALUES
		($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (appointment_id) DO UPDATE SET appointment_id = EXCLUDED.appointment_id
		RETURNING %s`, paymentCols, paymentCols)
	return scanPayment(r.conn(ctx).QueryRow(ctx, q,
		p.ID, p.PatientID, p.AppointmentID, p.BillDate, p.PaymentDate, p.Discount,
		p.TotalAmount, p.AmountPaid, p.PaymentMethod, p.Status, p.ReceiptNumber, now, now,
	))
}

func (r *PaymentRepoPG) Update(ctx context.Context, p *Payment) error {
	p.UpdatedAt = time.Now().UTC()
	q := `UPDATE payments SET
		bill_date = $2, payment_date = $3, discount = $4, total_amount = $5,
		amount_paid = $6, payment_method = $7, status = $8, updated_at = $9
		WHERE id = $1`
	tag, err := r.conn(ctx).Exec(ctx, q,
		p.ID, p.BillDate, p.PaymentDate, p.Discount, p.TotalAmount,
		p.AmountPaid, p.PaymentMethod, p.Status, p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PaymentRepoPG) AddToTotal(ctx context.Context, paymentID uuid.UUID, amount float64) error {
	q := `UPDATE payments SET total_amount = total_amount + $2, updated_at = $3 WHERE id = $1`
	tag, err := r.conn(ctx).Exec(ctx, q, paymentID, amount, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PaymentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Payment, error) {
	q := fmt.Sprintf("SELECT %s FROM payments WHERE id = $1", paymentCols)
	return scanPayment(r.conn(ctx).QueryRow(ctx, q, id))
}

func (r *PaymentRepoPG) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*Payment, error) {
	q := fmt.Sprintf("SELECT %s FROM payments WHERE appointment_id = $1", paymentCols)
	return scanPayment(r.conn(ctx).QueryRow(ctx, q, appointmentID))
}

func (r *PaymentRepoPG) ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*Payment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		"SELECT COUNT(*) FROM payments WHERE patient_id = $1", patientID).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf("SELECT %s FROM payments WHERE patient_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3", paymentCols)
	rows, err := r.conn(ctx).Query(ctx, q, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, nil
}

const billItemCols = `id, payment_id, service_id, service_date, quantity, unit_cost, total_cost, created_at`

func (r *PaymentRepoPG) AddBillItem(ctx context.Context, b *BillItem) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	q := fmt.Sprintf(`INSERT INTO bill_items (%s) VALUES
		($1, $2, $3, $4, $5, $6, $7, $8)`, billItemCols)
	_, err := r.conn(ctx).Exec(ctx, q,
		b.ID, b.PaymentID, b.ServiceID, b.ServiceDate, b.Quantity, b.UnitCost, b.TotalCost, b.CreatedAt,
	)
	return err
}

func (r *PaymentRepoPG) ListBillItems(ctx context.Context, paymentID uuid.UUID) ([]*BillItem, error) {
	q := fmt.Sprintf("SELECT %s FROM bill_items WHERE payment_id = $1 ORDER BY created_at", billItemCols)
	rows, err := r.conn(ctx).Query(ctx, q, paymentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*BillItem
	for rows.Next() {
		var b BillItem
		if err := rows.Scan(
			&b.ID, &b.PaymentID, &b.ServiceID, &b.ServiceDate, &b.Quantity, &b.UnitCost, &b.TotalCost, &b.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, &b)
	}
	return items, nil
}

package billing

import (
	"context"

	"github.com/google/uuid"
)

type PaymentRepository interface {
	// Upsert returns the payment for the appointment, creating it atomically
	// if it does not exist yet. Concurrent callers get the same row.
	Upsert(ctx context.Context, p *Payment) (*Payment, error)
	Update(ctx context.Context, p *Payment) error
	// AddToTotal increments the payment's running total in place, so two
	// concurrent line items cannot overwrite each other's sum.
	AddToTotal(ctx context.Context, paymentID uuid.UUID, amount float64) error
	GetByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*Payment, error)
	ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*Payment, int, error)

	AddBillItem(ctx context.Context, b *BillItem) error
	ListBillItems(ctx context.Context, paymentID uuid.UUID) ([]*BillItem, error)
}

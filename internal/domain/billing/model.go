package billing

import (
	"time"

	"github.com/google/uuid"
)

// Payment statuses.
const (
	StatusUnpaid = "UNPAID"
	StatusPaid   = "PAID"
	StatusPart   = "PART"
)

// Payment is the bill for one appointment. There is exactly one payment per
// appointment; it accumulates bill items as services are rendered and is
// finalized by GenerateBill.
type Payment struct {
	ID            uuid.UUID `db:"id" json:"id"`
	PatientID     string    `db:"patient_id" json:"patientId"`
	AppointmentID uuid.UUID `db:"appointment_id" json:"appointmentId"`
	BillDate      time.Time `db:"bill_date" json:"billDate"`
	PaymentDate   time.Time `db:"payment_date" json:"paymentDate,omitempty"`
	// Discount is a percentage applied to the total at finalization.
	Discount      float64   `db:"discount" json:"discount"`
	TotalAmount   float64   `db:"total_amount" json:"totalAmount"`
	AmountPaid    float64   `db:"amount_paid" json:"amountPaid"`
	PaymentMethod string    `db:"payment_method" json:"paymentMethod"`
	Status        string    `db:"status" json:"status"`
	ReceiptNumber int       `db:"receipt_number" json:"receiptNumber"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`

	Bills []*BillItem `json:"bills,omitempty"`
}

// DiscountAmount is the money value of the percentage discount.
func (p *Payment) DiscountAmount() float64 {
	return (p.Discount / 100) * p.TotalAmount
}

// PayableAmount is the total after discount.
func (p *Payment) PayableAmount() float64 {
	return p.TotalAmount - p.DiscountAmount()
}

// BillItem is one service line on a payment.
type BillItem struct {
	ID          uuid.UUID `db:"id" json:"id"`
	PaymentID   uuid.UUID `db:"payment_id" json:"paymentId"`
	ServiceID   uuid.UUID `db:"service_id" json:"serviceId"`
	ServiceDate time.Time `db:"service_date" json:"serviceDate"`
	Quantity    int       `db:"quantity" json:"quantity"`
	UnitCost    float64   `db:"unit_cost" json:"unitCost"`
	TotalCost   float64   `db:"total_cost" json:"totalCost"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

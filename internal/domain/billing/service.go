package billing

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mediland/clinic/internal/domain/audit"
)

// AppointmentInfo is what billing needs to know about an appointment.
type AppointmentInfo struct {
	ID        uuid.UUID
	PatientID string
	Status    string
}

// AppointmentGateway resolves appointments and finalizes them. Generating
// the bill is the only path that completes an appointment.
type AppointmentGateway interface {
	GetAppointment(ctx context.Context, id uuid.UUID) (*AppointmentInfo, error)
	MarkCompleted(ctx context.Context, id uuid.UUID) error
}

// ServiceInfo is a priced catalog entry.
type ServiceInfo struct {
	ID    uuid.UUID
	Name  string
	Price float64
}

// ServiceCatalog resolves service ids against the clinic's price list.
type ServiceCatalog interface {
	GetService(ctx context.Context, id uuid.UUID) (*ServiceInfo, error)
}

// Notifier delivers an in-app notification to a user.
type Notifier interface {
	Notify(ctx context.Context, userID, title, message string) error
}

type Service struct {
	repo         PaymentRepository
	appointments AppointmentGateway
	catalog      ServiceCatalog
	notifier     Notifier
	auditor      audit.Recorder
}

func NewService(repo PaymentRepository, appointments AppointmentGateway, catalog ServiceCatalog,
	notifier Notifier, auditor audit.Recorder) *Service {
	return &Service{
		repo:         repo,
		appointments: appointments,
		catalog:      catalog,
		notifier:     notifier,
		auditor:      auditor,
	}
}

// AddBillItem appends a service line to the appointment's bill, opening the
// payment on first use. The line's cost comes from the catalog price unless
// an explicit unit cost is given, and the payment total grows by the line
// total.
func (s *Service) AddBillItem(ctx context.Context, actorID string, appointmentID uuid.UUID,
	serviceID uuid.UUID, serviceDate time.Time, quantity int, unitCost float64) (*Payment, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}

	appt, err := s.appointments.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("appointment not found: %w", err)
	}
	if appt.Status != "SCHEDULED" {
		return nil, fmt.Errorf("only scheduled appointments can be billed, status is %s", appt.Status)
	}

	svcInfo, err := s.catalog.GetService(ctx, serviceID)
	if err != nil {
		return nil, fmt.Errorf("service not found: %w", err)
	}
	if unitCost <= 0 {
		unitCost = svcInfo.Price
	}

	payment, err := s.repo.Upsert(ctx, &Payment{
		PatientID:     appt.PatientID,
		AppointmentID: appt.ID,
		BillDate:      time.Now().UTC(),
		Status:        StatusUnpaid,
		ReceiptNumber: receiptNumber(),
	})
	if err != nil {
		return nil, fmt.Errorf("opening payment: %w", err)
	}

	item := &BillItem{
		PaymentID:   payment.ID,
		ServiceID:   serviceID,
		ServiceDate: serviceDate,
		Quantity:    quantity,
		UnitCost:    unitCost,
		TotalCost:   float64(quantity) * unitCost,
	}
	if err := s.repo.AddBillItem(ctx, item); err != nil {
		return nil, fmt.Errorf("adding bill item: %w", err)
	}

	if err := s.repo.AddToTotal(ctx, payment.ID, item.TotalCost); err != nil {
		return nil, fmt.Errorf("updating payment total: %w", err)
	}
	// Reload so the caller sees the total after any concurrent line items.
	payment, err = s.repo.GetByID(ctx, payment.ID)
	if err != nil {
		return nil, fmt.Errorf("reloading payment: %w", err)
	}

	s.auditor.Record(ctx, actorID, payment.ID.String(), audit.ActionBillItemAdded,
		map[string]interface{}{"serviceId": serviceID.String(), "totalCost": item.TotalCost})

	payment.Bills = append(payment.Bills, item)
	return payment, nil
}

// GenerateBill finalizes the appointment's bill: the discount percentage is
// applied, the bill date stamped, and the appointment marked COMPLETED.
func (s *Service) GenerateBill(ctx context.Context, actorID string, paymentID uuid.UUID, discount float64) (*Payment, error) {
	if discount < 0 || discount > 100 {
		return nil, fmt.Errorf("discount must be between 0 and 100")
	}

	payment, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("payment not found: %w", err)
	}
	if payment.TotalAmount <= 0 {
		return nil, fmt.Errorf("cannot generate a bill with no items")
	}

	payment.Discount = discount
	payment.BillDate = time.Now().UTC()
	if err := s.repo.Update(ctx, payment); err != nil {
		return nil, fmt.Errorf("updating payment: %w", err)
	}

	if err := s.appointments.MarkCompleted(ctx, payment.AppointmentID); err != nil {
		return nil, fmt.Errorf("completing appointment: %w", err)
	}

	s.auditor.Record(ctx, actorID, payment.ID.String(), audit.ActionBillGenerated,
		map[string]interface{}{"discount": discount, "totalAmount": payment.TotalAmount})
	s.notify(ctx, payment.PatientID, "Bill Ready",
		fmt.Sprintf("Your bill of %.2f (after %.0f%% discount) is ready.", payment.PayableAmount(), discount))

	return payment, nil
}

// RecordPayment applies money received against the bill and moves the
// status to PART or PAID.
func (s *Service) RecordPayment(ctx context.Context, actorID string, paymentID uuid.UUID, amount float64, method string) (*Payment, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}

	payment, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("payment not found: %w", err)
	}

	payment.AmountPaid += amount
	payment.PaymentDate = time.Now().UTC()
	if method != "" {
		payment.PaymentMethod = method
	}
	if payment.AmountPaid >= payment.PayableAmount() {
		payment.Status = StatusPaid
	} else {
		payment.Status = StatusPart
	}

	if err := s.repo.Update(ctx, payment); err != nil {
		return nil, fmt.Errorf("updating payment: %w", err)
	}
	return payment, nil
}

// GetByAppointment returns the appointment's payment with its bill items.
func (s *Service) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*Payment, error) {
	payment, err := s.repo.GetByAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListBillItems(ctx, payment.ID)
	if err != nil {
		return nil, err
	}
	payment.Bills = items
	return payment, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*Payment, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) notify(ctx context.Context, userID, title, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, userID, title, message); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("notification delivery failed")
	}
}

// receiptNumber generates a human-quotable receipt reference.
func receiptNumber() int {
	return 100000 + rand.Intn(900000)
}

package billing

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type mockPaymentRepo struct {
	payments map[uuid.UUID]*Payment
	byAppt   map[uuid.UUID]uuid.UUID
	items    map[uuid.UUID][]*BillItem
}

func newMockPaymentRepo() *mockPaymentRepo {
	return &mockPaymentRepo{
		payments: make(map[uuid.UUID]*Payment),
		byAppt:   make(map[uuid.UUID]uuid.UUID),
		items:    make(map[uuid.UUID][]*BillItem),
	}
}

func (m *mockPaymentRepo) Upsert(_ context.Context, p *Payment) (*Payment, error) {
	if existingID, ok := m.byAppt[p.AppointmentID]; ok {
		return m.payments[existingID], nil
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	m.payments[p.ID] = p
	m.byAppt[p.AppointmentID] = p.ID
	return p, nil
}

func (m *mockPaymentRepo) Update(_ context.Context, p *Payment) error {
	if _, ok := m.payments[p.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.payments[p.ID] = p
	return nil
}

func (m *mockPaymentRepo) AddToTotal(_ context.Context, paymentID uuid.UUID, amount float64) error {
	p, ok := m.payments[paymentID]
	if !ok {
		return pgx.ErrNoRows
	}
	p.TotalAmount += amount
	return nil
}

func (m *mockPaymentRepo) GetByID(_ context.Context, id uuid.UUID) (*Payment, error) {
	p, ok := m.payments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}

func (m *mockPaymentRepo) GetByAppointment(_ context.Context, appointmentID uuid.UUID) (*Payment, error) {
	id, ok := m.byAppt[appointmentID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return m.payments[id], nil
}

func (m *mockPaymentRepo) ListByPatient(_ context.Context, patientID string, limit, offset int) ([]*Payment, int, error) {
	var matched []*Payment
	for _, p := range m.payments {
		if p.PatientID == patientID {
			matched = append(matched, p)
		}
	}
	return matched, len(matched), nil
}

func (m *mockPaymentRepo) AddBillItem(_ context.Context, b *BillItem) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	m.items[b.PaymentID] = append(m.items[b.PaymentID], b)
	return nil
}

func (m *mockPaymentRepo) ListBillItems(_ context.Context, paymentID uuid.UUID) ([]*BillItem, error) {
	return m.items[paymentID], nil
}

type mockGateway struct {
	appts     map[uuid.UUID]*AppointmentInfo
	completed []uuid.UUID
}

func (m *mockGateway) GetAppointment(_ context.Context, id uuid.UUID) (*AppointmentInfo, error) {
	a, ok := m.appts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return a, nil
}

func (m *mockGateway) MarkCompleted(_ context.Context, id uuid.UUID) error {
	a, ok := m.appts[id]
	if !ok {
		return pgx.ErrNoRows
	}
	a.Status = "COMPLETED"
	m.completed = append(m.completed, id)
	return nil
}

type mockCatalog struct {
	services map[uuid.UUID]*ServiceInfo
}

func (m *mockCatalog) GetService(_ context.Context, id uuid.UUID) (*ServiceInfo, error) {
	s, ok := m.services[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return s, nil
}

type mockNotifier struct {
	titles []string
}

func (m *mockNotifier) Notify(_ context.Context, userID, title, message string) error {
	m.titles = append(m.titles, title)
	return nil
}

type mockAuditor struct {
	actions []string
}

func (m *mockAuditor) Record(_ context.Context, userID, recordID, action string, details interface{}) {
	m.actions = append(m.actions, action)
}

type fixture struct {
	svc       *Service
	repo      *mockPaymentRepo
	gateway   *mockGateway
	notifier  *mockNotifier
	apptID    uuid.UUID
	serviceID uuid.UUID
}

func newFixture() *fixture {
	apptID := uuid.New()
	serviceID := uuid.New()
	repo := newMockPaymentRepo()
	gateway := &mockGateway{appts: map[uuid.UUID]*AppointmentInfo{
		apptID: {ID: apptID, PatientID: "pat_1", Status: "SCHEDULED"},
	}}
	catalog := &mockCatalog{services: map[uuid.UUID]*ServiceInfo{
		serviceID: {ID: serviceID, Name: "Consultation", Price: 50},
	}}
	notifier := &mockNotifier{}
	svc := NewService(repo, gateway, catalog, notifier, &mockAuditor{})
	return &fixture{svc: svc, repo: repo, gateway: gateway, notifier: notifier, apptID: apptID, serviceID: serviceID}
}

var serviceDate = time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC)

func TestAddBillItem_UsesCatalogPrice(t *testing.T) {
	f := newFixture()

	payment, err := f.svc.AddBillItem(context.Background(), "cashier_1", f.apptID, f.serviceID, serviceDate, 2, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payment.TotalAmount != 100 {
		t.Errorf("expected total 100 (2 x 50), got %.2f", payment.TotalAmount)
	}
	if payment.Status != StatusUnpaid {
		t.Errorf("new payment should be UNPAID, got %s", payment.Status)
	}
}

func TestAddBillItem_SamePaymentForSameAppointment(t *testing.T) {
	f := newFixture()

	first, err := f.svc.AddBillItem(context.Background(), "cashier_1", f.apptID, f.serviceID, serviceDate, 1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := f.svc.AddBillItem(context.Background(), "cashier_2", f.apptID, f.serviceID, serviceDate, 1, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("expected one payment per appointment, got %s and %s", first.ID, second.ID)
	}
	if second.TotalAmount != 80 {
		t.Errorf("expected running total 80 (50 + 30), got %.2f", second.TotalAmount)
	}
}

func TestAddBillItem_RequiresScheduledAppointment(t *testing.T) {
	f := newFixture()
	f.gateway.appts[f.apptID].Status = "PENDING"

	if _, err := f.svc.AddBillItem(context.Background(), "cashier_1", f.apptID, f.serviceID, serviceDate, 1, 0); err == nil {
		t.Fatal("expected error billing a pending appointment")
	}
}

func TestGenerateBill_AppliesDiscountAndCompletes(t *testing.T) {
	f := newFixture()

	payment, err := f.svc.AddBillItem(context.Background(), "cashier_1", f.apptID, f.serviceID, serviceDate, 4, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	final, err := f.svc.GenerateBill(context.Background(), "cashier_1", payment.ID, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 4 x 50 = 200 total, 10% discount = 20 off.
	if math.Abs(final.DiscountAmount()-20) > 1e-9 {
		t.Errorf("expected discount amount 20, got %.2f", final.DiscountAmount())
	}
	if math.Abs(final.PayableAmount()-180) > 1e-9 {
		t.Errorf("expected payable 180, got %.2f", final.PayableAmount())
	}
	if len(f.gateway.completed) != 1 || f.gateway.completed[0] != f.apptID {
		t.Error("generating the bill should complete the appointment")
	}
	if len(f.notifier.titles) == 0 || f.notifier.titles[len(f.notifier.titles)-1] != "Bill Ready" {
		t.Error("patient should be notified that the bill is ready")
	}
}

func TestGenerateBill_EmptyBillRejected(t *testing.T) {
	f := newFixture()

	payment, err := f.repo.Upsert(context.Background(), &Payment{
		PatientID: "pat_1", AppointmentID: f.apptID, Status: StatusUnpaid,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.svc.GenerateBill(context.Background(), "cashier_1", payment.ID, 0); err == nil {
		t.Fatal("expected error generating a bill with no items")
	}
	if len(f.gateway.completed) != 0 {
		t.Error("appointment should not be completed")
	}
}

func TestGenerateBill_DiscountRange(t *testing.T) {
	f := newFixture()
	for _, bad := range []float64{-1, 101} {
		if _, err := f.svc.GenerateBill(context.Background(), "cashier_1", uuid.New(), bad); err == nil {
			t.Errorf("expected error for discount %.0f", bad)
		}
	}
}

func TestRecordPayment_MovesThroughPartToPaid(t *testing.T) {
	f := newFixture()

	payment, err := f.svc.AddBillItem(context.Background(), "cashier_1", f.apptID, f.serviceID, serviceDate, 2, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.svc.GenerateBill(context.Background(), "cashier_1", payment.ID, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, err := f.svc.RecordPayment(context.Background(), "cashier_1", payment.ID, 40, "CASH")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Status != StatusPart {
		t.Errorf("expected PART after partial payment, got %s", p.Status)
	}

	p, err = f.svc.RecordPayment(context.Background(), "cashier_1", payment.ID, 60, "CASH")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Status != StatusPaid {
		t.Errorf("expected PAID after full payment, got %s", p.Status)
	}
}

func TestAddBillItem_TotalSurvivesInterleavedWriter(t *testing.T) {
	f := newFixture()

	first, err := f.svc.AddBillItem(context.Background(), "doc_1", f.apptID, f.serviceID, serviceDate, 1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Another writer lands an amount between our read and our write; an
	// in-place increment must not clobber it.
	f.repo.payments[first.ID].TotalAmount += 7

	second, err := f.svc.AddBillItem(context.Background(), "doc_1", f.apptID, f.serviceID, serviceDate, 1, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.TotalAmount != 87 {
		t.Errorf("expected total 87 (50 + 7 + 30), got %.2f", second.TotalAmount)
	}
}

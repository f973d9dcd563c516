package appointment

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mediland/clinic/internal/platform/mail"
)

type mockAppointmentRepo struct {
	items map[uuid.UUID]*Appointment
}

func newMockAppointmentRepo() *mockAppointmentRepo {
	return &mockAppointmentRepo{items: make(map[uuid.UUID]*Appointment)}
}

func (m *mockAppointmentRepo) Create(_ context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	m.items[a.ID] = a
	return nil
}

func (m *mockAppointmentRepo) Update(_ context.Context, a *Appointment) error {
	if _, ok := m.items[a.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.items[a.ID] = a
	return nil
}

func (m *mockAppointmentRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	a, ok := m.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return a, nil
}

func (m *mockAppointmentRepo) Search(_ context.Context, params SearchParams, limit, offset int) ([]*Appointment, int, error) {
	var matched []*Appointment
	for _, a := range m.items {
		if params.PatientID != "" && a.PatientID != params.PatientID {
			continue
		}
		if params.DoctorID != "" && a.DoctorID != params.DoctorID {
			continue
		}
		if params.Status != "" && a.Status != params.Status {
			continue
		}
		matched = append(matched, a)
	}
	return matched, len(matched), nil
}

func (m *mockAppointmentRepo) CountCompleted(_ context.Context, patientID, doctorID string) (int, error) {
	count := 0
	for _, a := range m.items {
		if a.PatientID == patientID && a.DoctorID == doctorID && a.Status == StatusCompleted {
			count++
		}
	}
	return count, nil
}

type mockPatientDir struct {
	patients map[string]*PatientInfo
}

func (m *mockPatientDir) GetPatient(_ context.Context, id string) (*PatientInfo, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}

type mockDoctorDir struct {
	doctors map[string]*DoctorInfo
}

func (m *mockDoctorDir) GetDoctor(_ context.Context, id string) (*DoctorInfo, error) {
	d, ok := m.doctors[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return d, nil
}

type mockNotifier struct {
	byUser map[string][]string
}

func (m *mockNotifier) Notify(_ context.Context, userID, title, message string) error {
	if m.byUser == nil {
		m.byUser = make(map[string][]string)
	}
	m.byUser[userID] = append(m.byUser[userID], title)
	return nil
}

type mockAuditor struct {
	actions []string
}

func (m *mockAuditor) Record(_ context.Context, userID, recordID, action string, details interface{}) {
	m.actions = append(m.actions, action)
}

type fixture struct {
	svc      *Service
	repo     *mockAppointmentRepo
	mailer   *mail.MockSender
	notifier *mockNotifier
	auditor  *mockAuditor
}

func newFixture() *fixture {
	repo := newMockAppointmentRepo()
	mailer := &mail.MockSender{}
	notifier := &mockNotifier{}
	auditor := &mockAuditor{}
	patients := &mockPatientDir{patients: map[string]*PatientInfo{
		"pat_1": {ID: "pat_1", Name: "Jane Mwangi", Email: "jane@example.com"},
	}}
	doctors := &mockDoctorDir{doctors: map[string]*DoctorInfo{
		"doc_1": {ID: "doc_1", Name: "Asha Patel", Email: "asha@example.com", Status: "ACTIVE"},
		"doc_2": {ID: "doc_2", Name: "On Leave", Email: "leave@example.com", Status: "ON_LEAVE"},
	}}
	svc := NewService(repo, patients, doctors, mailer, notifier, auditor)
	return &fixture{svc: svc, repo: repo, mailer: mailer, notifier: notifier, auditor: auditor}
}

func validBooking() *Appointment {
	return &Appointment{
		PatientID:       "pat_1",
		DoctorID:        "doc_1",
		AppointmentDate: time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC),
		Time:            "10:00",
		Type:            "Checkup",
	}
}

func TestBook_StartsPendingWithSideEffects(t *testing.T) {
	f := newFixture()

	a, err := f.svc.Book(context.Background(), validBooking())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Status != StatusPending {
		t.Errorf("expected PENDING, got %s", a.Status)
	}

	last := f.mailer.Last()
	if last == nil {
		t.Fatal("expected a booking email")
	}
	if last.To != "jane@example.com" || last.Subject != "Appointment Under Review" {
		t.Errorf("unexpected email: to=%s subject=%s", last.To, last.Subject)
	}
	if !strings.Contains(last.HTML, "under review") {
		t.Error("booking email should mention the review state")
	}
	if len(f.notifier.byUser["doc_1"]) != 1 {
		t.Error("doctor should be notified of the request")
	}
}

func TestBook_DoctorMustBeActive(t *testing.T) {
	f := newFixture()

	a := validBooking()
	a.DoctorID = "doc_2"
	if _, err := f.svc.Book(context.Background(), a); err == nil {
		t.Fatal("expected error for doctor on leave")
	}
	if len(f.repo.items) != 0 {
		t.Error("no appointment should be stored")
	}
}

func TestBook_UnknownPatient(t *testing.T) {
	f := newFixture()

	a := validBooking()
	a.PatientID = "missing"
	if _, err := f.svc.Book(context.Background(), a); err == nil {
		t.Fatal("expected error for unknown patient")
	}
}

func TestUpdateStatus_ApproveEmailsPatient(t *testing.T) {
	f := newFixture()

	a, err := f.svc.Book(context.Background(), validBooking())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated, err := f.svc.UpdateStatus(context.Background(), "doc_1", a.ID, StatusScheduled, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != StatusScheduled {
		t.Errorf("expected SCHEDULED, got %s", updated.Status)
	}

	last := f.mailer.Last()
	if last == nil || last.Subject != "Appointment Approved" {
		t.Fatalf("expected approval email, got %+v", last)
	}
	if !strings.Contains(last.HTML, "#10b981") {
		t.Error("approval email should use the green header")
	}
}

func TestUpdateStatus_DeclineIncludesReason(t *testing.T) {
	f := newFixture()

	a, err := f.svc.Book(context.Background(), validBooking())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated, err := f.svc.UpdateStatus(context.Background(), "doc_1", a.ID, StatusCancelled, "fully booked that day")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Reason != "fully booked that day" {
		t.Errorf("expected reason stored, got %q", updated.Reason)
	}

	last := f.mailer.Last()
	if last == nil || last.Subject != "Appointment Declined" {
		t.Fatalf("expected decline email, got %+v", last)
	}
	if !strings.Contains(last.HTML, "fully booked that day") {
		t.Error("decline email should include the reason")
	}
	if !strings.Contains(last.HTML, "#ef4444") {
		t.Error("decline email should use the red header")
	}
}

func TestUpdateStatus_IllegalTransitions(t *testing.T) {
	f := newFixture()

	a, err := f.svc.Book(context.Background(), validBooking())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Completion only happens through billing.
	if _, err := f.svc.UpdateStatus(context.Background(), "doc_1", a.ID, StatusCompleted, ""); err == nil {
		t.Fatal("expected error completing a pending appointment")
	}

	if _, err := f.svc.UpdateStatus(context.Background(), "doc_1", a.ID, StatusCancelled, "no"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Cancelled is terminal.
	if _, err := f.svc.UpdateStatus(context.Background(), "doc_1", a.ID, StatusScheduled, ""); err == nil {
		t.Fatal("expected error reviving a cancelled appointment")
	}
}

func TestUpdateStatus_SameStatusNoOp(t *testing.T) {
	f := newFixture()

	a, err := f.svc.Book(context.Background(), validBooking())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.svc.UpdateStatus(context.Background(), "doc_1", a.ID, StatusScheduled, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mails := len(f.mailer.Sent)

	if _, err := f.svc.UpdateStatus(context.Background(), "doc_1", a.ID, StatusScheduled, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.mailer.Sent) != mails {
		t.Error("re-applying the current status should not email again")
	}
}

func TestMarkCompleted_OnlyFromScheduled(t *testing.T) {
	f := newFixture()

	a, err := f.svc.Book(context.Background(), validBooking())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := f.svc.MarkCompleted(context.Background(), a.ID); err == nil {
		t.Fatal("expected error completing a pending appointment")
	}

	if _, err := f.svc.UpdateStatus(context.Background(), "doc_1", a.ID, StatusScheduled, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.svc.MarkCompleted(context.Background(), a.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ok, err := f.svc.HasCompletedVisit(context.Background(), "pat_1", "doc_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected a completed visit")
	}

	// Completing again is a no-op.
	if err := f.svc.MarkCompleted(context.Background(), a.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

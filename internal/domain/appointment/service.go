package appointment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mediland/clinic/internal/domain/audit"
	"github.com/mediland/clinic/internal/platform/mail"
)

// PatientInfo is what the appointment workflow needs to know about a
// patient: a display name for emails and the address to send them to.
type PatientInfo struct {
	ID    string
	Name  string
	Email string
}

// DoctorInfo carries the doctor details the appointment workflow needs.
type DoctorInfo struct {
	ID     string
	Name   string
	Email  string
	Status string
}

// PatientDirectory resolves patient ids to contact details.
type PatientDirectory interface {
	GetPatient(ctx context.Context, id string) (*PatientInfo, error)
}

// DoctorDirectory resolves doctor ids to contact details and availability.
type DoctorDirectory interface {
	GetDoctor(ctx context.Context, id string) (*DoctorInfo, error)
}

// Notifier delivers an in-app notification to a user.
type Notifier interface {
	Notify(ctx context.Context, userID, title, message string) error
}

// transitions whitelists the allowed status moves. COMPLETED is reachable
// only through MarkCompleted, which billing calls when the final bill is
// generated.
var transitions = map[string]map[string]bool{
	StatusPending: {
		StatusScheduled: true,
		StatusCancelled: true,
	},
	StatusScheduled: {
		StatusCancelled: true,
	},
}

type Service struct {
	repo     AppointmentRepository
	patients PatientDirectory
	doctors  DoctorDirectory
	mailer   mail.Sender
	notifier Notifier
	auditor  audit.Recorder
}

func NewService(repo AppointmentRepository, patients PatientDirectory, doctors DoctorDirectory,
	mailer mail.Sender, notifier Notifier, auditor audit.Recorder) *Service {
	return &Service{
		repo:     repo,
		patients: patients,
		doctors:  doctors,
		mailer:   mailer,
		notifier: notifier,
		auditor:  auditor,
	}
}

// Book creates a PENDING appointment request. The patient gets a
// booking-received email, the doctor an in-app notification. Side effect
// failures are logged and swallowed; the stored appointment is the source
// of truth.
func (s *Service) Book(ctx context.Context, a *Appointment) (*Appointment, error) {
	if a.PatientID == "" {
		return nil, fmt.Errorf("patient id is required")
	}
	if a.DoctorID == "" {
		return nil, fmt.Errorf("doctor id is required")
	}
	if a.AppointmentDate.IsZero() {
		return nil, fmt.Errorf("appointment date is required")
	}
	if a.Time == "" {
		return nil, fmt.Errorf("appointment time is required")
	}
	if a.Type == "" {
		return nil, fmt.Errorf("appointment type is required")
	}

	p, err := s.patients.GetPatient(ctx, a.PatientID)
	if err != nil {
		return nil, fmt.Errorf("patient not found: %w", err)
	}
	d, err := s.doctors.GetDoctor(ctx, a.DoctorID)
	if err != nil {
		return nil, fmt.Errorf("doctor not found: %w", err)
	}
	if d.Status != "ACTIVE" {
		return nil, fmt.Errorf("doctor is not accepting appointments")
	}

	a.Status = StatusPending
	a.Reason = ""
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("creating appointment: %w", err)
	}

	subject, html := mail.BookingReceivedEmail(p.Name, d.Name, a.AppointmentDate, a.Time)
	s.sendMail(ctx, p.Email, p.Name, subject, html)
	s.notify(ctx, d.ID, "New Appointment Request",
		fmt.Sprintf("%s requested an appointment on %s at %s.", p.Name, a.AppointmentDate.Format("Jan 02, 2006"), a.Time))
	s.auditor.Record(ctx, a.PatientID, a.ID.String(), audit.ActionAppointmentBooked, map[string]string{"doctorId": a.DoctorID})

	return a, nil
}

// UpdateStatus moves an appointment through the approval workflow. Approving
// emails the patient a green confirmation; declining emails a red one with
// the doctor's reason. Re-applying the current status is a no-op.
func (s *Service) UpdateStatus(ctx context.Context, actorID string, id uuid.UUID, status, reason string) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("appointment not found: %w", err)
	}
	if a.Status == status {
		return a, nil
	}
	if !transitions[a.Status][status] {
		return nil, fmt.Errorf("cannot move appointment from %s to %s", a.Status, status)
	}

	a.Status = status
	if status == StatusCancelled {
		a.Reason = reason
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("updating appointment: %w", err)
	}

	s.sendDecision(ctx, a)

	action := audit.ActionAppointmentDeclined
	if status == StatusScheduled {
		action = audit.ActionAppointmentApproved
	}
	s.auditor.Record(ctx, actorID, a.ID.String(), action, map[string]string{"status": status, "reason": reason})

	return a, nil
}

// sendDecision emails the patient and notifies them in-app about an
// approval or decline.
func (s *Service) sendDecision(ctx context.Context, a *Appointment) {
	p, err := s.patients.GetPatient(ctx, a.PatientID)
	if err != nil {
		log.Warn().Err(err).Str("patient_id", a.PatientID).Msg("decision email skipped, patient lookup failed")
		return
	}
	d, err := s.doctors.GetDoctor(ctx, a.DoctorID)
	if err != nil {
		log.Warn().Err(err).Str("doctor_id", a.DoctorID).Msg("decision email skipped, doctor lookup failed")
		return
	}

	approved := a.Status == StatusScheduled
	subject, html := mail.AppointmentDecisionEmail(p.Name, d.Name, approved, a.AppointmentDate, a.Time, a.Reason)
	s.sendMail(ctx, p.Email, p.Name, subject, html)

	title := "Appointment Declined"
	message := fmt.Sprintf("Your appointment with Dr. %s was declined.", d.Name)
	if approved {
		title = "Appointment Approved"
		message = fmt.Sprintf("Your appointment with Dr. %s on %s at %s is confirmed.",
			d.Name, a.AppointmentDate.Format("Jan 02, 2006"), a.Time)
	}
	s.notify(ctx, a.PatientID, title, message)
}

// MarkCompleted finalizes a SCHEDULED appointment. Billing calls this when
// the final bill is generated; there is no other path to COMPLETED.
func (s *Service) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("appointment not found: %w", err)
	}
	if a.Status == StatusCompleted {
		return nil
	}
	if a.Status != StatusScheduled {
		return fmt.Errorf("only scheduled appointments can be completed, status is %s", a.Status)
	}

	a.Status = StatusCompleted
	if err := s.repo.Update(ctx, a); err != nil {
		return fmt.Errorf("updating appointment: %w", err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, params SearchParams, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.Search(ctx, params, limit, offset)
}

// HasCompletedVisit reports whether the patient has at least one completed
// appointment with the doctor.
func (s *Service) HasCompletedVisit(ctx context.Context, patientID, doctorID string) (bool, error) {
	count, err := s.repo.CountCompleted(ctx, patientID, doctorID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Service) sendMail(ctx context.Context, to, toName, subject, html string) {
	if s.mailer == nil {
		return
	}
	msg := mail.Message{To: to, ToName: toName, Subject: subject, HTML: html}
	if err := s.mailer.Send(ctx, msg); err != nil {
		log.Warn().Err(err).Str("to", to).Str("subject", subject).Msg("appointment email failed")
	}
}

func (s *Service) notify(ctx context.Context, userID, title, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, userID, title, message); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("notification delivery failed")
	}
}

package medicalrecord

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mediland/clinic/internal/domain/audit"
)

// AppointmentInfo is what charting needs to know about an appointment.
type AppointmentInfo struct {
	ID        uuid.UUID
	PatientID string
	DoctorID  string
	Status    string
}

// AppointmentSource resolves appointment ids. Records can only be opened
// against appointments that were actually scheduled.
type AppointmentSource interface {
	GetAppointment(ctx context.Context, id uuid.UUID) (*AppointmentInfo, error)
}

var chartableStatuses = map[string]bool{
	"SCHEDULED": true,
	"COMPLETED": true,
}

var validLabStatuses = map[string]bool{
	LabStatusPending:   true,
	LabStatusCompleted: true,
	LabStatusCancelled: true,
}

type Service struct {
	repo         RecordRepository
	appointments AppointmentSource
	auditor      audit.Recorder
}

func NewService(repo RecordRepository, appointments AppointmentSource, auditor audit.Recorder) *Service {
	return &Service{repo: repo, appointments: appointments, auditor: auditor}
}

// GetOrCreate returns the medical record for an appointment, creating it on
// first use. The create is an atomic upsert, so two clinicians charting the
// same visit at once end up on the same record.
func (s *Service) GetOrCreate(ctx context.Context, actorID string, appointmentID uuid.UUID) (*MedicalRecord, error) {
	appt, err := s.appointments.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("appointment not found: %w", err)
	}
	if !chartableStatuses[appt.Status] {
		return nil, fmt.Errorf("appointment must be scheduled before charting, status is %s", appt.Status)
	}

	rec, err := s.repo.Upsert(ctx, &MedicalRecord{
		PatientID:     appt.PatientID,
		AppointmentID: appt.ID,
		DoctorID:      appt.DoctorID,
	})
	if err != nil {
		return nil, fmt.Errorf("opening medical record: %w", err)
	}

	s.auditor.Record(ctx, actorID, rec.ID.String(), audit.ActionRecordCreated, nil)
	return rec, nil
}

// AddVitalSigns records a set of measurements against the appointment's
// record, opening the record if needed.
func (s *Service) AddVitalSigns(ctx context.Context, actorID string, appointmentID uuid.UUID, v *VitalSigns) (*VitalSigns, error) {
	if v.BodyTemperature <= 0 {
		return nil, fmt.Errorf("body temperature is required")
	}
	if v.HeartRate <= 0 {
		return nil, fmt.Errorf("heart rate is required")
	}
	if v.SystolicBP <= 0 || v.DiastolicBP <= 0 {
		return nil, fmt.Errorf("blood pressure readings are required")
	}
	if v.Weight <= 0 || v.Height <= 0 {
		return nil, fmt.Errorf("weight and height are required")
	}

	rec, err := s.GetOrCreate(ctx, actorID, appointmentID)
	if err != nil {
		return nil, err
	}

	v.MedicalRecordID = rec.ID
	v.PatientID = rec.PatientID
	if err := s.repo.AddVitalSigns(ctx, v); err != nil {
		return nil, fmt.Errorf("saving vital signs: %w", err)
	}

	s.auditor.Record(ctx, actorID, rec.ID.String(), audit.ActionVitalsAdded, nil)
	return v, nil
}

// AddDiagnosis records a doctor's finding against the appointment's record,
// opening the record if needed.
func (s *Service) AddDiagnosis(ctx context.Context, doctorID string, appointmentID uuid.UUID, d *Diagnosis) (*Diagnosis, error) {
	if d.Symptoms == "" {
		return nil, fmt.Errorf("symptoms are required")
	}
	if d.Diagnosis == "" {
		return nil, fmt.Errorf("diagnosis is required")
	}

	rec, err := s.GetOrCreate(ctx, doctorID, appointmentID)
	if err != nil {
		return nil, err
	}

	d.MedicalRecordID = rec.ID
	d.PatientID = rec.PatientID
	d.DoctorID = doctorID
	if err := s.repo.AddDiagnosis(ctx, d); err != nil {
		return nil, fmt.Errorf("saving diagnosis: %w", err)
	}

	s.auditor.Record(ctx, doctorID, rec.ID.String(), audit.ActionDiagnosisAdded, nil)
	return d, nil
}

// AddLabTest orders a lab test against the appointment's record. Unlike
// vitals and diagnoses the record must already exist: a test is always
// ordered from an open chart. New orders start PENDING.
func (s *Service) AddLabTest(ctx context.Context, actorID string, appointmentID uuid.UUID, t *LabTest) (*LabTest, error) {
	if t.TestDate.IsZero() {
		return nil, fmt.Errorf("test date is required")
	}

	rec, err := s.repo.GetByAppointment(ctx, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("no medical record for appointment: %w", err)
	}

	t.MedicalRecordID = rec.ID
	t.Status = LabStatusPending
	if err := s.repo.AddLabTest(ctx, t); err != nil {
		return nil, fmt.Errorf("saving lab test: %w", err)
	}

	s.auditor.Record(ctx, actorID, rec.ID.String(), audit.ActionLabTestAdded, nil)
	return t, nil
}

// UpdateLabTest records a result or status change on an ordered test.
func (s *Service) UpdateLabTest(ctx context.Context, actorID string, id uuid.UUID, result, status, notes string) (*LabTest, error) {
	t, err := s.repo.GetLabTest(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lab test not found: %w", err)
	}
	if status != "" && !validLabStatuses[status] {
		return nil, fmt.Errorf("invalid lab test status %s", status)
	}

	if result != "" {
		t.Result = result
		t.Status = LabStatusCompleted
	}
	if status != "" {
		t.Status = status
	}
	if notes != "" {
		t.Notes = notes
	}

	if err := s.repo.UpdateLabTest(ctx, t); err != nil {
		return nil, fmt.Errorf("updating lab test: %w", err)
	}
	return t, nil
}

// GetByAppointment returns the appointment's record with vitals, diagnoses,
// and lab tests attached.
func (s *Service) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*MedicalRecord, error) {
	rec, err := s.repo.GetByAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	return s.attachChildren(ctx, rec)
}

// Get returns a record by id with its children attached.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*MedicalRecord, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.attachChildren(ctx, rec)
}

func (s *Service) ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*MedicalRecord, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) attachChildren(ctx context.Context, rec *MedicalRecord) (*MedicalRecord, error) {
	vitals, err := s.repo.ListVitalSigns(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	diagnoses, err := s.repo.ListDiagnoses(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	tests, err := s.repo.ListLabTests(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	rec.VitalSigns = vitals
	rec.Diagnoses = diagnoses
	rec.LabTests = tests
	return rec, nil
}

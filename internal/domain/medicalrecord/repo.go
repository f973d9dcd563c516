package medicalrecord

import (
	"context"

	"github.com/google/uuid"
)

type RecordRepository interface {
	// Upsert returns the record for the appointment, creating it atomically
	// if it does not exist yet. Concurrent callers get the same row.
	Upsert(ctx context.Context, r *MedicalRecord) (*MedicalRecord, error)
	Update(ctx context.Context, r *MedicalRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*MedicalRecord, error)
	GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*MedicalRecord, error)
	ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*MedicalRecord, int, error)

	AddVitalSigns(ctx context.Context, v *VitalSigns) error
	ListVitalSigns(ctx context.Context, recordID uuid.UUID) ([]*VitalSigns, error)

	AddDiagnosis(ctx context.Context, d *Diagnosis) error
	ListDiagnoses(ctx context.Context, recordID uuid.UUID) ([]*Diagnosis, error)

	AddLabTest(ctx context.Context, t *LabTest) error
	UpdateLabTest(ctx context.Context, t *LabTest) error
	GetLabTest(ctx context.Context, id uuid.UUID) (*LabTest, error)
	ListLabTests(ctx context.Context, recordID uuid.UUID) ([]*LabTest, error)
}

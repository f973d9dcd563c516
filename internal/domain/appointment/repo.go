package appointment

import (
	"context"

	"github.com/google/uuid"
)

// SearchParams narrows an appointment listing. Zero values mean no filter.
type SearchParams struct {
	PatientID string
	DoctorID  string
	Status    string
}

type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	Update(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Search(ctx context.Context, params SearchParams, limit, offset int) ([]*Appointment, int, error)
	CountCompleted(ctx context.Context, patientID, doctorID string) (int, error)
}

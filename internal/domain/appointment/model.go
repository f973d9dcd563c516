package appointment

import (
	"time"

	"github.com/google/uuid"
)

// Appointment statuses. A booking starts PENDING and is approved to
// SCHEDULED or declined to CANCELLED by the doctor. SCHEDULED appointments
// become COMPLETED when the final bill is generated.
const (
	StatusPending   = "PENDING"
	StatusScheduled = "SCHEDULED"
	StatusCancelled = "CANCELLED"
	StatusCompleted = "COMPLETED"
)

type Appointment struct {
	ID              uuid.UUID `db:"id" json:"id"`
	PatientID       string    `db:"patient_id" json:"patientId"`
	DoctorID        string    `db:"doctor_id" json:"doctorId"`
	AppointmentDate time.Time `db:"appointment_date" json:"appointmentDate"`
	Time            string    `db:"time" json:"time"`
	Status          string    `db:"status" json:"status"`
	Type            string    `db:"type" json:"type"`
	Note            string    `db:"note" json:"note,omitempty"`
	// Reason records why a booking was declined or cancelled.
	Reason    string    `db:"reason" json:"reason,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

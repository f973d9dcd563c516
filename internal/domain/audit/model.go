package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Log is a single audit trail entry. Every sensitive write in the system
// (appointment decisions, medical record changes, billing, onboarding)
// records one, keyed by the acting user and the affected record.
type Log struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	UserID    string          `db:"user_id" json:"userId"`
	RecordID  string          `db:"record_id" json:"recordId"`
	Action    string          `db:"action" json:"action"`
	Details   json.RawMessage `db:"details" json:"details,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
}

// Actions recorded across the application.
const (
	ActionAppointmentBooked   = "APPOINTMENT_BOOKED"
	ActionAppointmentApproved = "APPOINTMENT_APPROVED"
	ActionAppointmentDeclined = "APPOINTMENT_DECLINED"
	ActionAppointmentUpdated  = "APPOINTMENT_UPDATED"
	ActionRecordCreated       = "MEDICAL_RECORD_CREATED"
	ActionVitalsAdded         = "VITAL_SIGNS_ADDED"
	ActionDiagnosisAdded      = "DIAGNOSIS_ADDED"
	ActionLabTestAdded        = "LAB_TEST_ADDED"
	ActionBillItemAdded       = "BILL_ITEM_ADDED"
	ActionBillGenerated       = "BILL_GENERATED"
	ActionDoctorRegistered    = "DOCTOR_REGISTERED"
	ActionDoctorApproved      = "DOCTOR_APPROVED"
	ActionDoctorRejected      = "DOCTOR_REJECTED"
	ActionDoctorStatusChanged = "DOCTOR_STATUS_CHANGED"
	ActionPatientCreated      = "PATIENT_CREATED"
	ActionPatientUpdated      = "PATIENT_UPDATED"
	ActionStaffCreated        = "STAFF_CREATED"
)

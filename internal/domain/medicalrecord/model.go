package medicalrecord

import (
	"time"

	"github.com/google/uuid"
)

// MedicalRecord is the per-appointment clinical chart. There is at most one
// record per appointment; it is created lazily the first time a clinician
// writes to it.
type MedicalRecord struct {
	ID            uuid.UUID `db:"id" json:"id"`
	PatientID     string    `db:"patient_id" json:"patientId"`
	AppointmentID uuid.UUID `db:"appointment_id" json:"appointmentId"`
	DoctorID      string    `db:"doctor_id" json:"doctorId"`
	TreatmentPlan string    `db:"treatment_plan" json:"treatmentPlan,omitempty"`
	Prescriptions string    `db:"prescriptions" json:"prescriptions,omitempty"`
	LabRequest    string    `db:"lab_request" json:"labRequest,omitempty"`
	Notes         string    `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`

	VitalSigns []*VitalSigns `json:"vitalSigns,omitempty"`
	Diagnoses  []*Diagnosis  `json:"diagnoses,omitempty"`
	LabTests   []*LabTest    `json:"labTests,omitempty"`
}

// VitalSigns is one set of measurements taken during a visit.
type VitalSigns struct {
	ID               uuid.UUID `db:"id" json:"id"`
	MedicalRecordID  uuid.UUID `db:"medical_record_id" json:"medicalRecordId"`
	PatientID        string    `db:"patient_id" json:"patientId"`
	BodyTemperature  float64   `db:"body_temperature" json:"bodyTemperature"`
	HeartRate        int       `db:"heart_rate" json:"heartRate"`
	SystolicBP       int       `db:"systolic_bp" json:"systolicBP"`
	DiastolicBP      int       `db:"diastolic_bp" json:"diastolicBP"`
	RespiratoryRate  *int      `db:"respiratory_rate" json:"respiratoryRate,omitempty"`
	OxygenSaturation *int      `db:"oxygen_saturation" json:"oxygenSaturation,omitempty"`
	Weight           float64   `db:"weight" json:"weight"`
	Height           float64   `db:"height" json:"height"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
}

// Diagnosis is a doctor's clinical finding for a visit.
type Diagnosis struct {
	ID                    uuid.UUID `db:"id" json:"id"`
	MedicalRecordID       uuid.UUID `db:"medical_record_id" json:"medicalRecordId"`
	PatientID             string    `db:"patient_id" json:"patientId"`
	DoctorID              string    `db:"doctor_id" json:"doctorId"`
	Symptoms              string    `db:"symptoms" json:"symptoms"`
	Diagnosis             string    `db:"diagnosis" json:"diagnosis"`
	DiagnosisCode         string    `db:"diagnosis_code" json:"diagnosisCode,omitempty"`
	Notes                 string    `db:"notes" json:"notes,omitempty"`
	PrescribedMedications string    `db:"prescribed_medications" json:"prescribedMedications,omitempty"`
	FollowUpPlan          string    `db:"follow_up_plan" json:"followUpPlan,omitempty"`
	Severity              string    `db:"severity" json:"severity,omitempty"`
	CreatedAt             time.Time `db:"created_at" json:"createdAt"`
}

// Lab test statuses.
const (
	LabStatusPending   = "PENDING"
	LabStatusCompleted = "COMPLETED"
	LabStatusCancelled = "CANCELLED"
)

// LabTest is an ordered laboratory test attached to a medical record.
type LabTest struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	MedicalRecordID uuid.UUID  `db:"medical_record_id" json:"medicalRecordId"`
	ServiceID       *uuid.UUID `db:"service_id" json:"serviceId,omitempty"`
	TestDate        time.Time  `db:"test_date" json:"testDate"`
	Result          string     `db:"result" json:"result,omitempty"`
	Status          string     `db:"status" json:"status"`
	Notes           string     `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"createdAt"`
}

package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient is keyed by the identity provider's user id rather than a local
// uuid, so a signed-in user maps straight onto their patient row.
type Patient struct {
	ID                     string    `db:"id" json:"id"`
	FirstName              string    `db:"first_name" json:"firstName"`
	LastName               string    `db:"last_name" json:"lastName"`
	DateOfBirth            time.Time `db:"date_of_birth" json:"dateOfBirth"`
	Gender                 string    `db:"gender" json:"gender"`
	Phone                  string    `db:"phone" json:"phone"`
	Email                  string    `db:"email" json:"email"`
	MaritalStatus          string    `db:"marital_status" json:"maritalStatus"`
	Address                string    `db:"address" json:"address"`
	EmergencyContactName   string    `db:"emergency_contact_name" json:"emergencyContactName"`
	EmergencyContactNumber string    `db:"emergency_contact_number" json:"emergencyContactNumber"`
	Relation               string    `db:"relation" json:"relation"`
	BloodGroup             string    `db:"blood_group" json:"bloodGroup,omitempty"`
	Allergies              string    `db:"allergies" json:"allergies,omitempty"`
	MedicalConditions      string    `db:"medical_conditions" json:"medicalConditions,omitempty"`
	MedicalHistory         string    `db:"medical_history" json:"medicalHistory,omitempty"`
	InsuranceProvider      string    `db:"insurance_provider" json:"insuranceProvider,omitempty"`
	InsuranceNumber        string    `db:"insurance_number" json:"insuranceNumber,omitempty"`
	PrivacyConsent         bool      `db:"privacy_consent" json:"privacyConsent"`
	ServiceConsent         bool      `db:"service_consent" json:"serviceConsent"`
	MedicalConsent         bool      `db:"medical_consent" json:"medicalConsent"`
	Img                    string    `db:"img" json:"img,omitempty"`
	ColorCode              string    `db:"color_code" json:"colorCode,omitempty"`
	CreatedAt              time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt              time.Time `db:"updated_at" json:"updatedAt"`
}

// FullName returns the patient's display name.
func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}

// Rating is a patient's review of a doctor after a completed visit.
type Rating struct {
	ID        uuid.UUID `db:"id" json:"id"`
	DoctorID  string    `db:"doctor_id" json:"doctorId"`
	PatientID string    `db:"patient_id" json:"patientId"`
	Rating    int       `db:"rating" json:"rating"`
	Comment   string    `db:"comment" json:"comment,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

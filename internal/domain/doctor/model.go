package doctor

import (
	"time"

	"github.com/google/uuid"
)

// Availability statuses a doctor moves through. New self-registrations start
// PENDING until an administrator approves them.
const (
	StatusPending = "PENDING"
	StatusActive  = "ACTIVE"
	StatusOnLeave = "ON_LEAVE"
)

// Employment types.
const (
	JobTypeFull = "FULL"
	JobTypePart = "PART"
)

// Doctor is keyed by the identity provider's user id.
type Doctor struct {
	ID                 string        `db:"id" json:"id"`
	Email              string        `db:"email" json:"email"`
	Name               string        `db:"name" json:"name"`
	Specialization     string        `db:"specialization" json:"specialization"`
	LicenseNumber      string        `db:"license_number" json:"licenseNumber"`
	Phone              string        `db:"phone" json:"phone"`
	Address            string        `db:"address" json:"address"`
	Department         string        `db:"department" json:"department"`
	Img                string        `db:"img" json:"img,omitempty"`
	ColorCode          string        `db:"color_code" json:"colorCode,omitempty"`
	AvailabilityStatus string        `db:"availability_status" json:"availabilityStatus"`
	JobType            string        `db:"type" json:"type"`
	WorkingDays        []*WorkingDay `json:"workingDays,omitempty"`
	CreatedAt          time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time     `db:"updated_at" json:"updatedAt"`
}

// WorkingDay is one weekly availability window for a doctor.
type WorkingDay struct {
	ID        uuid.UUID `db:"id" json:"id"`
	DoctorID  string    `db:"doctor_id" json:"doctorId"`
	Day       string    `db:"day" json:"day"`
	StartTime string    `db:"start_time" json:"startTime"`
	CloseTime string    `db:"close_time" json:"closeTime"`
}

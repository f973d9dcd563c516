package admin

import (
	"time"

	"github.com/google/uuid"
)

// Staff roles managed by administrators. Doctors and patients have their own
// onboarding flows.
const (
	StaffRoleNurse   = "NURSE"
	StaffRoleCashier = "CASHIER"
	StaffRoleLabTech = "LAB_TECHNICIAN"
)

// Staff statuses.
const (
	StaffStatusActive   = "ACTIVE"
	StaffStatusInactive = "INACTIVE"
)

// Staff is a non-physician employee, keyed by the identity provider's
// user id.
type Staff struct {
	ID            string    `db:"id" json:"id"`
	Email         string    `db:"email" json:"email"`
	Name          string    `db:"name" json:"name"`
	Phone         string    `db:"phone" json:"phone"`
	Address       string    `db:"address" json:"address"`
	Department    string    `db:"department" json:"department,omitempty"`
	LicenseNumber string    `db:"license_number" json:"licenseNumber,omitempty"`
	Role          string    `db:"role" json:"role"`
	Status        string    `db:"status" json:"status"`
	Img           string    `db:"img" json:"img,omitempty"`
	ColorCode     string    `db:"color_code" json:"colorCode,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

// CatalogService is a billable service on the clinic's price list.
type CatalogService struct {
	ID          uuid.UUID `db:"id" json:"id"`
	ServiceName string    `db:"service_name" json:"serviceName"`
	Description string    `db:"description" json:"description"`
	Price       float64   `db:"price" json:"price"`
	Category    string    `db:"category" json:"category"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

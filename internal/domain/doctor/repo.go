package doctor

import (
	"context"
)

// SearchParams narrows a doctor listing. Zero values mean no filter.
type SearchParams struct {
	Status         string
	Specialization string
	// Query matches name or email case-insensitively.
	Query string
}

type DoctorRepository interface {
	Create(ctx context.Context, d *Doctor) error
	Update(ctx context.Context, d *Doctor) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*Doctor, error)
	GetByLicense(ctx context.Context, licenseNumber string) (*Doctor, error)
	Search(ctx context.Context, params SearchParams, limit, offset int) ([]*Doctor, int, error)
	ReplaceWorkingDays(ctx context.Context, doctorID string, days []*WorkingDay) error
	ListWorkingDays(ctx context.Context, doctorID string) ([]*WorkingDay, error)
}

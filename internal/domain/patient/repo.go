package patient

import (
	"context"
)

type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error
	Update(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id string) (*Patient, error)
	// Search matches first name, last name, email, or phone case-insensitively.
	Search(ctx context.Context, query string, limit, offset int) ([]*Patient, int, error)
	Count(ctx context.Context) (int, error)
}

type RatingRepository interface {
	Create(ctx context.Context, r *Rating) error
	ListByDoctor(ctx context.Context, doctorID string, limit, offset int) ([]*Rating, int, error)
}

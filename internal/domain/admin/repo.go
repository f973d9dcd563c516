package admin

import (
	"context"

	"github.com/google/uuid"
)

type StaffRepository interface {
	Create(ctx context.Context, s *Staff) error
	Update(ctx context.Context, s *Staff) error
	GetByID(ctx context.Context, id string) (*Staff, error)
	List(ctx context.Context, role string, limit, offset int) ([]*Staff, int, error)
}

type ServiceRepository interface {
	Create(ctx context.Context, s *CatalogService) error
	Update(ctx context.Context, s *CatalogService) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*CatalogService, error)
	List(ctx context.Context, category string, limit, offset int) ([]*CatalogService, int, error)
}

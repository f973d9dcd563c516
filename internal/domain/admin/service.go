package admin

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mediland/clinic/internal/domain/audit"
	"github.com/mediland/clinic/internal/platform/identity"
)

var validStaffRoles = map[string]bool{
	StaffRoleNurse:   true,
	StaffRoleCashier: true,
	StaffRoleLabTech: true,
}

// StaffInput carries everything needed to onboard a staff member, including
// the credentials for the identity provider account.
type StaffInput struct {
	Email         string
	Password      string
	Name          string
	Phone         string
	Address       string
	Department    string
	LicenseNumber string
	Role          string
	Img           string
}

type Service struct {
	staff    StaffRepository
	services ServiceRepository
	idp      identity.Provider
	auditor  audit.Recorder
}

func NewService(staff StaffRepository, services ServiceRepository, idp identity.Provider, auditor audit.Recorder) *Service {
	return &Service{staff: staff, services: services, idp: idp, auditor: auditor}
}

// CreateStaff onboards a staff member: an account is created in the identity
// provider first, then the local profile is stored. If the profile write
// fails the identity account is deleted again so a retry does not collide
// with a half-created user.
func (s *Service) CreateStaff(ctx context.Context, adminID string, in StaffInput) (*Staff, error) {
	if in.Email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if in.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if !validStaffRoles[in.Role] {
		return nil, fmt.Errorf("role must be %s, %s, or %s", StaffRoleNurse, StaffRoleCashier, StaffRoleLabTech)
	}

	user, err := s.idp.CreateUser(ctx, identity.NewUser{
		Email:     in.Email,
		Password:  in.Password,
		FirstName: in.Name,
		Role:      "staff",
	})
	if err != nil {
		return nil, fmt.Errorf("creating identity account: %w", err)
	}

	st := &Staff{
		ID:            user.ID,
		Email:         in.Email,
		Name:          in.Name,
		Phone:         in.Phone,
		Address:       in.Address,
		Department:    in.Department,
		LicenseNumber: in.LicenseNumber,
		Role:          in.Role,
		Status:        StaffStatusActive,
		Img:           in.Img,
		ColorCode:     randomColor(),
	}

	if err := s.staff.Create(ctx, st); err != nil {
		// Compensate so the orphaned account does not block a retry.
		if delErr := s.idp.DeleteUser(ctx, user.ID); delErr != nil {
			log.Error().Err(delErr).Str("user_id", user.ID).Msg("failed to delete identity account after profile write failure")
		}
		return nil, fmt.Errorf("creating staff profile: %w", err)
	}

	s.auditor.Record(ctx, adminID, st.ID, audit.ActionStaffCreated, map[string]string{"role": st.Role})
	return st, nil
}

// UpdateStaffStatus toggles a staff member between ACTIVE and INACTIVE.
func (s *Service) UpdateStaffStatus(ctx context.Context, staffID, status string) (*Staff, error) {
	if status != StaffStatusActive && status != StaffStatusInactive {
		return nil, fmt.Errorf("status must be %s or %s", StaffStatusActive, StaffStatusInactive)
	}

	st, err := s.staff.GetByID(ctx, staffID)
	if err != nil {
		return nil, fmt.Errorf("staff member not found: %w", err)
	}
	if st.Status == status {
		return st, nil
	}

	st.Status = status
	if err := s.staff.Update(ctx, st); err != nil {
		return nil, fmt.Errorf("updating staff member: %w", err)
	}
	return st, nil
}

func (s *Service) GetStaff(ctx context.Context, id string) (*Staff, error) {
	return s.staff.GetByID(ctx, id)
}

func (s *Service) ListStaff(ctx context.Context, role string, limit, offset int) ([]*Staff, int, error) {
	return s.staff.List(ctx, role, limit, offset)
}

// CreateService adds a billable service to the price list.
func (s *Service) CreateService(ctx context.Context, in *CatalogService) (*CatalogService, error) {
	if err := validateService(in); err != nil {
		return nil, err
	}
	if err := s.services.Create(ctx, in); err != nil {
		return nil, fmt.Errorf("creating service: %w", err)
	}
	return in, nil
}

// UpdateService edits a price list entry. Changes do not touch bill items
// already written from the old price.
func (s *Service) UpdateService(ctx context.Context, id uuid.UUID, in *CatalogService) (*CatalogService, error) {
	if err := validateService(in); err != nil {
		return nil, err
	}
	existing, err := s.services.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service not found: %w", err)
	}
	existing.ServiceName = in.ServiceName
	existing.Description = in.Description
	existing.Price = in.Price
	existing.Category = in.Category
	if err := s.services.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("updating service: %w", err)
	}
	return existing, nil
}

func (s *Service) DeleteService(ctx context.Context, id uuid.UUID) error {
	return s.services.Delete(ctx, id)
}

func (s *Service) GetService(ctx context.Context, id uuid.UUID) (*CatalogService, error) {
	return s.services.GetByID(ctx, id)
}

func (s *Service) ListServices(ctx context.Context, category string, limit, offset int) ([]*CatalogService, int, error) {
	return s.services.List(ctx, category, limit, offset)
}

func validateService(in *CatalogService) error {
	if in.ServiceName == "" {
		return fmt.Errorf("service name is required")
	}
	if in.Price <= 0 {
		return fmt.Errorf("price must be greater than zero")
	}
	return nil
}

// randomColor picks a muted hex color used as the staff member's badge.
func randomColor() string {
	return fmt.Sprintf("#%02x%02x%02x", 64+rand.Intn(128), 64+rand.Intn(128), 64+rand.Intn(128))
}

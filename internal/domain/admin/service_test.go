package admin

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mediland/clinic/internal/platform/identity"
)

type mockStaffRepo struct {
	items     map[string]*Staff
	createErr error
}

func newMockStaffRepo() *mockStaffRepo {
	return &mockStaffRepo{items: make(map[string]*Staff)}
}

func (m *mockStaffRepo) Create(_ context.Context, s *Staff) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.items[s.ID] = s
	return nil
}

func (m *mockStaffRepo) Update(_ context.Context, s *Staff) error {
	if _, ok := m.items[s.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.items[s.ID] = s
	return nil
}

func (m *mockStaffRepo) GetByID(_ context.Context, id string) (*Staff, error) {
	s, ok := m.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return s, nil
}

func (m *mockStaffRepo) List(_ context.Context, role string, limit, offset int) ([]*Staff, int, error) {
	var matched []*Staff
	for _, s := range m.items {
		if role != "" && s.Role != role {
			continue
		}
		matched = append(matched, s)
	}
	return matched, len(matched), nil
}

type mockServiceRepo struct {
	items map[uuid.UUID]*CatalogService
}

func newMockServiceRepo() *mockServiceRepo {
	return &mockServiceRepo{items: make(map[uuid.UUID]*CatalogService)}
}

func (m *mockServiceRepo) Create(_ context.Context, s *CatalogService) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	m.items[s.ID] = s
	return nil
}

func (m *mockServiceRepo) Update(_ context.Context, s *CatalogService) error {
	if _, ok := m.items[s.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.items[s.ID] = s
	return nil
}

func (m *mockServiceRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.items[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.items, id)
	return nil
}

func (m *mockServiceRepo) GetByID(_ context.Context, id uuid.UUID) (*CatalogService, error) {
	s, ok := m.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return s, nil
}

func (m *mockServiceRepo) List(_ context.Context, category string, limit, offset int) ([]*CatalogService, int, error) {
	var matched []*CatalogService
	for _, s := range m.items {
		if category != "" && s.Category != category {
			continue
		}
		matched = append(matched, s)
	}
	return matched, len(matched), nil
}

type mockAuditor struct {
	actions []string
}

func (m *mockAuditor) Record(_ context.Context, userID, recordID, action string, details interface{}) {
	m.actions = append(m.actions, action)
}

func validStaffInput() StaffInput {
	return StaffInput{
		Email:    "nurse@example.com",
		Password: "s3cretpass",
		Name:     "Grace Okafor",
		Phone:    "0700123456",
		Address:  "12 Ward Lane",
		Role:     StaffRoleNurse,
	}
}

func TestCreateStaff_MirrorsIdentityAccount(t *testing.T) {
	staff := newMockStaffRepo()
	idp := identity.NewMock()
	svc := NewService(staff, newMockServiceRepo(), idp, &mockAuditor{})

	st, err := svc.CreateStaff(context.Background(), "admin_1", validStaffInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Status != StaffStatusActive {
		t.Errorf("expected ACTIVE, got %s", st.Status)
	}
	if st.ColorCode == "" {
		t.Error("expected a badge color to be assigned")
	}
	u, ok := idp.Users[st.ID]
	if !ok {
		t.Fatal("expected identity account to be created")
	}
	if u.Role != "staff" {
		t.Errorf("expected staff role in identity provider, got %s", u.Role)
	}
}

func TestCreateStaff_CompensatesIdentityOnProfileFailure(t *testing.T) {
	staff := newMockStaffRepo()
	staff.createErr = errors.New("constraint violation")
	idp := identity.NewMock()
	svc := NewService(staff, newMockServiceRepo(), idp, &mockAuditor{})

	if _, err := svc.CreateStaff(context.Background(), "admin_1", validStaffInput()); err == nil {
		t.Fatal("expected error when profile write fails")
	}
	if len(idp.Users) != 0 {
		t.Error("identity account should have been deleted")
	}
	if len(idp.Deleted) != 1 {
		t.Errorf("expected 1 compensating deletion, got %d", len(idp.Deleted))
	}
}

func TestCreateStaff_InvalidRole(t *testing.T) {
	svc := NewService(newMockStaffRepo(), newMockServiceRepo(), identity.NewMock(), &mockAuditor{})

	in := validStaffInput()
	in.Role = "JANITOR"
	if _, err := svc.CreateStaff(context.Background(), "admin_1", in); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestUpdateStaffStatus(t *testing.T) {
	staff := newMockStaffRepo()
	idp := identity.NewMock()
	svc := NewService(staff, newMockServiceRepo(), idp, &mockAuditor{})

	st, err := svc.CreateStaff(context.Background(), "admin_1", validStaffInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated, err := svc.UpdateStaffStatus(context.Background(), st.ID, StaffStatusInactive)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != StaffStatusInactive {
		t.Errorf("expected INACTIVE, got %s", updated.Status)
	}

	// Same-status transition is a no-op.
	if _, err := svc.UpdateStaffStatus(context.Background(), st.ID, StaffStatusInactive); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.UpdateStaffStatus(context.Background(), st.ID, "SUSPENDED"); err == nil {
		t.Fatal("expected error for invalid status")
	}
}

func TestCreateService_RequiresPositivePrice(t *testing.T) {
	svc := NewService(newMockStaffRepo(), newMockServiceRepo(), identity.NewMock(), &mockAuditor{})

	if _, err := svc.CreateService(context.Background(), &CatalogService{ServiceName: "X-Ray", Price: 0}); err == nil {
		t.Fatal("expected error for zero price")
	}

	created, err := svc.CreateService(context.Background(), &CatalogService{ServiceName: "X-Ray", Price: 120})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Error("expected an id to be assigned")
	}
}

func TestUpdateService_EditsPriceListEntry(t *testing.T) {
	repo := newMockServiceRepo()
	svc := NewService(newMockStaffRepo(), repo, identity.NewMock(), &mockAuditor{})

	created, err := svc.CreateService(context.Background(), &CatalogService{ServiceName: "Consultation", Price: 50, Category: "GENERAL"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated, err := svc.UpdateService(context.Background(), created.ID, &CatalogService{ServiceName: "Consultation", Price: 75, Category: "GENERAL"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Price != 75 {
		t.Errorf("expected price 75, got %v", updated.Price)
	}

	if _, err := svc.UpdateService(context.Background(), uuid.New(), &CatalogService{ServiceName: "Ghost", Price: 10}); err == nil {
		t.Fatal("expected error for unknown service")
	}
}

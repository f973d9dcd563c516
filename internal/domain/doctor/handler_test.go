package doctor

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/mediland/clinic/internal/platform/auth"
	"github.com/mediland/clinic/internal/platform/identity"
	"github.com/mediland/clinic/internal/platform/validate"
)

// newTestServer mounts the doctor routes behind the same middleware chain the
// real server uses, with header-driven identities.
func newTestServer(repo *mockDoctorRepo) *echo.Echo {
	svc := NewService(repo, identity.NewMock(), &mockAuditor{}, &mockNotifier{})
	e := echo.New()
	e.Validator = validate.New()
	e.Use(auth.DevAuthMiddleware())
	api := e.Group("/api/v1")
	api.Use(PendingGate(svc))
	NewHandler(svc).RegisterRoutes(api)
	return e
}

func seedDoctor(repo *mockDoctorRepo, id, status string) {
	repo.items[id] = &Doctor{
		ID:                 id,
		Name:               "Asha Patel",
		Email:              id + "@example.com",
		LicenseNumber:      "LIC-" + id,
		AvailabilityStatus: status,
	}
}

func doRequest(e *echo.Echo, method, path, user, role string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("X-Dev-User", user)
	req.Header.Set("X-Dev-Role", role)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestDoctorRoutes_PatientBrowsesButCannotManage(t *testing.T) {
	repo := newMockDoctorRepo()
	seedDoctor(repo, "doc_1", StatusActive)
	e := newTestServer(repo)

	if rec := doRequest(e, http.MethodGet, "/api/v1/doctors", "pat_1", auth.RolePatient); rec.Code != http.StatusOK {
		t.Errorf("patient should list doctors for booking, got %d", rec.Code)
	}
	if rec := doRequest(e, http.MethodGet, "/api/v1/doctors/doc_1", "pat_1", auth.RolePatient); rec.Code != http.StatusOK {
		t.Errorf("patient should read a doctor profile, got %d", rec.Code)
	}
	if rec := doRequest(e, http.MethodPatch, "/api/v1/doctors/doc_1/approve", "pat_1", auth.RolePatient); rec.Code != http.StatusForbidden {
		t.Errorf("approval must stay admin-only, got %d", rec.Code)
	}
	if rec := doRequest(e, http.MethodPatch, "/api/v1/doctors/doc_1/status", "staff_1", auth.RoleStaff); rec.Code != http.StatusForbidden {
		t.Errorf("status change must stay admin-only, got %d", rec.Code)
	}
}

func TestPendingGate_UnapprovedDoctorSeesOnlyOwnProfile(t *testing.T) {
	repo := newMockDoctorRepo()
	seedDoctor(repo, "doc_new", StatusPending)
	seedDoctor(repo, "doc_other", StatusActive)
	e := newTestServer(repo)

	if rec := doRequest(e, http.MethodGet, "/api/v1/doctors/doc_new", "doc_new", auth.RoleDoctor); rec.Code != http.StatusOK {
		t.Errorf("pending doctor should see own profile, got %d", rec.Code)
	}
	if rec := doRequest(e, http.MethodGet, "/api/v1/doctors", "doc_new", auth.RoleDoctor); rec.Code != http.StatusForbidden {
		t.Errorf("pending doctor should not browse the directory, got %d", rec.Code)
	}
	if rec := doRequest(e, http.MethodGet, "/api/v1/doctors/doc_other", "doc_new", auth.RoleDoctor); rec.Code != http.StatusForbidden {
		t.Errorf("pending doctor should not read other profiles, got %d", rec.Code)
	}
}

func TestPendingGate_ApprovedDoctorUnrestricted(t *testing.T) {
	repo := newMockDoctorRepo()
	seedDoctor(repo, "doc_1", StatusActive)
	e := newTestServer(repo)

	if rec := doRequest(e, http.MethodGet, "/api/v1/doctors", "doc_1", auth.RoleDoctor); rec.Code != http.StatusOK {
		t.Errorf("active doctor should list colleagues, got %d", rec.Code)
	}
}

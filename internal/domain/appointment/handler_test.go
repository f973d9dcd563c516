package appointment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/mediland/clinic/internal/platform/auth"
	"github.com/mediland/clinic/internal/platform/validate"
)

// newTestServer mounts the appointment routes behind the same auth chain the
// real server uses, with header-driven identities.
func newTestServer(f *fixture) *echo.Echo {
	e := echo.New()
	e.Validator = validate.New()
	e.Use(auth.DevAuthMiddleware())
	NewHandler(f.svc).RegisterRoutes(e.Group("/api/v1"))
	return e
}

func statusRequest(id, user, role string) *http.Request {
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/appointments/"+id+"/status",
		strings.NewReader(`{"status":"SCHEDULED"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("X-Dev-User", user)
	req.Header.Set("X-Dev-Role", role)
	return req
}

func TestUpdateStatusRoute_PatientCannotApproveOwnBooking(t *testing.T) {
	f := newFixture()
	a, err := f.svc.Book(context.Background(), validBooking())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e := newTestServer(f)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, statusRequest(a.ID.String(), "pat_1", auth.RolePatient))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for patient, got %d", rec.Code)
	}
	if got := f.repo.items[a.ID].Status; got != StatusPending {
		t.Errorf("appointment should stay PENDING, got %s", got)
	}
}

func TestUpdateStatusRoute_DoctorApproves(t *testing.T) {
	f := newFixture()
	a, err := f.svc.Book(context.Background(), validBooking())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e := newTestServer(f)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, statusRequest(a.ID.String(), "doc_1", auth.RoleDoctor))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for doctor, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := f.repo.items[a.ID].Status; got != StatusScheduled {
		t.Errorf("expected SCHEDULED, got %s", got)
	}
}

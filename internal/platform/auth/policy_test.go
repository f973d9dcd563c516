package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestPolicy_RoleUnions(t *testing.T) {
	contains := func(roles []string, role string) bool {
		for _, r := range roles {
			if r == role {
				return true
			}
		}
		return false
	}

	cases := []struct {
		prefix string
		role   string
		want   bool
	}{
		// The treating doctor bills the visit and writes to the chart.
		{"/billing", RoleDoctor, true},
		// Nurses and lab technicians carry the staff role.
		{"/medical-records", RoleStaff, true},
		// Patients browse doctors when booking.
		{"/doctors", RolePatient, true},
		{"/staff", RoleStaff, false},
		{"/audit-logs", RoleDoctor, false},
	}
	for _, tc := range cases {
		if got := contains(AllowedRoles(tc.prefix), tc.role); got != tc.want {
			t.Errorf("%s on %s: got %v, want %v", tc.role, tc.prefix, got, tc.want)
		}
	}
}

func TestGuard_UnknownPrefixFailsClosed(t *testing.T) {
	e := echo.New()
	handler := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	mw := Guard("/not-in-the-table")

	req := httptest.NewRequest(http.MethodGet, "/not-in-the-table", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	if err := mw(handler)(c); err == nil {
		t.Error("expected rejection for a prefix missing from the policy table")
	}
}

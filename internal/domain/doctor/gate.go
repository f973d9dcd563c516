package doctor

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mediland/clinic/internal/platform/auth"
)

// PendingGate confines doctors whose registration has not been approved yet.
// A PENDING doctor may still read their own profile (their dashboard view)
// but every other API call is rejected until an admin approves them. Other
// roles, and doctors without a profile row, pass through untouched.
func PendingGate(svc *Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			if !gateApplies(auth.RolesFromContext(ctx)) {
				return next(c)
			}

			userID := auth.UserIDFromContext(ctx)
			if userID == "" {
				return next(c)
			}
			// A missing profile row means the token predates registration;
			// the gate only acts on a profile it can see.
			d, err := svc.Get(ctx, userID)
			if err != nil {
				return next(c)
			}
			if d.AvailabilityStatus != StatusPending {
				return next(c)
			}

			if c.Request().Method == http.MethodGet &&
				strings.HasSuffix(c.Path(), "/doctors/:id") &&
				c.Param("id") == userID {
				return next(c)
			}
			return echo.NewHTTPError(http.StatusForbidden, "account pending approval")
		}
	}
}

// gateApplies reports whether the caller holds the doctor role without the
// admin role. Admins are never gated.
func gateApplies(roles []string) bool {
	isDoctor := false
	for _, r := range roles {
		if r == auth.RoleAdmin {
			return false
		}
		if r == auth.RoleDoctor {
			isDoctor = true
		}
	}
	return isDoctor
}

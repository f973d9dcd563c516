package auth

import "github.com/labstack/echo/v4"

// Role names as carried in token claims. Every authenticated user has exactly
// one of these; admin satisfies any role requirement.
const (
	RoleAdmin   = "admin"
	RoleDoctor  = "doctor"
	RoleStaff   = "staff"
	RolePatient = "patient"
)

// policy maps each API route group to the union of roles that may reach any
// route inside it. It is the coarse gate; routes whose operation is narrower
// than the group (approving appointments, recording diagnoses, generating
// bills) stack a per-route RequireRole on top in their handler.
var policy = map[string][]string{
	"/patients":        {RoleAdmin, RoleStaff, RoleDoctor, RolePatient},
	"/doctors":         {RoleAdmin, RoleStaff, RoleDoctor, RolePatient},
	"/appointments":    {RoleAdmin, RoleStaff, RoleDoctor, RolePatient},
	"/medical-records": {RoleAdmin, RoleDoctor, RoleStaff},
	"/billing":         {RoleAdmin, RoleDoctor, RoleStaff},
	"/staff":           {RoleAdmin},
	"/services":        {RoleAdmin, RoleStaff},
	"/notifications":   {RoleAdmin, RoleStaff, RoleDoctor, RolePatient},
	"/audit-logs":      {RoleAdmin},
}

// Guard returns the RequireRole middleware for the given route group prefix.
// Unknown prefixes default to admin-only so a newly added group fails closed
// until it is added to the policy table.
func Guard(prefix string) echo.MiddlewareFunc {
	roles, ok := policy[prefix]
	if !ok {
		roles = []string{RoleAdmin}
	}
	return RequireRole(roles...)
}

// AllowedRoles returns the roles permitted on the given route group prefix.
func AllowedRoles(prefix string) []string {
	return policy[prefix]
}

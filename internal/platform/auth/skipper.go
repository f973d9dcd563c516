package auth

import (
	"github.com/labstack/echo/v4"
)

// publicPaths lists URL paths that should bypass authentication:
// infrastructure endpoints (health checks), the websocket upgrade path
// (which authenticates via query token instead of the Authorization header),
// and doctor self-registration, which necessarily happens before the caller
// has an account.
var publicPaths = map[string]bool{
	"/health":                  true,
	"/health/db":               true,
	"/ws":                      true,
	"/api/v1/doctors/register": true,
}

// AuthSkipper returns true for requests whose path should skip authentication.
// Pass this function as a skipper on JWTMiddleware or DevAuthMiddleware so
// that health-check endpoints remain accessible without a bearer token.
func AuthSkipper(c echo.Context) bool {
	return publicPaths[c.Path()]
}

// IsPublicPath reports whether the given path is a public infrastructure
// endpoint that should bypass auth middleware.
func IsPublicPath(path string) bool {
	return publicPaths[path]
}

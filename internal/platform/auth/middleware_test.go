package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

var testSigningKey = []byte("unit-test-signing-key")

func signToken(t *testing.T, key []byte, subject string, roles []string) string {
	t.Helper()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Roles: roles,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

func TestAuthSkipper_DoctorRegistrationIsPublic(t *testing.T) {
	e := echo.New()
	e.Use(JWTMiddleware(JWTConfig{SigningKey: testSigningKey}, AuthSkipper))
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	e.POST("/api/v1/doctors/register", ok)
	e.GET("/api/v1/patients", ok)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/doctors/register", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("registration must work without a bearer token, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("other routes still require a token, got %d", rec.Code)
	}
}

func TestJWTMiddleware_PopulatesContext(t *testing.T) {
	e := echo.New()
	e.Use(JWTMiddleware(JWTConfig{SigningKey: testSigningKey}))
	e.GET("/whoami", func(c echo.Context) error {
		return c.String(http.StatusOK, UserIDFromContext(c.Request().Context()))
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSigningKey, "doc_1", []string{RoleDoctor}))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "doc_1" {
		t.Errorf("expected subject doc_1, got %q", rec.Body.String())
	}
}

func TestVerifier_RejectsForgedToken(t *testing.T) {
	v := NewVerifier(JWTConfig{SigningKey: testSigningKey})

	claims, err := v.Verify(signToken(t, testSigningKey, "pat_1", []string{RolePatient}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.Subject != "pat_1" {
		t.Errorf("expected subject pat_1, got %q", claims.Subject)
	}

	if _, err := v.Verify(signToken(t, []byte("other-key"), "pat_1", nil)); err == nil {
		t.Error("token signed with another key must not verify")
	}
}

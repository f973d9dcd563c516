package ws

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func upgradeContext(query string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/ws"+query, nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func stubVerifier(t *testing.T) TokenVerifier {
	t.Helper()
	return func(token string) (string, error) {
		if token == "good-token" {
			return "doc_1", nil
		}
		return "", fmt.Errorf("unknown token")
	}
}

func TestResolveUser_VerifierRequired(t *testing.T) {
	h := NewHandler(NewHub(), stubVerifier(t))

	// Naming a user without proving identity must not work.
	if _, err := h.resolveUser(upgradeContext("?user=victim")); err == nil {
		t.Error("expected rejection without a token")
	}
	if _, err := h.resolveUser(upgradeContext("?token=bad-token")); err == nil {
		t.Error("expected rejection of an invalid token")
	}

	userID, err := h.resolveUser(upgradeContext("?token=good-token"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if userID != "doc_1" {
		t.Errorf("expected doc_1, got %q", userID)
	}
}

func TestResolveUser_TokenRejectionStatus(t *testing.T) {
	h := NewHandler(NewHub(), stubVerifier(t))

	_, err := h.resolveUser(upgradeContext("?user=victim"))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestResolveUser_DevFallback(t *testing.T) {
	h := NewHandler(NewHub(), nil)

	userID, err := h.resolveUser(upgradeContext("?user=dev-user"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if userID != "dev-user" {
		t.Errorf("expected dev-user, got %q", userID)
	}
}

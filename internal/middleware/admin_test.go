package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/avelines/gift-registry/internal/utils"
)

const testSecret = "test-jwt-secret"

func runAdminVerdict(t *testing.T, secret, token string, handler echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/v1/gifts", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: AdminCookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	if err := AdminVerdict(secret)(handler)(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	return rec
}

func TestAdminVerdict(t *testing.T) {
	signed, _, err := utils.NewAdminSessionToken(testSecret, "admin@example.com", 7)
	if err != nil {
		t.Fatalf("failed to mint token: %v", err)
	}

	// Valid session.
	runAdminVerdict(t, testSecret, signed, func(c echo.Context) error {
		if !IsAdmin(c) {
			t.Error("valid session should yield admin verdict")
		}
		if got := AdminEmail(c); got != "admin@example.com" {
			t.Errorf("AdminEmail = %q", got)
		}
		return c.NoContent(http.StatusOK)
	})

	// No cookie: a normal visitor, not an error.
	runAdminVerdict(t, testSecret, "", func(c echo.Context) error {
		if IsAdmin(c) {
			t.Error("missing cookie should not yield admin verdict")
		}
		return c.NoContent(http.StatusOK)
	})

	// Token signed with a different secret.
	runAdminVerdict(t, "some-other-secret", signed, func(c echo.Context) error {
		if IsAdmin(c) {
			t.Error("foreign signature should not yield admin verdict")
		}
		return c.NoContent(http.StatusOK)
	})

	// Garbage token.
	runAdminVerdict(t, testSecret, "not-a-jwt", func(c echo.Context) error {
		if IsAdmin(c) {
			t.Error("garbage token should not yield admin verdict")
		}
		return c.NoContent(http.StatusOK)
	})
}

func TestRequireAdmin(t *testing.T) {
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	// Without a verdict the chain stops with a 401.
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/gifts", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	if err := RequireAdmin()(next)(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}

	// With a verdict the request passes through.
	req = httptest.NewRequest(http.MethodPost, "/v1/admin/gifts", nil)
	rec = httptest.NewRecorder()
	c = echo.New().NewContext(req, rec)
	c.Set(CtxIsAdmin, true)
	if err := RequireAdmin()(next)(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

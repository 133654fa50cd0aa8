package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func runVisitor(t *testing.T, cookie *http.Cookie, handler echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/v1/gifts", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	if err := VisitorIdentity(false)(handler)(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	return rec
}

func visitorCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == VisitorCookieName {
			return ck
		}
	}
	return nil
}

// An existing identity passes through unchanged and is never re-set:
// rotating it would orphan the visitor's claims.
func TestVisitorIdentityPassThrough(t *testing.T) {
	existing := uuid.NewString()
	rec := runVisitor(t, &http.Cookie{Name: VisitorCookieName, Value: existing}, func(c echo.Context) error {
		if got := VisitorID(c); got != existing {
			t.Errorf("VisitorID = %q, want %q", got, existing)
		}
		if VisitorIsNew(c) {
			t.Error("existing identity flagged as new")
		}
		PersistVisitor(c)
		return c.NoContent(http.StatusOK)
	})
	if ck := visitorCookie(rec); ck != nil {
		t.Errorf("existing identity must not be re-set, got cookie %+v", ck)
	}
}

// A fresh identity is minted when no cookie is present, but only
// persisted when the handler asks for it.
func TestVisitorIdentityMint(t *testing.T) {
	var minted string
	rec := runVisitor(t, nil, func(c echo.Context) error {
		minted = VisitorID(c)
		if _, err := uuid.Parse(minted); err != nil {
			t.Errorf("minted identity %q is not a UUID: %v", minted, err)
		}
		if !VisitorIsNew(c) {
			t.Error("minted identity not flagged as new")
		}
		PersistVisitor(c)
		return c.NoContent(http.StatusOK)
	})

	ck := visitorCookie(rec)
	if ck == nil {
		t.Fatal("expected visitor cookie after PersistVisitor")
	}
	if ck.Value != minted {
		t.Errorf("cookie value %q != minted identity %q", ck.Value, minted)
	}
	if !ck.HttpOnly || ck.SameSite != http.SameSiteStrictMode || ck.Path != "/" {
		t.Errorf("cookie attributes wrong: %+v", ck)
	}
	if ck.MaxAge != 365*24*60*60 {
		t.Errorf("cookie max-age = %d, want one year", ck.MaxAge)
	}
}

// A browser that only reads never receives a cookie.
func TestVisitorIdentityReadOnlyRequest(t *testing.T) {
	rec := runVisitor(t, nil, func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if ck := visitorCookie(rec); ck != nil {
		t.Errorf("no cookie should be set without PersistVisitor, got %+v", ck)
	}
}

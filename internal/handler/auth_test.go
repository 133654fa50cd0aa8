package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/avelines/gift-registry/internal/middleware"
	"github.com/avelines/gift-registry/internal/repository"
	"github.com/avelines/gift-registry/internal/testutil"
	"github.com/avelines/gift-registry/internal/utils"
)

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == middleware.AdminCookieName {
			return ck
		}
	}
	return nil
}

// TestLoginDoesNotRevealAdmins: unknown emails get the same generic
// success as allow-listed ones, and no token is issued for them.
func TestLoginDoesNotRevealAdmins(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	h := NewAuthHandler(testutil.TestConfig(), repository.NewOTPTokenRepo(db))

	c, rec := testutil.NewContext(t, http.MethodPost, "/v1/auth/login",
		map[string]interface{}{"email": "stranger@example.com"}, "alice", false)
	if err := h.Login(c); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	testutil.AssertStatus(t, rec, http.StatusOK)

	var tokens int
	if err := db.QueryRow(`SELECT COUNT(*) FROM otp_tokens`).Scan(&tokens); err != nil {
		t.Fatalf("failed to count tokens: %v", err)
	}
	if tokens != 0 {
		t.Errorf("no token should be issued for unknown emails, found %d", tokens)
	}

	// Not even shaped like an email.
	c, rec = testutil.NewContext(t, http.MethodPost, "/v1/auth/login",
		map[string]interface{}{"email": "nope"}, "alice", false)
	if err := h.Login(c); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	testutil.AssertStatus(t, rec, http.StatusBadRequest)
}

// TestLoginWithoutSMTP: for an allow-listed email the token is stored,
// but a missing mailer configuration is surfaced as an error so the
// admin knows no link is coming.
func TestLoginWithoutSMTP(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	t.Setenv("SMTP_HOST", "")

	h := NewAuthHandler(testutil.TestConfig(), repository.NewOTPTokenRepo(db))

	c, rec := testutil.NewContext(t, http.MethodPost, "/v1/auth/login",
		map[string]interface{}{"email": "Admin@Example.com"}, "alice", false)
	if err := h.Login(c); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	testutil.AssertStatus(t, rec, http.StatusInternalServerError)

	var email string
	if err := db.QueryRow(`SELECT email FROM otp_tokens`).Scan(&email); err != nil {
		t.Fatalf("expected a stored token: %v", err)
	}
	if email != "admin@example.com" {
		t.Errorf("token stored for %q, want lower-cased admin@example.com", email)
	}
}

// TestVerifyFlow runs the happy path and the single-use guarantee: the
// first redemption sets a session cookie, the second bounces.
func TestVerifyFlow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.TestConfig()
	tokens := repository.NewOTPTokenRepo(db)
	h := NewAuthHandler(cfg, tokens)

	token := uuid.NewString()
	expires := time.Now().UTC().Add(15 * time.Minute)
	if err := tokens.Create(context.Background(), "admin@example.com", token, expires); err != nil {
		t.Fatalf("failed to create token: %v", err)
	}

	c, rec := testutil.NewContext(t, http.MethodGet, "/v1/auth/verify?token="+token, nil, "alice", false)
	if err := h.Verify(c); err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	testutil.AssertStatus(t, rec, http.StatusFound)
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "login=success") {
		t.Errorf("expected success redirect, got %q", loc)
	}
	ck := sessionCookie(t, rec)
	if ck == nil {
		t.Fatal("expected admin session cookie to be set")
	}
	sess, err := utils.ParseAdminSession(cfg.JWTSecret, ck.Value)
	if err != nil {
		t.Fatalf("session cookie does not verify: %v", err)
	}
	if sess.Email != "admin@example.com" {
		t.Errorf("session email = %q", sess.Email)
	}

	// Second redemption of the same link fails.
	c, rec = testutil.NewContext(t, http.MethodGet, "/v1/auth/verify?token="+token, nil, "alice", false)
	if err := h.Verify(c); err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	testutil.AssertStatus(t, rec, http.StatusFound)
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "error=invalid_token") {
		t.Errorf("expected invalid_token redirect, got %q", loc)
	}
	if sessionCookie(t, rec) != nil {
		t.Error("no cookie should be set on a failed redemption")
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	tokens := repository.NewOTPTokenRepo(db)
	h := NewAuthHandler(testutil.TestConfig(), tokens)

	token := uuid.NewString()
	expired := time.Now().UTC().Add(-1 * time.Minute)
	if err := tokens.Create(context.Background(), "admin@example.com", token, expired); err != nil {
		t.Fatalf("failed to create token: %v", err)
	}

	c, rec := testutil.NewContext(t, http.MethodGet, "/v1/auth/verify?token="+token, nil, "alice", false)
	if err := h.Verify(c); err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "error=invalid_token") {
		t.Errorf("expected invalid_token redirect for expired token, got %q", loc)
	}
}

func TestPasswordLogin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	tokens := repository.NewOTPTokenRepo(db)

	// Disabled without a configured hash.
	h := NewAuthHandler(testutil.TestConfig(), tokens)
	c, rec := testutil.NewContext(t, http.MethodPost, "/v1/auth/password",
		map[string]interface{}{"password": "anything"}, "alice", false)
	if err := h.PasswordLogin(c); err != nil {
		t.Fatalf("PasswordLogin returned error: %v", err)
	}
	testutil.AssertStatus(t, rec, http.StatusNotFound)

	hash, err := utils.HashPassword("open-sesame", 4)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	cfg := testutil.TestConfig()
	cfg.AdminPasswordHash = hash
	h = NewAuthHandler(cfg, tokens)

	c, rec = testutil.NewContext(t, http.MethodPost, "/v1/auth/password",
		map[string]interface{}{"password": "wrong"}, "alice", false)
	if err := h.PasswordLogin(c); err != nil {
		t.Fatalf("PasswordLogin returned error: %v", err)
	}
	testutil.AssertStatus(t, rec, http.StatusUnauthorized)

	c, rec = testutil.NewContext(t, http.MethodPost, "/v1/auth/password",
		map[string]interface{}{"password": "open-sesame"}, "alice", false)
	if err := h.PasswordLogin(c); err != nil {
		t.Fatalf("PasswordLogin returned error: %v", err)
	}
	testutil.AssertStatus(t, rec, http.StatusOK)
	ck := sessionCookie(t, rec)
	if ck == nil {
		t.Fatal("expected admin session cookie after password login")
	}
	if sess, err := utils.ParseAdminSession(cfg.JWTSecret, ck.Value); err != nil || sess.Email != "admin@example.com" {
		t.Errorf("session = %+v, err = %v", sess, err)
	}
}

func TestMeAndLogout(t *testing.T) {
	// Neither endpoint touches storage, so no database is needed.
	h := NewAuthHandler(testutil.TestConfig(), repository.NewOTPTokenRepo(nil))

	c, rec := testutil.NewContext(t, http.MethodGet, "/v1/auth/me", nil, "alice", false)
	if err := h.Me(c); err != nil {
		t.Fatalf("Me returned error: %v", err)
	}
	var body map[string]interface{}
	testutil.DecodeJSON(t, rec, &body)
	if body["is_admin"] != false {
		t.Errorf("expected is_admin false, got %v", body)
	}

	c, rec = testutil.NewContext(t, http.MethodGet, "/v1/auth/me", nil, "admin-visitor", true)
	c.Set(middleware.CtxAdminEmail, "admin@example.com")
	if err := h.Me(c); err != nil {
		t.Fatalf("Me returned error: %v", err)
	}
	body = nil
	testutil.DecodeJSON(t, rec, &body)
	if body["is_admin"] != true || body["email"] != "admin@example.com" {
		t.Errorf("unexpected me body: %v", body)
	}

	c, rec = testutil.NewContext(t, http.MethodPost, "/v1/auth/logout", nil, "admin-visitor", true)
	if err := h.Logout(c); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	ck := sessionCookie(t, rec)
	if ck == nil || ck.MaxAge != -1 {
		t.Errorf("expected expiring session cookie, got %+v", ck)
	}
}

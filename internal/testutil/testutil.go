package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"

	"github.com/avelines/gift-registry/internal/config"
	"github.com/avelines/gift-registry/internal/database"
	"github.com/avelines/gift-registry/internal/middleware"
)

// DefaultTestDSN is the connection string for the test database.  It can
// be overridden with TEST_DB_DSN.
const DefaultTestDSN = "root@tcp(127.0.0.1:3306)/gift_registry_test?parseTime=true&loc=UTC"

// SetupTestDB opens the test database, wipes it and recreates the full
// schema.  Tests that need a database are skipped when none is
// reachable, so the pure-logic tests still run anywhere.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		dsn = DefaultTestDSN
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		t.Skipf("test database unreachable: %v", err)
	}

	// Children before parents, so the FK never blocks the wipe.
	for _, tbl := range []string{"toggles", "visitor_logs", "otp_tokens", "settings", "gifts"} {
		if _, err := db.Exec("DROP TABLE IF EXISTS " + tbl); err != nil {
			t.Fatalf("failed to drop %s: %v", tbl, err)
		}
	}
	if err := database.EnsureSchema(db); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	return db
}

// TestConfig returns a standard test configuration.
func TestConfig() config.Config {
	return config.Config{
		Env:            "test",
		Port:           "0",
		AppURL:         "http://localhost:8080",
		JWTSecret:      "test-jwt-secret",
		AdminTTLDays:   7,
		OTPTTLMin:      15,
		AdminEmails:    []string{"admin@example.com"},
		AbuseThreshold: 12,
	}
}

// CreateTestGift inserts a gift and returns its ID.
func CreateTestGift(t *testing.T, db *sql.DB, title string) uint64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO gifts (title) VALUES (?)`, title)
	if err != nil {
		t.Fatalf("failed to create test gift: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("failed to read gift id: %v", err)
	}
	return uint64(id)
}

// ClaimGift marks a gift as bought by the given visitor, bypassing the
// protocol.  Used to arrange claim state for tests.
func ClaimGift(t *testing.T, db *sql.DB, giftID uint64, visitorID string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO toggles (gift_id, visitor_id, bought) VALUES (?, ?, 1)
		ON DUPLICATE KEY UPDATE bought = 1`, giftID, visitorID)
	if err != nil {
		t.Fatalf("failed to claim gift: %v", err)
	}
}

// ActiveClaimant returns the visitor holding a gift's bought row, or ""
// when the gift is unclaimed.
func ActiveClaimant(t *testing.T, db *sql.DB, giftID uint64) string {
	t.Helper()
	var v string
	err := db.QueryRow(`SELECT visitor_id FROM toggles WHERE gift_id = ? AND bought = 1`, giftID).Scan(&v)
	if err == sql.ErrNoRows {
		return ""
	}
	if err != nil {
		t.Fatalf("failed to read active claim: %v", err)
	}
	return v
}

// NewContext builds an Echo context for a handler call, pre-populated
// the way the visitor and admin middlewares would leave it.  body of
// nil means an empty request.
func NewContext(t *testing.T, method, path string, body interface{}, visitorID string, isAdmin bool) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.Set(middleware.CtxVisitorID, visitorID)
	c.Set(middleware.CtxVisitorNew, false)
	c.Set(middleware.CtxIsAdmin, isAdmin)
	return c, rec
}

// AssertStatus checks that the response has the expected status code.
func AssertStatus(t *testing.T, rec *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if rec.Code != expected {
		t.Errorf("expected status %d, got %d, body: %s", expected, rec.Code, rec.Body.String())
	}
}

// DecodeJSON decodes the response body into v.
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode JSON response: %v", err)
	}
}

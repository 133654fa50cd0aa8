package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-jwt-secret"

func TestAdminSessionRoundTrip(t *testing.T) {
	signed, exp, err := NewAdminSessionToken(testSecret, "admin@example.com", 7)
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if until := time.Until(exp); until < 6*24*time.Hour || until > 8*24*time.Hour {
		t.Errorf("expiry %v is not about 7 days out", exp)
	}

	sess, err := ParseAdminSession(testSecret, signed)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if sess.Email != "admin@example.com" {
		t.Errorf("email = %q", sess.Email)
	}
	if !sess.Exp.Equal(exp.Truncate(time.Second)) {
		t.Errorf("exp = %v, want %v", sess.Exp, exp.Truncate(time.Second))
	}
}

func TestAdminSessionRejections(t *testing.T) {
	signed, _, err := NewAdminSessionToken(testSecret, "admin@example.com", 7)
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	sign := func(claims jwt.MapClaims) string {
		t.Helper()
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		if err != nil {
			t.Fatalf("sign failed: %v", err)
		}
		return s
	}
	future := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name string
		raw  string
	}{
		{"wrong secret", func() string {
			s, _, _ := NewAdminSessionToken("other-secret", "admin@example.com", 7)
			return s
		}()},
		{"garbage", "definitely.not.a-jwt"},
		{"expired", sign(jwt.MapClaims{
			"sub": "admin@example.com", "type": "admin",
			"exp": time.Now().Add(-time.Hour).Unix(),
		})},
		{"wrong type marker", sign(jwt.MapClaims{
			"sub": "admin@example.com", "type": "refresh", "exp": future,
		})},
		{"missing subject", sign(jwt.MapClaims{
			"type": "admin", "exp": future,
		})},
		{"truncated signature", signed[:len(signed)-4]},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseAdminSession(testSecret, tc.raw); !errors.Is(err, ErrSessionInvalid) {
				t.Errorf("expected ErrSessionInvalid, got %v", err)
			}
		})
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("open-sesame", 4)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if !VerifyPassword(hash, "open-sesame") {
		t.Error("correct password rejected")
	}
	if VerifyPassword(hash, "wrong") {
		t.Error("wrong password accepted")
	}
	if VerifyPassword("not-a-bcrypt-hash", "open-sesame") {
		t.Error("malformed hash accepted")
	}
}

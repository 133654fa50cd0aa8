package utils // package utils provides helpers for admin session tokens and hashing

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// AdminSession is the verified content of an admin session token.  The
// claim protocol only consumes the yes/no admin verdict; Email is kept
// for audit logging and the /auth/me endpoint.
type AdminSession struct {
	Email string    // email the one-time login link was issued for
	Exp   time.Time // UTC expiration time of the session
}

// sessionType marks admin session tokens so a token minted for any
// other purpose can never pass the admin check.
const sessionType = "admin"

// ErrSessionInvalid is returned by ParseAdminSession for any token that
// fails signature, expiry, or type checks.  Callers treat it as "not an
// admin" rather than an error worth surfacing.
var ErrSessionInvalid = errors.New("admin session invalid")

// NewAdminSessionToken builds and signs an HS256 JWT for a verified
// admin email.  The token carries the email as subject, a type marker
// distinguishing admin sessions from anything else, and standard
// exp/iat claims.  TTL is expressed in days to match the cookie the
// token travels in.
func NewAdminSessionToken(secret, email string, ttlDays int) (string, time.Time, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour)
	claims := jwt.MapClaims{
		"sub":  email,
		"type": sessionType,
		"exp":  exp.Unix(),
		"iat":  time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// ParseAdminSession verifies a token string and returns the session it
// carries.  Verification requires an HMAC signature with the given
// secret, an unexpired exp claim (enforced by the library), and the
// admin type marker.  Any failure returns ErrSessionInvalid.
func ParseAdminSession(secret, raw string) (AdminSession, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrSessionInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return AdminSession{}, ErrSessionInvalid
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return AdminSession{}, ErrSessionInvalid
	}
	if typ, _ := claims["type"].(string); typ != sessionType {
		return AdminSession{}, ErrSessionInvalid
	}
	email, _ := claims["sub"].(string)
	if email == "" {
		return AdminSession{}, ErrSessionInvalid
	}
	var exp time.Time
	if e, err := claims.GetExpirationTime(); err == nil && e != nil {
		exp = e.Time
	}
	return AdminSession{Email: email, Exp: exp}, nil
}

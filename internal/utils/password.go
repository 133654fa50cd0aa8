package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword returns a bcrypt hash of the break-glass admin password
// using the given cost.  Only used by setup tooling; the server itself
// just verifies.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares a bcrypt hash and a plain password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

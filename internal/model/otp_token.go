package model

import "time"

// OTPToken is a single-use, time-boxed login code tied to an admin
// email address.  A token is consumed exactly once: verification
// flips Used to true in the same statement that checks validity.
//
// Fields:
//  ID        – primary key identifier.
//  Email     – admin email the token was issued for.
//  Token     – opaque random token embedded in the emailed login link.
//  ExpiresAt – expiry timestamp (about 15 minutes after issuance).
//  Used      – true once the token has been redeemed.
//  CreatedAt – creation timestamp.
type OTPToken struct {
	ID        uint64    // otp_tokens.id
	Email     string    // otp_tokens.email
	Token     string    // otp_tokens.token
	ExpiresAt time.Time // otp_tokens.expires_at
	Used      bool      // otp_tokens.used
	CreatedAt time.Time // otp_tokens.created_at
}

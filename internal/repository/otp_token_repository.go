package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/avelines/gift-registry/internal/model"
)

// OTPTokenRepo stores the single-use login tokens that back the emailed
// admin login links.  Tokens are consumed atomically: Consume flips the
// used flag in the same statement that checks validity, so a link
// clicked twice (or raced from two tabs) redeems exactly once.
type OTPTokenRepo struct {
	db *sql.DB
}

// NewOTPTokenRepo returns a new OTPTokenRepo bound to the provided database.
func NewOTPTokenRepo(db *sql.DB) *OTPTokenRepo { return &OTPTokenRepo{db: db} }

// Create stores a freshly issued token for the given email with the
// given expiry.  The token value itself is generated by the caller
// (a UUID) and must be unique; the column's unique key backs that up.
func (r *OTPTokenRepo) Create(ctx context.Context, email, token string, expiresAt time.Time) error {
	const q = `INSERT INTO otp_tokens (email, token, expires_at, used)
			   VALUES (?, ?, ?, 0)`
	_, err := r.db.ExecContext(ctx, q, email, token, expiresAt.UTC().Format("2006-01-02 15:04:05"))
	return err
}

// Consume redeems a token and returns the email it was issued for.  A
// token redeems only when it exists, has not expired and has not been
// used; all three failures collapse into ErrTokenInvalid so callers
// cannot distinguish them.  The conditional UPDATE is the serialization
// point – whichever request flips used first wins, everyone else sees
// zero affected rows.
func (r *OTPTokenRepo) Consume(ctx context.Context, token string) (string, error) {
	const q = `UPDATE otp_tokens
			   SET used = 1
			   WHERE token = ? AND used = 0 AND expires_at > UTC_TIMESTAMP()`
	res, err := r.db.ExecContext(ctx, q, token)
	if err != nil {
		return "", err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", ErrTokenInvalid
	}
	var email string
	if err := r.db.QueryRowContext(ctx, `SELECT email FROM otp_tokens WHERE token = ?`, token).Scan(&email); err != nil {
		return "", err
	}
	return email, nil
}

// GetByToken returns the stored record for a token, mainly for tests
// and diagnostics.  Returns ErrTokenInvalid when the token is unknown.
func (r *OTPTokenRepo) GetByToken(ctx context.Context, token string) (*model.OTPToken, error) {
	const q = `SELECT id, email, token, expires_at, used, created_at FROM otp_tokens WHERE token = ?`
	var t model.OTPToken
	err := r.db.QueryRowContext(ctx, q, token).Scan(&t.ID, &t.Email, &t.Token, &t.ExpiresAt, &t.Used, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrTokenInvalid
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// PurgeExpired removes tokens whose expiry has passed.  Called
// opportunistically from the login handler; the table stays tiny either
// way since links are issued only to the admin allow-list.
func (r *OTPTokenRepo) PurgeExpired(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM otp_tokens WHERE expires_at <= UTC_TIMESTAMP()`)
	return err
}

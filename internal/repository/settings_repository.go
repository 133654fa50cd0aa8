package repository

import (
	"context"
	"database/sql"

	"github.com/avelines/gift-registry/internal/model"
)

// SettingsRepo stores app-level key/value settings.  The server
// currently consults a single key, read_only_mode, before any
// mutation; unknown keys are stored verbatim for forward
// compatibility.
type SettingsRepo struct {
	db *sql.DB
}

// NewSettingsRepo returns a new SettingsRepo bound to the provided database.
func NewSettingsRepo(db *sql.DB) *SettingsRepo { return &SettingsRepo{db: db} }

// Get returns the value stored under key.  The second return value
// reports whether the key exists at all.
func (r *SettingsRepo) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE `key` = ?", key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Set upserts a key/value pair.
func (r *SettingsRepo) Set(ctx context.Context, key, value string) error {
	const q = "INSERT INTO settings (`key`, value) VALUES (?, ?)" +
		" ON DUPLICATE KEY UPDATE value = VALUES(value), updated_at = UTC_TIMESTAMP()"
	_, err := r.db.ExecContext(ctx, q, key, value)
	return err
}

// ReadOnly reports whether the registry is in read-only mode.  A
// missing key means writable; lookup errors also report writable so a
// settings hiccup cannot lock everyone out, and the caller decides
// whether to log the error.
func (r *SettingsRepo) ReadOnly(ctx context.Context) (bool, error) {
	v, ok, err := r.Get(ctx, model.ReadOnlyModeKey)
	if err != nil || !ok {
		return false, err
	}
	return v == "true", nil
}

package repository

import (
	"context"
	"database/sql"
)

// GiftRepo provides CRUD access to the gifts table.  Catalog writes are
// rare and human-paced (a single admin), so plain statements are enough;
// the only place gifts participate in contended work is LockTx, which
// turns the gift row into the serialization point for claim transitions.
type GiftRepo struct {
	db *sql.DB
}

// NewGiftRepo returns a new GiftRepo bound to the provided database.
func NewGiftRepo(db *sql.DB) *GiftRepo { return &GiftRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// that span the gift and toggle repositories.
func (r *GiftRepo) DB() *sql.DB { return r.db }

// giftColumns is the scan order shared by every query in this file.
const giftColumns = `id, title, note, url, image_url, image_focal_x, image_focal_y, created_at`

// GiftRecord mirrors the gifts table schema.  Nullable columns use sql
// null wrappers; ToModel converts to the pointer-based model type used
// by handlers.
type GiftRecord struct {
	ID          uint64
	Title       string
	Note        sql.NullString
	URL         sql.NullString
	ImageURL    sql.NullString
	ImageFocalX sql.NullFloat64
	ImageFocalY sql.NullFloat64
	CreatedAt   sql.NullTime
}

// GiftFields carries the writable columns for create and update
// operations.  Nil pointers mean "store NULL".
type GiftFields struct {
	Title       string
	Note        *string
	URL         *string
	ImageURL    *string
	ImageFocalX *float64
	ImageFocalY *float64
}

func scanGift(row interface{ Scan(...any) error }) (*GiftRecord, error) {
	var g GiftRecord
	if err := row.Scan(&g.ID, &g.Title, &g.Note, &g.URL, &g.ImageURL,
		&g.ImageFocalX, &g.ImageFocalY, &g.CreatedAt); err != nil {
		return nil, err
	}
	return &g, nil
}

// Create inserts a new gift and returns the stored row, including the
// generated ID and database-assigned creation timestamp.  Title
// validation happens in the handler; the repository stores what it is
// given.
func (r *GiftRepo) Create(ctx context.Context, f GiftFields) (*GiftRecord, error) {
	const q = `INSERT INTO gifts (title, note, url, image_url, image_focal_x, image_focal_y)
			   VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, f.Title, f.Note, f.URL, f.ImageURL, f.ImageFocalX, f.ImageFocalY)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID returns a single gift.  It returns ErrGiftNotFound when no
// row exists for the given ID.
func (r *GiftRepo) GetByID(ctx context.Context, id uint64) (*GiftRecord, error) {
	const q = `SELECT ` + giftColumns + ` FROM gifts WHERE id = ?`
	g, err := scanGift(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrGiftNotFound
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Update overwrites the writable columns of an existing gift and
// returns the stored row.  It returns ErrGiftNotFound when the gift
// does not exist.  CreatedAt is never touched.
func (r *GiftRepo) Update(ctx context.Context, id uint64, f GiftFields) (*GiftRecord, error) {
	const q = `UPDATE gifts
			   SET title = ?, note = ?, url = ?, image_url = ?, image_focal_x = ?, image_focal_y = ?
			   WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, f.Title, f.Note, f.URL, f.ImageURL, f.ImageFocalX, f.ImageFocalY, id)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// UPDATE reports zero rows both for a missing gift and for a
		// no-op write of identical values, so confirm existence.
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes a gift and, via DeleteTx, all toggles referencing it.
// The image URL of the deleted gift is returned so the caller can clean
// up the stored asset; file-already-gone is non-fatal and is the
// caller's concern.  Returns ErrGiftNotFound when the gift is absent.
func (r *GiftRepo) Delete(ctx context.Context, id uint64) (imageURL *string, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	img, err := r.DeleteTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return img, nil
}

// DeleteTx performs the cascading delete within an existing
// transaction.  Toggles are removed explicitly before the gift row even
// though the schema declares ON DELETE CASCADE, so the invariant does
// not depend on how a particular deployment created its tables.
func (r *GiftRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) (*string, error) {
	var img sql.NullString
	err := tx.QueryRowContext(ctx, `SELECT image_url FROM gifts WHERE id = ? FOR UPDATE`, id).Scan(&img)
	if err == sql.ErrNoRows {
		return nil, ErrGiftNotFound
	}
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM toggles WHERE gift_id = ?`, id); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM gifts WHERE id = ?`, id); err != nil {
		return nil, err
	}
	if img.Valid {
		v := img.String
		return &v, nil
	}
	return nil, nil
}

// ListAll returns every gift ordered by newest creation first.  The
// registry is one household's list, so a full scan is fine and no
// pagination is offered.  An empty slice is returned when there are no
// gifts.
func (r *GiftRepo) ListAll(ctx context.Context) ([]GiftRecord, error) {
	const q = `SELECT ` + giftColumns + ` FROM gifts ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	gifts := make([]GiftRecord, 0)
	for rows.Next() {
		g, err := scanGift(rows)
		if err != nil {
			return nil, err
		}
		gifts = append(gifts, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return gifts, nil
}

// LockTx takes the per-gift row lock that serializes claim transitions.
// Every claim or release for a gift must pass through here inside its
// transaction before reading toggle state, so two concurrent requests
// for the same gift cannot both observe "unclaimed".  Returns
// ErrGiftNotFound when the gift does not exist, which doubles as the
// protocol's existence check.
func (r *GiftRepo) LockTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	var got uint64
	err := tx.QueryRowContext(ctx, `SELECT id FROM gifts WHERE id = ? FOR UPDATE`, id).Scan(&got)
	if err == sql.ErrNoRows {
		return ErrGiftNotFound
	}
	return err
}

package repository

import (
	"context"
	"database/sql"

	"github.com/avelines/gift-registry/internal/model"
)

// ToggleRepo provides data access to the toggles table – the claim
// ledger.  It is a dumb, constraint-enforcing store: the Tx methods
// assume the caller already holds the per-gift lock taken by
// GiftRepo.LockTx, and the decision of whether a write is allowed
// belongs to the claim protocol in the handler layer.  The unique key
// on (gift_id, visitor_id) guarantees at most one row per visitor per
// gift; the per-gift lock guarantees at most one bought row per gift.
type ToggleRepo struct {
	db *sql.DB
}

// NewToggleRepo returns a new ToggleRepo bound to the provided database.
func NewToggleRepo(db *sql.DB) *ToggleRepo { return &ToggleRepo{db: db} }

const toggleColumns = `id, gift_id, visitor_id, bought, created_at`

func scanToggle(row interface{ Scan(...any) error }) (*model.Toggle, error) {
	var t model.Toggle
	if err := row.Scan(&t.ID, &t.GiftID, &t.VisitorID, &t.Bought, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// GetActiveClaimTx returns the single bought=true row for the gift, or
// nil when the gift is unclaimed.  Must run inside the transaction that
// holds the gift's row lock.
func (r *ToggleRepo) GetActiveClaimTx(ctx context.Context, tx *sql.Tx, giftID uint64) (*model.Toggle, error) {
	const q = `SELECT ` + toggleColumns + ` FROM toggles WHERE gift_id = ? AND bought = 1 LIMIT 1`
	t, err := scanToggle(tx.QueryRowContext(ctx, q, giftID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// GetClaimForTx returns the requesting visitor's own row for the gift
// regardless of the bought flag, or nil when none exists.
func (r *ToggleRepo) GetClaimForTx(ctx context.Context, tx *sql.Tx, giftID uint64, visitorID string) (*model.Toggle, error) {
	const q = `SELECT ` + toggleColumns + ` FROM toggles WHERE gift_id = ? AND visitor_id = ? LIMIT 1`
	t, err := scanToggle(tx.QueryRowContext(ctx, q, giftID, visitorID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// SetClaimedTx upserts the (gift, visitor) row with bought=1.  The
// ON DUPLICATE KEY branch absorbs the case where the same visitor has a
// leftover bought=0 row from an earlier release path.  Callers must
// have established via the claim protocol that no other visitor holds
// an active claim.
func (r *ToggleRepo) SetClaimedTx(ctx context.Context, tx *sql.Tx, giftID uint64, visitorID string) error {
	const q = `INSERT INTO toggles (gift_id, visitor_id, bought)
			   VALUES (?, ?, 1)
			   ON DUPLICATE KEY UPDATE bought = 1`
	_, err := tx.ExecContext(ctx, q, giftID, visitorID)
	return err
}

// ClearClaimTx deletes the active claim row for a gift, modelling
// "unclaimed" as row absence.  Deleting all rows for the gift is
// deliberate: stale bought=0 leftovers serve no purpose once the gift
// returns to the unclaimed state.
func (r *ToggleRepo) ClearClaimTx(ctx context.Context, tx *sql.Tx, giftID uint64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM toggles WHERE gift_id = ?`, giftID)
	return err
}

// ActiveClaims returns the bought=true row for every claimed gift,
// keyed by gift ID.  It backs the public listing, which decorates each
// gift with bought/boughtBy/canToggle in one pass instead of querying
// per gift.
func (r *ToggleRepo) ActiveClaims(ctx context.Context) (map[uint64]model.Toggle, error) {
	const q = `SELECT ` + toggleColumns + ` FROM toggles WHERE bought = 1`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	claims := make(map[uint64]model.Toggle)
	for rows.Next() {
		t, err := scanToggle(rows)
		if err != nil {
			return nil, err
		}
		claims[t.GiftID] = *t
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return claims, nil
}

// GetActiveClaim is the non-transactional read of a gift's active
// claim, for callers that only need a point-in-time answer (tests,
// admin inspection).  It verifies the gift exists so deleted gifts
// report ErrGiftNotFound rather than "unclaimed".
func (r *ToggleRepo) GetActiveClaim(ctx context.Context, giftID uint64) (*model.Toggle, error) {
	var exists uint64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM gifts WHERE id = ?`, giftID).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, ErrGiftNotFound
	}
	if err != nil {
		return nil, err
	}
	const q = `SELECT ` + toggleColumns + ` FROM toggles WHERE gift_id = ? AND bought = 1 LIMIT 1`
	t, err := scanToggle(r.db.QueryRowContext(ctx, q, giftID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

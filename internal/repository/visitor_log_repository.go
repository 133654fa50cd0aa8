package repository

import (
	"context"
	"database/sql"
	"time"
)

// VisitorLogRepo tracks unique daily visitors for the advisory abuse
// guard.  Recording is idempotent per (visitor, day): the unique key on
// those columns turns repeat visits into an interaction-count bump
// instead of a second row, so the distinct-visitor count never double
// counts.  Nothing in this repository is allowed to fail a claim – the
// caller swallows and logs every error.
type VisitorLogRepo struct {
	db *sql.DB
}

// NewVisitorLogRepo returns a new VisitorLogRepo bound to the provided database.
func NewVisitorLogRepo(db *sql.DB) *VisitorLogRepo { return &VisitorLogRepo{db: db} }

// Record registers one claim-affecting interaction from a visitor
// today.  First sight of the visitor creates the row with the request
// origin; later sights only bump the interaction count.
func (r *VisitorLogRepo) Record(ctx context.Context, visitorID, ip string) error {
	const q = `INSERT INTO visitor_logs (visitor_id, ip, visit_date, interaction_count)
			   VALUES (?, ?, ?, 1)
			   ON DUPLICATE KEY UPDATE interaction_count = interaction_count + 1`
	_, err := r.db.ExecContext(ctx, q, visitorID, ip, day(time.Now()))
	return err
}

// CountUniqueToday returns the number of distinct visitors seen today
// (UTC).  The abuse guard compares this against its threshold after
// every recorded interaction.
func (r *VisitorLogRepo) CountUniqueToday(ctx context.Context) (int, error) {
	const q = `SELECT COUNT(*) FROM visitor_logs WHERE visit_date = ?`
	var n int
	if err := r.db.QueryRowContext(ctx, q, day(time.Now())).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// InteractionsFor returns today's interaction count for a visitor, or
// zero when the visitor has not been seen today.
func (r *VisitorLogRepo) InteractionsFor(ctx context.Context, visitorID string) (uint32, error) {
	const q = `SELECT interaction_count FROM visitor_logs WHERE visitor_id = ? AND visit_date = ?`
	var n uint32
	err := r.db.QueryRowContext(ctx, q, visitorID, day(time.Now())).Scan(&n)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}

// day formats a timestamp as the UTC calendar date stored in
// visitor_logs.visit_date.
func day(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

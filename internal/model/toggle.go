package model

import "time"

// Toggle records one visitor's claim on one gift.  A gift counts as
// bought when any toggle row for it carries Bought=true; the claimant
// is that row's VisitorID.  The canonical "not bought" state is row
// absence – releasing a claim deletes the row rather than flipping
// the flag.
//
// Fields:
//  ID        – primary key identifier.
//  GiftID    – gift being claimed.
//  VisitorID – opaque visitor identity (UUID from the visitor cookie).
//  Bought    – true while the claim is active.
//  CreatedAt – creation timestamp.
//
// At most one row exists per (GiftID, VisitorID) pair; the database
// enforces this with a unique key.  At most one row per gift may have
// Bought=true – that invariant is enforced by the claim protocol,
// which serializes transitions per gift.
type Toggle struct {
	ID        uint64    // toggles.id
	GiftID    uint64    // toggles.gift_id
	VisitorID string    // toggles.visitor_id
	Bought    bool      // toggles.bought
	CreatedAt time.Time // toggles.created_at
}

package model

import "time"

// VisitorLog tracks one visitor's activity for a single day.  It
// backs the advisory abuse guard: unique rows per (visitor, day) make
// counting distinct daily visitors cheap, and InteractionCount grows
// on repeat visits without affecting uniqueness.
//
// Fields:
//  ID               – primary key identifier.
//  VisitorID        – visitor identity (UUID from the visitor cookie).
//  IP               – request origin address at first sight that day.
//  VisitDate        – calendar day (UTC) of the visits.
//  InteractionCount – number of claim-affecting requests that day.
type VisitorLog struct {
	ID               uint64    // visitor_logs.id
	VisitorID        string    // visitor_logs.visitor_id
	IP               string    // visitor_logs.ip
	VisitDate        time.Time // visitor_logs.visit_date
	InteractionCount uint32    // visitor_logs.interaction_count
}

// Package queue defines message payloads exchanged over the message broker.
package queue

// AbuseAlertEvent is published when the number of distinct visitors
// seen today crosses the configured threshold.  It carries enough for
// downstream consumers to log or notify without querying the primary
// database.  The guard is advisory only: nothing consumes these events
// to block traffic.
type AbuseAlertEvent struct {
	Day            string `json:"day"`             // UTC calendar date, YYYY-MM-DD
	UniqueVisitors int    `json:"unique_visitors"` // distinct visitors seen that day
	Threshold      int    `json:"threshold"`       // configured alert threshold
	VisitorID      string `json:"visitor_id"`      // visitor whose interaction tripped the check
	IP             string `json:"ip"`              // origin address of that interaction
	ObservedAt     string `json:"observed_at"`     // RFC3339 timestamp of the observation
}

package model

import "time"

// Setting is an app-level key/value pair.  The only key the server
// currently reacts to is "read_only_mode": when its value is "true"
// all claim and catalog mutations are refused until the admin turns
// it off again.
type Setting struct {
	ID        uint64    // settings.id
	Key       string    // settings.key
	Value     string    // settings.value
	UpdatedAt time.Time // settings.updated_at
}

// ReadOnlyModeKey is the settings key consulted before any mutation.
const ReadOnlyModeKey = "read_only_mode"

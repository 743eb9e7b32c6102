package domain

import "time"

// ActivityLogCap is the maximum number of entries kept in the activity log.
// The log is newest-first; the oldest entry is evicted past the cap.
const ActivityLogCap = 50

// ActivityEntry is one append-only record of a completed automation run.
// Entries are observational only: the engine writes them and never reads
// them back.
type ActivityEntry struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Summary   string    `json:"summary"`
	Details   string    `json:"details,omitempty"`
}

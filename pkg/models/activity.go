package models

import "time"

// Fetch event sources recorded in the activity log.
const (
	SourceCache    = "cache"
	SourceLive     = "live"
	SourceFixture  = "fixture"
	SourceDisabled = "disabled"
)

// FetchEvent is one recorded fetch for the activity log. The credential is
// never part of an event.
type FetchEvent struct {
	ID        int64     `json:"id,omitempty"`
	SessionID string    `json:"session_id"`
	Kind      string    `json:"kind"`
	Query     string    `json:"query,omitempty"`
	Source    string    `json:"source"`
	Cost      int       `json:"cost"`
	Forced    bool      `json:"forced"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ActivityStat aggregates fetch events for one kind on one day.
type ActivityStat struct {
	Kind    string `json:"kind"`
	Day     string `json:"day"`
	Fetches int64  `json:"fetches"`
	Cost    int64  `json:"cost"`
}

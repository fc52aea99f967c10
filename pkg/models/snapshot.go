package models

import "time"

// Snapshot is the durable state of one session: cached payloads, the credit
// ledger and any generated documents. Mode and credential are deliberately
// absent; they are re-established on every run and never stored. AccountFP
// is a one-way hash naming the account the cached entries were fetched
// under, or "" for fixture data.
type Snapshot struct {
	SessionID string        `json:"session_id"`
	AccountFP string        `json:"account_fp,omitempty"`
	Entries   []CacheEntry  `json:"entries"`
	Ledger    []LedgerEntry `json:"ledger"`
	Plan      *WeeklyPlan   `json:"plan,omitempty"`
	Brief     *Brief        `json:"brief,omitempty"`
	SavedAt   time.Time     `json:"saved_at"`
}

package models

import "time"

// CacheEntry is one cached fetch result with its retrieval time.
type CacheEntry struct {
	Key       FetchKey  `json:"key"`
	Payload   Payload   `json:"payload"`
	FetchedAt time.Time `json:"fetched_at"`
}

// LedgerEntry records one credit charge for a successful live fetch.
type LedgerEntry struct {
	Kind      ResourceKind `json:"kind"`
	Cost      int          `json:"cost"`
	ChargedAt time.Time    `json:"charged_at"`
}

// CacheStats summarizes session cache activity.
type CacheStats struct {
	Entries int64 `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// HitRate returns the percentage of lookups served from cache.
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

package credits

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/contentcompass/compass/pkg/models"
)

// ErrUnknownResourceKind is returned when a resource kind has no configured
// cost. Hitting it indicates a programming error in the caller, never bad
// user input.
var ErrUnknownResourceKind = errors.New("unknown resource kind")

// costs maps each resource kind to its credit price per live fetch.
var costs = map[models.ResourceKind]int{
	models.KindTrends:   1000,
	models.KindHashtags: 10,
	models.KindVideos:   100,
	models.KindNiches:   50,
}

// CostOf returns the credit price of one live fetch of kind.
func CostOf(kind models.ResourceKind) (int, error) {
	cost, ok := costs[kind]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownResourceKind, kind)
	}
	return cost, nil
}

// Estimate sums the price of one live fetch of each given kind.
func Estimate(kinds []models.ResourceKind) (int, error) {
	total := 0
	for _, kind := range kinds {
		cost, err := CostOf(kind)
		if err != nil {
			return 0, err
		}
		total += cost
	}
	return total, nil
}

// Ledger is an append-only record of credit charges. Entries are kept in
// charge order and are never mutated or removed; the running total always
// equals the sum of the entries.
type Ledger struct {
	mu      sync.Mutex
	entries []models.LedgerEntry
	total   int
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Charge appends one entry for kind and returns the new running total.
func (l *Ledger) Charge(kind models.ResourceKind) (int, error) {
	cost, err := CostOf(kind)
	if err != nil {
		return 0, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, models.LedgerEntry{
		Kind:      kind,
		Cost:      cost,
		ChargedAt: time.Now().UTC(),
	})
	l.total += cost
	return l.total, nil
}

// RunningTotal returns the sum of all charges so far.
func (l *Ledger) RunningTotal() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total
}

// History returns a copy of all charges in the order they were made.
func (l *Ledger) History() []models.LedgerEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := make([]models.LedgerEntry, len(l.entries))
	copy(entries, l.entries)
	return entries
}

// Restore replaces the ledger contents with previously saved entries and
// recomputes the running total from them.
func (l *Ledger) Restore(entries []models.LedgerEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = make([]models.LedgerEntry, len(entries))
	copy(l.entries, entries)
	l.total = 0
	for _, e := range entries {
		l.total += e.Cost
	}
}

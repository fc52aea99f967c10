package store

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/contentcompass/compass/pkg/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "compass.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleSnapshot() *models.Snapshot {
	now := time.Now().UTC()
	return &models.Snapshot{
		SessionID: "11111111-2222-3333-4444-555555555555",
		AccountFP: "abcdef0123456789",
		Entries: []models.CacheEntry{
			{
				Key:       models.NewFetchKey(models.KindTrends, nil),
				Payload:   models.Payload{Results: 2, Data: json.RawMessage(`[{"trends":[]}]`)},
				FetchedAt: now,
			},
			{
				Key:       models.NewFetchKey(models.KindHashtags, models.Params{"limit": "50"}),
				Payload:   models.Payload{Results: 1, Data: json.RawMessage(`[{"hashtag":"#fyp"}]`)},
				FetchedAt: now,
			},
		},
		Ledger: []models.LedgerEntry{
			{Kind: models.KindTrends, Cost: 1000, ChargedAt: now},
			{Kind: models.KindHashtags, Cost: 10, ChargedAt: now},
		},
		Plan: &models.WeeklyPlan{
			Niche:    "tech",
			Platform: "TikTok",
			Ideas:    []models.Idea{{Day: "Monday", Trend: "Silent Vlogging"}},
		},
		Brief: &models.Brief{
			TrendName:    "Silent Vlogging",
			Niche:        "tech",
			PreparedDate: "2025-06-02",
		},
		SavedAt: now,
	}
}

func TestLoadSnapshotEmpty(t *testing.T) {
	s := newTestStore(t)

	snap, err := s.LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if snap != nil {
		t.Errorf("LoadSnapshot on fresh store = %+v, want nil", snap)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	saved := sampleSnapshot()

	if err := s.SaveSnapshot(saved); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	got, err := s.LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if got == nil {
		t.Fatal("LoadSnapshot returned nil after save")
	}

	if got.SessionID != saved.SessionID {
		t.Errorf("SessionID = %q, want %q", got.SessionID, saved.SessionID)
	}
	if got.AccountFP != saved.AccountFP {
		t.Errorf("AccountFP = %q, want %q", got.AccountFP, saved.AccountFP)
	}
	if len(got.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(got.Entries))
	}
	for i, entry := range got.Entries {
		if !entry.Key.Kind.Valid() {
			t.Errorf("entries[%d].Key.Kind = %q is not valid", i, entry.Key.Kind)
		}
	}
	if len(got.Ledger) != 2 {
		t.Fatalf("got %d ledger entries, want 2", len(got.Ledger))
	}
	if got.Ledger[0].Kind != models.KindTrends || got.Ledger[0].Cost != 1000 {
		t.Errorf("ledger[0] = %+v, want trends/1000", got.Ledger[0])
	}
	if got.Plan == nil || got.Plan.Niche != "tech" {
		t.Errorf("Plan = %+v, want niche tech", got.Plan)
	}
	if got.Brief == nil || got.Brief.TrendName != "Silent Vlogging" {
		t.Errorf("Brief = %+v, want Silent Vlogging", got.Brief)
	}
}

func TestRoundTripPreservesKeyAndPayload(t *testing.T) {
	s := newTestStore(t)
	key := models.NewFetchKey(models.KindVideos, models.Params{"limit": "10", "niche": "Fitness"})
	payload := models.Payload{Results: 1, Data: json.RawMessage(`[{"type":"tiktok","views":12000}]`)}

	err := s.SaveSnapshot(&models.Snapshot{
		SessionID: "s1",
		Entries:   []models.CacheEntry{{Key: key, Payload: payload, FetchedAt: time.Now().UTC()}},
		SavedAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	got, err := s.LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if len(got.Entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(got.Entries))
	}
	entry := got.Entries[0]
	if entry.Key != key {
		t.Errorf("restored key = %v, want %v", entry.Key, key)
	}
	if string(entry.Payload.Data) != string(payload.Data) {
		t.Errorf("restored payload = %s, want %s", entry.Payload.Data, payload.Data)
	}
	if entry.FetchedAt.IsZero() {
		t.Error("restored FetchedAt is zero")
	}
}

func TestSaveReplacesPrevious(t *testing.T) {
	s := newTestStore(t)

	if err := s.SaveSnapshot(sampleSnapshot()); err != nil {
		t.Fatalf("first save: %v", err)
	}
	second := &models.Snapshot{
		SessionID: "99999999-0000-0000-0000-000000000000",
		Ledger:    []models.LedgerEntry{{Kind: models.KindVideos, Cost: 100, ChargedAt: time.Now().UTC()}},
		SavedAt:   time.Now().UTC(),
	}
	if err := s.SaveSnapshot(second); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := s.LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if got.SessionID != second.SessionID {
		t.Errorf("SessionID = %q, want %q", got.SessionID, second.SessionID)
	}
	if len(got.Entries) != 0 {
		t.Errorf("got %d entries, want 0 after replacement", len(got.Entries))
	}
	if len(got.Ledger) != 1 {
		t.Errorf("got %d ledger entries, want 1", len(got.Ledger))
	}
	if got.Plan != nil || got.Brief != nil {
		t.Error("plan or brief survived replacement")
	}
}

func TestLedgerOrderSurvivesRoundTrip(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC()
	// Same timestamp on purpose: order must come from insertion, not time.
	kinds := []models.ResourceKind{
		models.KindTrends, models.KindHashtags, models.KindHashtags, models.KindVideos,
	}
	snap := &models.Snapshot{SessionID: "s1", SavedAt: now}
	for _, kind := range kinds {
		snap.Ledger = append(snap.Ledger, models.LedgerEntry{Kind: kind, Cost: 1, ChargedAt: now})
	}

	if err := s.SaveSnapshot(snap); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	got, err := s.LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if len(got.Ledger) != len(kinds) {
		t.Fatalf("got %d ledger entries, want %d", len(got.Ledger), len(kinds))
	}
	for i, entry := range got.Ledger {
		if entry.Kind != kinds[i] {
			t.Errorf("ledger[%d].Kind = %s, want %s", i, entry.Kind, kinds[i])
		}
	}
}

func TestReset(t *testing.T) {
	s := newTestStore(t)
	if err := s.SaveSnapshot(sampleSnapshot()); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	if err := s.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	snap, err := s.LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if snap != nil {
		t.Errorf("LoadSnapshot after reset = %+v, want nil", snap)
	}
}

func TestReopenKeepsSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "compass.db")

	s, err := New(path)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	if err := s.SaveSnapshot(sampleSnapshot()); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	reopened, err := New(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	snap, err := reopened.LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if snap == nil || len(snap.Entries) != 2 {
		t.Fatalf("reopened snapshot = %+v, want 2 entries", snap)
	}
}

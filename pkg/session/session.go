package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/contentcompass/compass/pkg/cache"
	"github.com/contentcompass/compass/pkg/credits"
	"github.com/contentcompass/compass/pkg/models"
	"github.com/contentcompass/compass/pkg/store"
)

// RemoteFetcher retrieves live payloads from the upstream API.
type RemoteFetcher interface {
	Fetch(ctx context.Context, kind models.ResourceKind, params models.Params, credential string) (models.Payload, error)
}

// FixtureSource serves bundled demo payloads.
type FixtureSource interface {
	Payload(kind models.ResourceKind) (models.Payload, error)
}

// Recorder receives fetch events for the activity log.
type Recorder interface {
	Record(ctx context.Context, ev models.FetchEvent) error
}

var errNoRemote = errors.New("no remote fetcher configured")

// FetchError reports a failed live fetch. LastKnown carries the most recent
// cached entry for the same key, if any, so callers can fall back to stale
// data instead of showing nothing.
type FetchError struct {
	Kind      models.ResourceKind
	Err       error
	LastKnown *models.CacheEntry
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Session ties together the mode controller, payload cache, credit ledger
// and data sources for one user session. Every state transition runs under
// the session mutex, so a credit charge and its cache write always land
// together and concurrent fetches serialize.
type Session struct {
	mu sync.Mutex

	id        string
	ctrl      *Controller
	cache     *cache.Cache
	ledger    *credits.Ledger
	accountFP string

	remote   RemoteFetcher
	fixtures FixtureSource
	store    store.Store
	rec      Recorder
	log      *zap.Logger

	disabled map[models.ResourceKind]bool
	plan     *models.WeeklyPlan
	brief    *models.Brief
}

// New builds a session in demo mode. st and rec may be nil for ephemeral
// sessions. When st holds a previously saved snapshot it is restored before
// the session is returned, so cache, ledger and generated documents carry
// over between runs.
func New(remote RemoteFetcher, fixtures FixtureSource, st store.Store, rec Recorder, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{
		id:       uuid.NewString(),
		ctrl:     NewController(),
		cache:    cache.New(),
		ledger:   credits.NewLedger(),
		remote:   remote,
		fixtures: fixtures,
		store:    st,
		rec:      rec,
		log:      logger,
		disabled: make(map[models.ResourceKind]bool),
	}

	if st != nil {
		snap, err := st.LoadSnapshot()
		if err != nil {
			return nil, fmt.Errorf("load snapshot: %w", err)
		}
		if snap != nil {
			s.id = snap.SessionID
			s.accountFP = snap.AccountFP
			s.cache.Restore(snap.Entries)
			s.ledger.Restore(snap.Ledger)
			s.plan = snap.Plan
			s.brief = snap.Brief
			logger.Debug("session restored",
				zap.String("session_id", s.id),
				zap.Int("entries", len(snap.Entries)),
				zap.Int("charges", len(snap.Ledger)))
		}
	}
	return s, nil
}

// SetMode switches the session mode. Entering live mode validates the
// credential and drops the cache whenever the effective account changes,
// which includes moving from demo fixtures to any live account. Switching
// to demo keeps the cache so previously fetched data stays browsable for
// free.
func (s *Session) SetMode(mode models.Mode, credential string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ctrl.SetMode(mode, credential); err != nil {
		return err
	}

	if mode == models.ModeLive {
		fp := s.ctrl.fingerprint()
		if s.accountFP != fp {
			s.cache.InvalidateAll()
			s.log.Info("cache invalidated", zap.String("reason", "account changed"))
		}
		s.accountFP = fp
	} else {
		s.accountFP = ""
	}
	s.persist()
	return nil
}

// Fetch returns the payload for kind. Cache hits are free regardless of
// mode. On a miss, demo mode serves bundled fixtures at zero cost and live
// mode calls the remote API, charging credits exactly once per successful
// call before the result is cached. force bypasses the hit check and always
// re-fetches, re-charging in live mode.
func (s *Session) Fetch(ctx context.Context, kind models.ResourceKind, params models.Params, force bool) (models.Payload, error) {
	if !kind.Valid() {
		return models.Payload{}, fmt.Errorf("fetch: %w: %q", credits.ErrUnknownResourceKind, kind)
	}
	key := models.NewFetchKey(kind, params)

	// The lock spans the remote call: a successful fetch is always charged
	// and cached before any other fetch observes the session.
	s.mu.Lock()
	defer s.mu.Unlock()

	if !force {
		if entry, ok := s.cache.Get(key); ok {
			s.record(ctx, key, models.SourceCache, 0, force, nil)
			s.log.Debug("cache hit", zap.String("key", key.String()))
			return entry.Payload, nil
		}
	}

	if s.disabled[kind] {
		s.record(ctx, key, models.SourceDisabled, 0, force, nil)
		s.log.Debug("endpoint disabled", zap.String("kind", string(kind)))
		return models.EmptyPayload(), nil
	}

	if s.ctrl.ResolveSource(kind).Origin == OriginFixture {
		payload, err := s.fixtures.Payload(kind)
		if err != nil {
			return models.Payload{}, fmt.Errorf("load fixture %s: %w", kind, err)
		}
		s.cache.Put(key, payload)
		s.persist()
		s.record(ctx, key, models.SourceFixture, 0, force, nil)
		s.log.Debug("fixture served", zap.String("key", key.String()))
		return payload, nil
	}

	var payload models.Payload
	var err error
	if s.remote == nil {
		err = errNoRemote
	} else {
		payload, err = s.remote.Fetch(ctx, kind, params, s.ctrl.credential())
	}
	if err != nil {
		ferr := &FetchError{Kind: kind, Err: err}
		if prev, ok := s.cache.Peek(key); ok {
			ferr.LastKnown = &prev
		}
		s.record(ctx, key, models.SourceLive, 0, force, err)
		s.log.Warn("live fetch failed", zap.String("key", key.String()), zap.Error(err))
		return models.Payload{}, ferr
	}

	total, err := s.ledger.Charge(kind)
	if err != nil {
		return models.Payload{}, fmt.Errorf("charge %s: %w", kind, err)
	}
	s.cache.Put(key, payload)
	s.persist()

	cost, _ := credits.CostOf(kind)
	s.record(ctx, key, models.SourceLive, cost, force, nil)
	s.log.Info("live fetch charged",
		zap.String("key", key.String()),
		zap.Int("cost", cost),
		zap.Int("total", total))
	return payload, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Mode returns the current mode.
func (s *Session) Mode() models.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.CurrentMode()
}

// HasCredential reports whether a live credential is loaded.
func (s *Session) HasCredential() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.HasCredential()
}

// ResolveSource reports where a fetch for kind would be served from.
func (s *Session) ResolveSource(kind models.ResourceKind) Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.ResolveSource(kind)
}

// CreditsUsed returns the running credit total for this session.
func (s *Session) CreditsUsed() int {
	return s.ledger.RunningTotal()
}

// History returns every credit charge in the order it was made.
func (s *Session) History() []models.LedgerEntry {
	return s.ledger.History()
}

// CacheStats returns cache entry and hit counters.
func (s *Session) CacheStats() models.CacheStats {
	return s.cache.Stats()
}

// CacheEntries returns the cached entries sorted by key.
func (s *Session) CacheEntries() []models.CacheEntry {
	return s.cache.Entries()
}

// InvalidateCache empties the cache without touching the ledger.
func (s *Session) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.InvalidateAll()
	s.persist()
}

// SetEnabled toggles fetching for kind. Fetches of a disabled kind return
// an empty payload without charging or caching.
func (s *Session) SetEnabled(kind models.ResourceKind, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disabled[kind] = !enabled
}

// Enabled reports whether kind is fetchable.
func (s *Session) Enabled(kind models.ResourceKind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.disabled[kind]
}

// EnabledKinds returns the enabled resource kinds in display order.
func (s *Session) EnabledKinds() []models.ResourceKind {
	s.mu.Lock()
	defer s.mu.Unlock()

	var kinds []models.ResourceKind
	for _, kind := range models.AllKinds() {
		if !s.disabled[kind] {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}

// Plan returns the stored weekly plan, or nil when none was generated.
func (s *Session) Plan() *models.WeeklyPlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plan
}

// SetPlan stores a generated weekly plan.
func (s *Session) SetPlan(plan *models.WeeklyPlan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plan = plan
	s.persist()
}

// ClearPlan removes the stored weekly plan.
func (s *Session) ClearPlan() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plan = nil
	s.persist()
}

// Brief returns the stored content brief, or nil when none was generated.
func (s *Session) Brief() *models.Brief {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.brief
}

// SetBrief stores a generated content brief.
func (s *Session) SetBrief(brief *models.Brief) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.brief = brief
	s.persist()
}

// ClearBrief removes the stored content brief.
func (s *Session) ClearBrief() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.brief = nil
	s.persist()
}

// Reset discards all session state: new id, empty cache, zeroed ledger, no
// plan or brief. The durable snapshot is wiped as well. Mode and credential
// survive, so a live session stays live.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.id = uuid.NewString()
	s.cache = cache.New()
	s.ledger = credits.NewLedger()
	s.plan = nil
	s.brief = nil
	s.accountFP = s.ctrl.fingerprint()

	if s.store != nil {
		if err := s.store.Reset(); err != nil {
			return fmt.Errorf("reset store: %w", err)
		}
	}
	s.persist()
	s.log.Info("session reset", zap.String("session_id", s.id))
	return nil
}

// persist saves the current snapshot. Failures are logged, not returned;
// the in-memory session stays authoritative.
func (s *Session) persist() {
	if s.store == nil {
		return
	}
	if err := s.store.SaveSnapshot(s.snapshotLocked()); err != nil {
		s.log.Warn("save snapshot failed", zap.Error(err))
	}
}

// snapshotLocked assembles the durable state. Callers must hold s.mu.
func (s *Session) snapshotLocked() *models.Snapshot {
	return &models.Snapshot{
		SessionID: s.id,
		AccountFP: s.accountFP,
		Entries:   s.cache.Entries(),
		Ledger:    s.ledger.History(),
		Plan:      s.plan,
		Brief:     s.brief,
		SavedAt:   time.Now().UTC(),
	}
}

// record emits one fetch event to the activity log, when one is configured.
func (s *Session) record(ctx context.Context, key models.FetchKey, source string, cost int, forced bool, ferr error) {
	if s.rec == nil {
		return
	}
	ev := models.FetchEvent{
		SessionID: s.id,
		Kind:      string(key.Kind),
		Query:     key.Query,
		Source:    source,
		Cost:      cost,
		Forced:    forced,
		CreatedAt: time.Now().UTC(),
	}
	if ferr != nil {
		ev.Error = ferr.Error()
	}
	if err := s.rec.Record(ctx, ev); err != nil {
		s.log.Warn("record fetch event failed", zap.Error(err))
	}
}

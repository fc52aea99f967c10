package audit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/contentcompass/compass/pkg/models"
)

const createEventsTable = `
CREATE TABLE IF NOT EXISTS fetch_events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	kind TEXT NOT NULL,
	query TEXT NOT NULL DEFAULT '',
	source TEXT NOT NULL,
	cost INTEGER NOT NULL DEFAULT 0,
	forced INTEGER NOT NULL DEFAULT 0,
	error TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL
);`

const createEventsIndex = `
CREATE INDEX IF NOT EXISTS idx_fetch_events_created ON fetch_events(created_at);`

// Recorder appends fetch events to the activity log and answers queries
// over it. Events describe fetches only; credentials are never part of one.
type Recorder struct {
	db *sql.DB
}

// New opens or creates the activity database at dbPath.
func New(dbPath string) (*Recorder, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open activity db: %w", err)
	}
	r := &Recorder{db: db}
	if err := r.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Recorder) migrate() error {
	if _, err := r.db.Exec(createEventsTable); err != nil {
		return fmt.Errorf("migrate activity db: %w", err)
	}
	if _, err := r.db.Exec(createEventsIndex); err != nil {
		return fmt.Errorf("index activity db: %w", err)
	}
	return nil
}

// Record appends one fetch event.
func (r *Recorder) Record(ctx context.Context, ev models.FetchEvent) error {
	created := ev.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO fetch_events (session_id, kind, query, source, cost, forced, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.SessionID, ev.Kind, ev.Query, ev.Source, ev.Cost, ev.Forced, ev.Error, created,
	)
	if err != nil {
		return fmt.Errorf("record fetch event: %w", err)
	}
	return nil
}

// QueryOpts filters activity queries. Zero values mean no filter.
type QueryOpts struct {
	Kind      string
	Source    string
	SessionID string
	Since     time.Time
	Limit     int
}

// Query returns matching events, newest first. Limit defaults to 50.
func (r *Recorder) Query(ctx context.Context, opts QueryOpts) ([]models.FetchEvent, error) {
	q := "SELECT id, session_id, kind, query, source, cost, forced, error, created_at FROM fetch_events"
	var conds []string
	var args []any

	if opts.Kind != "" {
		conds = append(conds, "kind = ?")
		args = append(args, opts.Kind)
	}
	if opts.Source != "" {
		conds = append(conds, "source = ?")
		args = append(args, opts.Source)
	}
	if opts.SessionID != "" {
		conds = append(conds, "session_id = ?")
		args = append(args, opts.SessionID)
	}
	if !opts.Since.IsZero() {
		conds = append(conds, "created_at >= ?")
		args = append(args, opts.Since.UTC())
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY id DESC LIMIT ?"

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query activity: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []models.FetchEvent
	for rows.Next() {
		var ev models.FetchEvent
		if err := rows.Scan(&ev.ID, &ev.SessionID, &ev.Kind, &ev.Query, &ev.Source,
			&ev.Cost, &ev.Forced, &ev.Error, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan fetch event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity: %w", err)
	}
	return events, nil
}

// Stats aggregates events by kind and day, newest day first.
func (r *Recorder) Stats(ctx context.Context) ([]models.ActivityStat, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT kind, date(created_at) AS day, COUNT(*) AS fetches, COALESCE(SUM(cost), 0) AS cost
		FROM fetch_events
		GROUP BY kind, day
		ORDER BY day DESC, kind`)
	if err != nil {
		return nil, fmt.Errorf("query activity stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var stats []models.ActivityStat
	for rows.Next() {
		var st models.ActivityStat
		if err := rows.Scan(&st.Kind, &st.Day, &st.Fetches, &st.Cost); err != nil {
			return nil, fmt.Errorf("scan activity stat: %w", err)
		}
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity stats: %w", err)
	}
	return stats, nil
}

// Cleanup removes events older than retention and returns how many were
// deleted.
func (r *Recorder) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)
	res, err := r.db.ExecContext(ctx, "DELETE FROM fetch_events WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup activity: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("cleanup rows affected: %w", err)
	}
	return deleted, nil
}

// Close closes the underlying database.
func (r *Recorder) Close() error {
	return r.db.Close()
}

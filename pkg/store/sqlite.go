package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/contentcompass/compass/pkg/models"
)

const createSessionTable = `
CREATE TABLE IF NOT EXISTS session (
	id TEXT PRIMARY KEY,
	account_fp TEXT NOT NULL DEFAULT '',
	saved_at DATETIME NOT NULL
);`

const createCacheTable = `
CREATE TABLE IF NOT EXISTS cache_entries (
	key TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	query TEXT NOT NULL DEFAULT '',
	payload BLOB NOT NULL,
	fetched_at DATETIME NOT NULL
);`

const createLedgerTable = `
CREATE TABLE IF NOT EXISTS ledger_entries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	kind TEXT NOT NULL,
	cost INTEGER NOT NULL,
	charged_at DATETIME NOT NULL
);`

const createDocumentsTable = `
CREATE TABLE IF NOT EXISTS documents (
	name TEXT PRIMARY KEY,
	body BLOB NOT NULL,
	updated_at DATETIME NOT NULL
);`

// Document names in the documents table.
const (
	docPlan  = "weekly_plan"
	docBrief = "brief"
)

// SQLiteStore is the SQLite-backed Store implementation.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// New opens or creates the snapshot database at dbPath.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open snapshot db: %w", err)
	}
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	tables := []string{createSessionTable, createCacheTable, createLedgerTable, createDocumentsTable}
	for _, stmt := range tables {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate snapshot db: %w", err)
		}
	}
	return nil
}

// SaveSnapshot atomically replaces the stored snapshot with snap.
func (s *SQLiteStore) SaveSnapshot(snap *models.Snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	clears := []string{
		"DELETE FROM session",
		"DELETE FROM cache_entries",
		"DELETE FROM ledger_entries",
		"DELETE FROM documents",
	}
	for _, stmt := range clears {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("clear snapshot: %w", err)
		}
	}

	if _, err := tx.Exec(
		"INSERT INTO session (id, account_fp, saved_at) VALUES (?, ?, ?)",
		snap.SessionID, snap.AccountFP, snap.SavedAt.UTC(),
	); err != nil {
		return fmt.Errorf("save session row: %w", err)
	}

	for _, entry := range snap.Entries {
		payload, err := json.Marshal(entry.Payload)
		if err != nil {
			return fmt.Errorf("encode payload %s: %w", entry.Key.String(), err)
		}
		if _, err := tx.Exec(
			"INSERT INTO cache_entries (key, kind, query, payload, fetched_at) VALUES (?, ?, ?, ?, ?)",
			entry.Key.String(), string(entry.Key.Kind), entry.Key.Query, payload, entry.FetchedAt.UTC(),
		); err != nil {
			return fmt.Errorf("save cache entry %s: %w", entry.Key.String(), err)
		}
	}

	for _, entry := range snap.Ledger {
		if _, err := tx.Exec(
			"INSERT INTO ledger_entries (kind, cost, charged_at) VALUES (?, ?, ?)",
			string(entry.Kind), entry.Cost, entry.ChargedAt.UTC(),
		); err != nil {
			return fmt.Errorf("save ledger entry: %w", err)
		}
	}

	if snap.Plan != nil {
		if err := saveDocument(tx, docPlan, snap.Plan); err != nil {
			return err
		}
	}
	if snap.Brief != nil {
		if err := saveDocument(tx, docBrief, snap.Brief); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

func saveDocument(tx *sql.Tx, name string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", name, err)
	}
	if _, err := tx.Exec(
		"INSERT INTO documents (name, body, updated_at) VALUES (?, ?, ?)",
		name, body, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("save document %s: %w", name, err)
	}
	return nil
}

// LoadSnapshot returns the stored snapshot, or nil when none was saved yet.
func (s *SQLiteStore) LoadSnapshot() (*models.Snapshot, error) {
	snap := &models.Snapshot{}
	err := s.db.QueryRow("SELECT id, account_fp, saved_at FROM session").
		Scan(&snap.SessionID, &snap.AccountFP, &snap.SavedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session row: %w", err)
	}

	if snap.Entries, err = s.loadEntries(); err != nil {
		return nil, err
	}
	if snap.Ledger, err = s.loadLedger(); err != nil {
		return nil, err
	}
	if err = s.loadDocuments(snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *SQLiteStore) loadEntries() ([]models.CacheEntry, error) {
	rows, err := s.db.Query("SELECT kind, query, payload, fetched_at FROM cache_entries ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("load cache entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []models.CacheEntry
	for rows.Next() {
		var kind, query string
		var payload []byte
		var fetchedAt time.Time
		if err := rows.Scan(&kind, &query, &payload, &fetchedAt); err != nil {
			return nil, fmt.Errorf("scan cache entry: %w", err)
		}
		var p models.Payload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("decode payload for %s: %w", kind, err)
		}
		entries = append(entries, models.CacheEntry{
			Key:       models.FetchKey{Kind: models.ResourceKind(kind), Query: query},
			Payload:   p,
			FetchedAt: fetchedAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cache entries: %w", err)
	}
	return entries, nil
}

func (s *SQLiteStore) loadLedger() ([]models.LedgerEntry, error) {
	rows, err := s.db.Query("SELECT kind, cost, charged_at FROM ledger_entries ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("load ledger entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []models.LedgerEntry
	for rows.Next() {
		var kind string
		var cost int
		var chargedAt time.Time
		if err := rows.Scan(&kind, &cost, &chargedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		entries = append(entries, models.LedgerEntry{
			Kind:      models.ResourceKind(kind),
			Cost:      cost,
			ChargedAt: chargedAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger entries: %w", err)
	}
	return entries, nil
}

func (s *SQLiteStore) loadDocuments(snap *models.Snapshot) error {
	rows, err := s.db.Query("SELECT name, body FROM documents")
	if err != nil {
		return fmt.Errorf("load documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var name string
		var body []byte
		if err := rows.Scan(&name, &body); err != nil {
			return fmt.Errorf("scan document: %w", err)
		}
		switch name {
		case docPlan:
			var plan models.WeeklyPlan
			if err := json.Unmarshal(body, &plan); err != nil {
				return fmt.Errorf("decode weekly plan: %w", err)
			}
			snap.Plan = &plan
		case docBrief:
			var brief models.Brief
			if err := json.Unmarshal(body, &brief); err != nil {
				return fmt.Errorf("decode brief: %w", err)
			}
			snap.Brief = &brief
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate documents: %w", err)
	}
	return nil
}

// Reset wipes all stored snapshot state.
func (s *SQLiteStore) Reset() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin reset tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	clears := []string{
		"DELETE FROM session",
		"DELETE FROM cache_entries",
		"DELETE FROM ledger_entries",
		"DELETE FROM documents",
	}
	for _, stmt := range clears {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("reset snapshot db: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reset: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

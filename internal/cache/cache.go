// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache persists resolved concepts and a log of ranking runs
// in a local SQLite database, so repeated queries skip the concept
// resolution round-trips. See docs/ARCHITECTURE.md § Cache and Run Log.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/review-engine/pkg/types"
)

const dbFile = "review-engine.db"

// Store manages the cache SQLite database.
type Store struct {
	db  *sql.DB
	ttl time.Duration
}

// NewStore opens or creates the cache database at cfg.Dir/review-engine.db
// and creates the schema if it does not exist.
func NewStore(cfg types.CacheConfig) (*Store, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("cache directory not configured")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	ttl := cfg.ConceptTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}

	s := &Store{db: db, ttl: ttl}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS concepts (
			query_key TEXT PRIMARY KEY,
			concept_json TEXT NOT NULL,
			cached_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			query TEXT NOT NULL,
			concept_id TEXT,
			candidates INTEGER NOT NULL,
			graph_edges INTEGER NOT NULL,
			communities INTEGER NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// queryKey normalizes a query for cache lookup: case-folded, collapsed
// whitespace.
func queryKey(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}

// GetConcept returns the cached concept for a query, or (nil, false)
// when the query has no fresh entry. Expired entries are deleted on
// read.
func (s *Store) GetConcept(ctx context.Context, query string) (*types.Concept, bool, error) {
	key := queryKey(query)

	var conceptJSON, cachedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT concept_json, cached_at FROM concepts WHERE query_key = ?`, key,
	).Scan(&conceptJSON, &cachedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading concept cache: %w", err)
	}

	stored, err := time.Parse(time.RFC3339Nano, cachedAt)
	if err != nil || time.Since(stored) > s.ttl {
		if _, delErr := s.db.ExecContext(ctx,
			`DELETE FROM concepts WHERE query_key = ?`, key); delErr != nil {
			return nil, false, fmt.Errorf("evicting stale concept: %w", delErr)
		}
		return nil, false, nil
	}

	var concept types.Concept
	if err := json.Unmarshal([]byte(conceptJSON), &concept); err != nil {
		return nil, false, fmt.Errorf("parsing cached concept: %w", err)
	}
	return &concept, true, nil
}

// PutConcept stores the resolved concept for a query, replacing any
// previous entry.
func (s *Store) PutConcept(ctx context.Context, query string, concept *types.Concept) error {
	if concept == nil {
		return fmt.Errorf("nil concept")
	}
	conceptJSON, err := json.Marshal(concept)
	if err != nil {
		return fmt.Errorf("marshaling concept: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO concepts (query_key, concept_json, cached_at) VALUES (?, ?, ?)
		 ON CONFLICT(query_key) DO UPDATE SET
			concept_json=excluded.concept_json, cached_at=excluded.cached_at`,
		queryKey(query), string(conceptJSON), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("writing concept cache: %w", err)
	}
	return nil
}

// RunRecord is one entry in the run log.
type RunRecord struct {
	ID          string
	Query       string
	ConceptID   string
	Candidates  int
	GraphEdges  int
	Communities int
	CreatedAt   time.Time
}

// LogRun records a completed ranking run and returns its generated id.
func (s *Store) LogRun(ctx context.Context, rec RunRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, query, concept_id, candidates, graph_edges, communities, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Query, rec.ConceptID, rec.Candidates, rec.GraphEdges, rec.Communities,
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("logging run: %w", err)
	}
	return rec.ID, nil
}

// Runs returns the most recent run records, newest first.
func (s *Store) Runs(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, query, concept_id, candidates, graph_edges, communities, created_at
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.Query, &rec.ConceptID,
			&rec.Candidates, &rec.GraphEdges, &rec.Communities, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning run record: %w", err)
		}
		if t, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
			rec.CreatedAt = t
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

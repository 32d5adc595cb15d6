// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package inventory keeps a SQLite history of archiving runs so earlier
// deliveries can be inspected without re-reading report files.
package inventory

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/pubarchiver/pkg/types"
)

// Store wraps the run-history SQLite database.
type Store struct {
	db *sql.DB
}

// Run is one recorded archiving run.
type Run struct {
	ID       int64
	Journal  string
	Started  time.Time
	Total    int
	Failures int
}

// Open opens or creates the inventory database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening inventory database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating inventory schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			journal TEXT NOT NULL,
			started TEXT NOT NULL,
			total INTEGER NOT NULL,
			failures INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS run_articles (
			run_id INTEGER NOT NULL REFERENCES runs(id),
			doi TEXT NOT NULL,
			date TEXT,
			title TEXT,
			status TEXT NOT NULL,
			url TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_run_articles_run_id ON run_articles(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_run_articles_doi ON run_articles(doi)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// RecordRun stores one finished run and its article statuses.
func (s *Store) RecordRun(journal string, started time.Time, articles []types.Article, failures int) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting inventory transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO runs (journal, started, total, failures) VALUES (?, ?, ?, ?)`,
		journal, started.UTC().Format(time.RFC3339), len(articles), failures,
	)
	if err != nil {
		return 0, fmt.Errorf("recording run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	for _, a := range articles {
		if _, err := tx.Exec(
			`INSERT INTO run_articles (run_id, doi, date, title, status, url) VALUES (?, ?, ?, ?, ?, ?)`,
			runID, a.DOI, a.Date, a.Title, string(a.Status), a.PDF,
		); err != nil {
			return 0, fmt.Errorf("recording article %s: %w", a.DOI, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing inventory transaction: %w", err)
	}
	return runID, nil
}

// RecentRuns returns the most recent runs, newest first.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, journal, started, total, failures FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started string
		if err := rows.Scan(&r.ID, &r.Journal, &started, &r.Total, &r.Failures); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.Started, _ = time.Parse(time.RFC3339, started)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// ArticleHistory returns every recorded status for one DOI, newest
// first.
func (s *Store) ArticleHistory(doi string) ([]types.Article, error) {
	rows, err := s.db.Query(
		`SELECT doi, date, title, status, url FROM run_articles WHERE doi = ? ORDER BY run_id DESC`, doi)
	if err != nil {
		return nil, fmt.Errorf("querying article history: %w", err)
	}
	defer rows.Close()

	var articles []types.Article
	for rows.Next() {
		var a types.Article
		var status string
		if err := rows.Scan(&a.DOI, &a.Date, &a.Title, &status, &a.PDF); err != nil {
			return nil, fmt.Errorf("scanning article: %w", err)
		}
		a.Status = types.Status(status)
		a.Basename = types.BasenameForDOI(a.DOI)
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

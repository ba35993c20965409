// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus persists papers, text chunks, and workflow artifacts in
// SQLite, partitioned by user scope. Every operation takes an explicit
// scope and refuses to run without one.
package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/research-assistant/internal/scope"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// Store manages the corpus SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the corpus database at cfg.Path and creates the
// schema if it does not exist.
func Open(cfg types.StoreConfig) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("store path is required")
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			arxiv_id TEXT,
			title TEXT NOT NULL,
			authors TEXT,
			summary TEXT,
			published_at TEXT,
			link TEXT,
			pdf_url TEXT,
			source TEXT NOT NULL DEFAULT 'arxiv',
			ingested INTEGER NOT NULL DEFAULT 0,
			embedded INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_papers_scope_arxiv
			ON papers(user_id, arxiv_id) WHERE arxiv_id IS NOT NULL AND arxiv_id != ''`,
		`CREATE INDEX IF NOT EXISTS idx_papers_user_id ON papers(user_id)`,
		`CREATE TABLE IF NOT EXISTS chunks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			paper_id INTEGER NOT NULL REFERENCES papers(id) ON DELETE CASCADE,
			ord INTEGER NOT NULL,
			text TEXT,
			vector_id TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_paper_id ON chunks(paper_id)`,
		`CREATE TABLE IF NOT EXISTS cluster_results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			run_id TEXT NOT NULL,
			cluster_label TEXT,
			paper_ids_csv TEXT,
			rationale TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cluster_results_run_id ON cluster_results(run_id)`,
		`CREATE TABLE IF NOT EXISTS hypotheses (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			run_id TEXT NOT NULL,
			text TEXT,
			supports TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_hypotheses_run_id ON hypotheses(run_id)`,
		`CREATE TABLE IF NOT EXISTS experiment_plans (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			run_id TEXT NOT NULL,
			hypothesis_id INTEGER NOT NULL DEFAULT 0,
			plan TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_experiment_plans_run_id ON experiment_plans(run_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// PaperFields carries the mutable metadata for an upsert.
type PaperFields struct {
	ArxivID     string
	Title       string
	Authors     string
	Summary     string
	PublishedAt *time.Time
	Link        string
	PDFURL      string
	Source      types.PaperSource
}

// UpsertPaper looks up a paper by (scope, arXiv id) when an arXiv id is
// present, updates its mutable metadata if found, and inserts otherwise.
// Returns whether a new row was created. Calling twice with the same
// scope and arXiv id yields exactly one row.
func (s *Store) UpsertPaper(ctx context.Context, sc scope.ID, fields PaperFields) (types.Paper, bool, error) {
	if err := sc.Validate(); err != nil {
		return types.Paper{}, false, err
	}

	title := fields.Title
	if title == "" {
		title = "Untitled"
	}
	source := fields.Source
	if source == "" {
		source = types.SourceArxiv
	}

	if fields.ArxivID != "" {
		existing, err := s.paperByArxivID(ctx, sc, fields.ArxivID)
		if err != nil && err != sql.ErrNoRows {
			return types.Paper{}, false, fmt.Errorf("looking up paper: %w", err)
		}
		if err == nil {
			_, err := s.db.ExecContext(ctx,
				`UPDATE papers SET title = ?, authors = ?, summary = ?, published_at = ?,
					link = ?, pdf_url = ? WHERE id = ? AND user_id = ?`,
				title, fields.Authors, fields.Summary, timeArg(fields.PublishedAt),
				fields.Link, fields.PDFURL, existing.ID, string(sc),
			)
			if err != nil {
				return types.Paper{}, false, fmt.Errorf("updating paper: %w", err)
			}
			updated, err := s.paperByID(ctx, sc, existing.ID)
			if err != nil {
				return types.Paper{}, false, fmt.Errorf("reloading paper: %w", err)
			}
			return updated, false, nil
		}
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO papers (user_id, arxiv_id, title, authors, summary, published_at, link, pdf_url, source)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(sc), fields.ArxivID, title, fields.Authors, fields.Summary,
		timeArg(fields.PublishedAt), fields.Link, fields.PDFURL, string(source),
	)
	if err != nil {
		return types.Paper{}, false, fmt.Errorf("inserting paper: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return types.Paper{}, false, fmt.Errorf("reading insert id: %w", err)
	}

	paper, err := s.paperByID(ctx, sc, id)
	if err != nil {
		return types.Paper{}, false, fmt.Errorf("reloading paper: %w", err)
	}
	return paper, true, nil
}

// RecordChunk inserts a chunk row for a paper. The caller supplies the
// ordinal position.
func (s *Store) RecordChunk(ctx context.Context, sc scope.ID, paperID int64, ord int, text string) (types.Chunk, error) {
	if err := sc.Validate(); err != nil {
		return types.Chunk{}, err
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO chunks (user_id, paper_id, ord, text) VALUES (?, ?, ?, ?)`,
		string(sc), paperID, ord, text,
	)
	if err != nil {
		return types.Chunk{}, fmt.Errorf("inserting chunk: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return types.Chunk{}, fmt.Errorf("reading insert id: %w", err)
	}

	return types.Chunk{ID: id, PaperID: paperID, Ord: ord, Text: text}, nil
}

// SetChunkVectorID records the vector-index back-reference for a chunk.
func (s *Store) SetChunkVectorID(ctx context.Context, sc scope.ID, chunkID int64, vectorID string) error {
	if err := sc.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE chunks SET vector_id = ? WHERE id = ? AND user_id = ?`,
		vectorID, chunkID, string(sc),
	)
	if err != nil {
		return fmt.Errorf("updating chunk vector id: %w", err)
	}
	return nil
}

// MarkPaperEmbedded flags a paper as parsed and embedded.
func (s *Store) MarkPaperEmbedded(ctx context.Context, sc scope.ID, paperID int64) error {
	if err := sc.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE papers SET ingested = 1, embedded = 1 WHERE id = ? AND user_id = ?`,
		paperID, string(sc),
	)
	if err != nil {
		return fmt.Errorf("marking paper embedded: %w", err)
	}
	return nil
}

// CountPapers returns the number of papers in the scope.
func (s *Store) CountPapers(ctx context.Context, sc scope.ID) (int, error) {
	if err := sc.Validate(); err != nil {
		return 0, err
	}
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM papers WHERE user_id = ?`, string(sc),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting papers: %w", err)
	}
	return n, nil
}

// PaperFilter narrows a paper query. When IDs is non-empty it takes
// precedence; Match is the free-text fallback over title and summary.
type PaperFilter struct {
	IDs   []int64
	Match string
}

// QueryPapers returns papers in the scope matching the filter, ordered by
// publication time descending with nulls last, then id descending.
func (s *Store) QueryPapers(ctx context.Context, sc scope.ID, filter PaperFilter, limit int) ([]types.Paper, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT id, arxiv_id, title, authors, summary, published_at,
		link, pdf_url, source, ingested, embedded, created_at
		FROM papers WHERE user_id = ? AND title IS NOT NULL`)
	args = append(args, string(sc))

	if len(filter.IDs) > 0 {
		qb.WriteString(` AND id IN (` + placeholders(len(filter.IDs)) + `)`)
		for _, id := range filter.IDs {
			args = append(args, id)
		}
	} else if filter.Match != "" {
		qb.WriteString(` AND (title LIKE ? OR summary LIKE ?)`)
		like := "%" + filter.Match + "%"
		args = append(args, like, like)
	}

	qb.WriteString(` ORDER BY (published_at IS NULL), published_at DESC, id DESC`)
	if limit > 0 {
		qb.WriteString(` LIMIT ?`)
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying papers: %w", err)
	}
	defer rows.Close()

	var papers []types.Paper
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning paper: %w", err)
		}
		papers = append(papers, p)
	}
	return papers, rows.Err()
}

func (s *Store) paperByArxivID(ctx context.Context, sc scope.ID, arxivID string) (types.Paper, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, arxiv_id, title, authors, summary, published_at,
			link, pdf_url, source, ingested, embedded, created_at
		 FROM papers WHERE user_id = ? AND arxiv_id = ?`,
		string(sc), arxivID,
	)
	return scanPaper(row)
}

func (s *Store) paperByID(ctx context.Context, sc scope.ID, id int64) (types.Paper, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, arxiv_id, title, authors, summary, published_at,
			link, pdf_url, source, ingested, embedded, created_at
		 FROM papers WHERE user_id = ? AND id = ?`,
		string(sc), id,
	)
	return scanPaper(row)
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPaper(r rowScanner) (types.Paper, error) {
	var (
		p         types.Paper
		arxivID   sql.NullString
		authors   sql.NullString
		summary   sql.NullString
		published sql.NullString
		link      sql.NullString
		pdfURL    sql.NullString
		source    string
		createdAt string
	)
	if err := r.Scan(
		&p.ID, &arxivID, &p.Title, &authors, &summary, &published,
		&link, &pdfURL, &source, &p.Ingested, &p.Embedded, &createdAt,
	); err != nil {
		return types.Paper{}, err
	}

	p.ArxivID = arxivID.String
	p.Authors = authors.String
	p.Summary = summary.String
	p.Link = link.String
	p.PDFURL = pdfURL.String
	p.Source = types.PaperSource(source)

	if published.Valid && published.String != "" {
		if t, err := time.Parse(time.RFC3339, published.String); err == nil {
			p.PublishedAt = &t
		}
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		p.CreatedAt = t
	}
	return p, nil
}

func timeArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vecindex

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// SQLiteVec is a Backend backed by SQLite with the sqlite-vec extension.
// Embeddings are stored as little-endian float32 blobs and ranked with
// vec_distance_cosine.
type SQLiteVec struct {
	db *sql.DB
}

// OpenSQLiteVec opens or creates the vector database at cfg.Path.
func OpenSQLiteVec(cfg types.VectorConfig) (*SQLiteVec, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("vector store path is required")
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening vector database: %w", err)
	}

	stmt := `CREATE TABLE IF NOT EXISTS vectors (
		namespace TEXT NOT NULL,
		id TEXT NOT NULL,
		content TEXT,
		metadata TEXT,
		embedding BLOB,
		PRIMARY KEY (namespace, id)
	)`
	if _, err := db.Exec(stmt); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating vectors table: %w", err)
	}

	return &SQLiteVec{db: db}, nil
}

// Close releases the database connection.
func (b *SQLiteVec) Close() error {
	return b.db.Close()
}

// Upsert inserts or replaces records in a namespace.
func (b *SQLiteVec) Upsert(ctx context.Context, namespace string, records []Record) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, rec := range records {
		meta, err := json.Marshal(rec.Metadata)
		if err != nil {
			return fmt.Errorf("encoding metadata for %s: %w", rec.ID, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO vectors (namespace, id, content, metadata, embedding)
			 VALUES (?, ?, ?, ?, ?)`,
			namespace, rec.ID, rec.Content, string(meta), encodeEmbedding(rec.Embedding),
		)
		if err != nil {
			return fmt.Errorf("upserting vector %s: %w", rec.ID, err)
		}
	}
	return tx.Commit()
}

// Search returns the k nearest records in a namespace by cosine distance.
// Filter entries become json_extract equality conditions on the metadata.
func (b *SQLiteVec) Search(ctx context.Context, namespace string, filter map[string]string, query []float32, k int) ([]Match, error) {
	if k <= 0 {
		return nil, nil
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT id, content, metadata, embedding,
		vec_distance_cosine(embedding, ?) AS distance
		FROM vectors WHERE namespace = ?`)
	args = append(args, encodeEmbedding(query), namespace)

	// Sorted keys keep the statement deterministic. The json path is bound
	// as a parameter so filter keys never reach the SQL text.
	keys := make([]string, 0, len(filter))
	for key := range filter {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		qb.WriteString(` AND json_extract(metadata, ?) = ?`)
		args = append(args, "$."+key, filter[key])
	}

	qb.WriteString(` ORDER BY distance ASC LIMIT ?`)
	args = append(args, k)

	rows, err := b.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("searching vectors: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var (
			m        Match
			metaJSON sql.NullString
			blob     []byte
		)
		if err := rows.Scan(&m.ID, &m.Content, &metaJSON, &blob, &m.Distance); err != nil {
			return nil, fmt.Errorf("scanning vector row: %w", err)
		}
		if metaJSON.Valid && metaJSON.String != "" {
			if err := json.Unmarshal([]byte(metaJSON.String), &m.Metadata); err != nil {
				return nil, fmt.Errorf("decoding metadata for %s: %w", m.ID, err)
			}
		}
		m.Embedding = decodeEmbedding(blob)
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// Delete removes records by id from a namespace. Missing ids are ignored.
func (b *SQLiteVec) Delete(ctx context.Context, namespace string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	args := make([]any, 0, len(ids)+1)
	args = append(args, namespace)
	for _, id := range ids {
		args = append(args, id)
	}
	_, err := b.db.ExecContext(ctx,
		`DELETE FROM vectors WHERE namespace = ? AND id IN (`+
			strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")+`)`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("deleting vectors: %w", err)
	}
	return nil
}

// List returns every record in a namespace, embeddings included.
func (b *SQLiteVec) List(ctx context.Context, namespace string) ([]Record, error) {
	rows, err := b.db.QueryContext(ctx,
		`SELECT id, content, metadata, embedding FROM vectors WHERE namespace = ? ORDER BY id`,
		namespace,
	)
	if err != nil {
		return nil, fmt.Errorf("listing vectors: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec      Record
			metaJSON sql.NullString
			blob     []byte
		)
		if err := rows.Scan(&rec.ID, &rec.Content, &metaJSON, &blob); err != nil {
			return nil, fmt.Errorf("scanning vector row: %w", err)
		}
		if metaJSON.Valid && metaJSON.String != "" {
			if err := json.Unmarshal([]byte(metaJSON.String), &rec.Metadata); err != nil {
				return nil, fmt.Errorf("decoding metadata for %s: %w", rec.ID, err)
			}
		}
		rec.Embedding = decodeEmbedding(blob)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteNamespace drops every record in a namespace. Deleting a namespace
// that does not exist succeeds.
func (b *SQLiteVec) DeleteNamespace(ctx context.Context, namespace string) error {
	_, err := b.db.ExecContext(ctx, `DELETE FROM vectors WHERE namespace = ?`, namespace)
	if err != nil {
		return fmt.Errorf("deleting namespace %s: %w", namespace, err)
	}
	return nil
}

// Namespaces lists the distinct namespaces currently holding records.
func (b *SQLiteVec) Namespaces(ctx context.Context) ([]string, error) {
	rows, err := b.db.QueryContext(ctx, `SELECT DISTINCT namespace FROM vectors ORDER BY namespace`)
	if err != nil {
		return nil, fmt.Errorf("listing namespaces: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scanning namespace: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// Count returns the number of records in a namespace.
func (b *SQLiteVec) Count(ctx context.Context, namespace string) (int, error) {
	var n int
	err := b.db.QueryRowContext(ctx,
		`SELECT count(*) FROM vectors WHERE namespace = ?`, namespace,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting namespace %s: %w", namespace, err)
	}
	return n, nil
}

func encodeEmbedding(vec []float32) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, vec)
	return buf.Bytes()
}

func decodeEmbedding(blob []byte) []float32 {
	if len(blob) == 0 || len(blob)%4 != 0 {
		return nil
	}
	vec := make([]float32, len(blob)/4)
	binary.Read(bytes.NewReader(blob), binary.LittleEndian, &vec)
	return vec
}

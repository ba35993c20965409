// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vecindex

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/scope"
)

// Embedder turns text into an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Document is a text to index under a scope.
type Document struct {
	ID       string
	Text     string
	Metadata map[string]string
}

// Result is a scoped search hit.
type Result struct {
	ID       string
	Text     string
	Metadata map[string]string
	Distance float64
}

// Index is the scoped front end over a Backend. Writes stamp the owning
// scope into each record's metadata and route it to the scope's namespace;
// reads filter on that metadata and drop any record whose stamp does not
// match, even if the backend returned it.
type Index struct {
	backend  Backend
	embedder Embedder
	log      *zap.Logger
}

// New builds an Index over a backend and an embedder.
func New(backend Backend, embedder Embedder, log *zap.Logger) *Index {
	if log == nil {
		log = zap.NewNop()
	}
	return &Index{backend: backend, embedder: embedder, log: log}
}

// Close releases the backend.
func (ix *Index) Close() error {
	return ix.backend.Close()
}

// Add embeds and stores documents under the scope's namespace. Each record
// carries a user_id metadata stamp regardless of what the caller supplied.
func (ix *Index) Add(ctx context.Context, sc scope.ID, docs []Document) error {
	if err := sc.Validate(); err != nil {
		return err
	}
	if len(docs) == 0 {
		return nil
	}

	records := make([]Record, 0, len(docs))
	for _, doc := range docs {
		embedding, err := ix.embedder.Embed(ctx, doc.Text)
		if err != nil {
			return fmt.Errorf("embedding document %s: %w", doc.ID, err)
		}
		meta := make(map[string]string, len(doc.Metadata)+1)
		for k, v := range doc.Metadata {
			meta[k] = v
		}
		meta["user_id"] = string(sc)
		records = append(records, Record{
			ID:        doc.ID,
			Content:   doc.Text,
			Metadata:  meta,
			Embedding: embedding,
		})
	}

	namespace := scope.NamespaceKey(sc)
	if err := ix.backend.Upsert(ctx, namespace, records); err != nil {
		return fmt.Errorf("upserting into %s: %w", namespace, err)
	}
	ix.log.Debug("indexed documents",
		zap.String("namespace", namespace),
		zap.Int("count", len(records)))
	return nil
}

// Query embeds the query text and returns up to k of the scope's nearest
// documents. Records whose ownership stamp does not match the scope are
// discarded rather than returned.
func (ix *Index) Query(ctx context.Context, sc scope.ID, query string, k int) ([]Result, error) {
	return ix.QueryFiltered(ctx, sc, query, k, nil)
}

// QueryFiltered is Query with extra metadata equality conditions ANDed onto
// the ownership filter. The ownership condition cannot be overridden.
func (ix *Index) QueryFiltered(ctx context.Context, sc scope.ID, query string, k int, extra map[string]string) ([]Result, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, nil
	}

	embedding, err := ix.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	filter := make(map[string]string, len(extra)+1)
	for key, val := range extra {
		filter[key] = val
	}
	filter["user_id"] = string(sc)

	matches, err := ix.backend.Search(ctx, scope.NamespaceKey(sc), filter, embedding, k)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}

	results := make([]Result, 0, len(matches))
	for _, m := range matches {
		if m.Metadata["user_id"] != string(sc) {
			ix.log.Warn("dropping record with foreign ownership stamp",
				zap.String("id", m.ID))
			continue
		}
		results = append(results, Result{
			ID:       m.ID,
			Text:     m.Content,
			Metadata: m.Metadata,
			Distance: m.Distance,
		})
	}
	return results, nil
}

// Delete removes documents by id from the scope's namespace.
func (ix *Index) Delete(ctx context.Context, sc scope.ID, ids []string) error {
	if err := sc.Validate(); err != nil {
		return err
	}
	return ix.backend.Delete(ctx, scope.NamespaceKey(sc), ids)
}

// ClearScope drops the scope's entire namespace. Clearing a scope that was
// never written succeeds.
func (ix *Index) ClearScope(ctx context.Context, sc scope.ID) error {
	if err := sc.Validate(); err != nil {
		return err
	}
	return ix.backend.DeleteNamespace(ctx, scope.NamespaceKey(sc))
}

// ClearMatching removes the scope's documents whose id and metadata satisfy
// pred, returning how many were removed. Used for cleaning transient
// records without dropping the namespace.
func (ix *Index) ClearMatching(ctx context.Context, sc scope.ID, pred func(id string, metadata map[string]string) bool) (int, error) {
	if err := sc.Validate(); err != nil {
		return 0, err
	}

	namespace := scope.NamespaceKey(sc)
	records, err := ix.backend.List(ctx, namespace)
	if err != nil {
		return 0, fmt.Errorf("listing namespace %s: %w", namespace, err)
	}

	var ids []string
	for _, rec := range records {
		if pred(rec.ID, rec.Metadata) {
			ids = append(ids, rec.ID)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}
	if err := ix.backend.Delete(ctx, namespace, ids); err != nil {
		return 0, fmt.Errorf("deleting from %s: %w", namespace, err)
	}
	return len(ids), nil
}

// Count returns the number of documents indexed for the scope.
func (ix *Index) Count(ctx context.Context, sc scope.ID) (int, error) {
	if err := sc.Validate(); err != nil {
		return 0, err
	}
	return ix.backend.Count(ctx, scope.NamespaceKey(sc))
}

// Stats describes one scope's slice of the index.
type Stats struct {
	Namespace string `json:"namespace" yaml:"namespace"`
	Records   int    `json:"records" yaml:"records"`
}

// ScopeStats returns the scope's namespace name and record count.
func (ix *Index) ScopeStats(ctx context.Context, sc scope.ID) (Stats, error) {
	n, err := ix.Count(ctx, sc)
	if err != nil {
		return Stats{}, err
	}
	return Stats{Namespace: scope.NamespaceKey(sc), Records: n}, nil
}

// NamespaceOutcome reports one namespace drop during a full clear.
type NamespaceOutcome struct {
	Namespace string
	Err       error
}

// ClearAll drops every namespace in the backend, continuing past failures,
// and reports the outcome per namespace.
func (ix *Index) ClearAll(ctx context.Context) ([]NamespaceOutcome, error) {
	namespaces, err := ix.backend.Namespaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing namespaces: %w", err)
	}

	outcomes := make([]NamespaceOutcome, 0, len(namespaces))
	for _, ns := range namespaces {
		err := ix.backend.DeleteNamespace(ctx, ns)
		if err != nil {
			ix.log.Warn("failed to drop namespace", zap.String("namespace", ns), zap.Error(err))
		}
		outcomes = append(outcomes, NamespaceOutcome{Namespace: ns, Err: err})
	}
	return outcomes, nil
}

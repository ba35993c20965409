// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package vecindex stores and searches embedding vectors, partitioned into
// per-user namespaces. The Index front end derives the namespace from the
// caller's scope, stamps ownership metadata on every record, and re-checks
// that metadata on the way out, so a backend that ignores filters cannot
// leak another user's documents.
package vecindex

import "context"

// Record is one embedded document held by a backend.
type Record struct {
	ID        string
	Content   string
	Metadata  map[string]string
	Embedding []float32
}

// Match is a search hit with its cosine distance to the query.
type Match struct {
	Record
	Distance float64
}

// Backend is the storage engine behind an Index. Implementations apply the
// metadata filter on Search when they can; the Index re-checks regardless.
type Backend interface {
	Upsert(ctx context.Context, namespace string, records []Record) error
	Search(ctx context.Context, namespace string, filter map[string]string, query []float32, k int) ([]Match, error)
	Delete(ctx context.Context, namespace string, ids []string) error
	List(ctx context.Context, namespace string) ([]Record, error)
	DeleteNamespace(ctx context.Context, namespace string) error
	Namespaces(ctx context.Context) ([]string, error)
	Count(ctx context.Context, namespace string) (int, error)
	Close() error
}

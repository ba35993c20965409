// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package admin performs bulk destructive maintenance across the corpus
// store and the vector index.
package admin

import (
	"context"

	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/corpus"
	"github.com/pdiddy/research-assistant/internal/scope"
	"github.com/pdiddy/research-assistant/internal/vecindex"
)

// Report describes how a wipe went, backend by backend, so a partial
// failure is distinguishable from total success or total failure.
type Report struct {
	// CorpusErr is the corpus store outcome, nil on success.
	CorpusErr error

	// VectorErr is the vector index outcome for a single-scope wipe.
	VectorErr error

	// Namespaces holds the per-namespace outcomes of a full wipe.
	Namespaces []vecindex.NamespaceOutcome
}

// OK reports whether every backend wiped cleanly.
func (r Report) OK() bool {
	if r.CorpusErr != nil || r.VectorErr != nil {
		return false
	}
	for _, ns := range r.Namespaces {
		if ns.Err != nil {
			return false
		}
	}
	return true
}

// Wiper deletes user data across both stores.
type Wiper struct {
	store *corpus.Store
	index *vecindex.Index
	log   *zap.Logger
}

// New builds a Wiper.
func New(store *corpus.Store, index *vecindex.Index, log *zap.Logger) *Wiper {
	if log == nil {
		log = zap.NewNop()
	}
	return &Wiper{store: store, index: index, log: log}
}

// Wipe removes one scope's rows and vector namespace. Both backends are
// attempted even if the first fails; wiping an empty scope succeeds.
func (w *Wiper) Wipe(ctx context.Context, sc scope.ID) (Report, error) {
	if err := sc.Validate(); err != nil {
		return Report{}, err
	}

	var report Report
	report.CorpusErr = w.store.DeleteScope(ctx, sc)
	report.VectorErr = w.index.ClearScope(ctx, sc)

	if report.OK() {
		w.log.Info("scope wiped", zap.String("scope", string(sc)))
	} else {
		w.log.Warn("scope wipe incomplete",
			zap.String("scope", string(sc)),
			zap.NamedError("corpus", report.CorpusErr),
			zap.NamedError("vector", report.VectorErr))
	}
	return report, nil
}

// WipeAll removes every scope's rows and every vector namespace.
func (w *Wiper) WipeAll(ctx context.Context) (Report, error) {
	var report Report
	report.CorpusErr = w.store.DeleteAll(ctx)

	outcomes, err := w.index.ClearAll(ctx)
	if err != nil {
		report.VectorErr = err
	}
	report.Namespaces = outcomes

	if report.OK() {
		w.log.Info("all data wiped", zap.Int("namespaces", len(outcomes)))
	} else {
		w.log.Warn("full wipe incomplete",
			zap.NamedError("corpus", report.CorpusErr),
			zap.NamedError("vector", report.VectorErr))
	}
	return report, nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package agents runs the four-stage research workflow over a user's
// corpus: cluster the papers, summarize each cluster, generate hypotheses,
// and design an experiment plan per hypothesis. Every stage degrades to a
// defined fallback when the model returns unusable output, so a run always
// completes.
package agents

import (
	"context"

	"github.com/pdiddy/research-assistant/internal/scope"
	"github.com/pdiddy/research-assistant/internal/vecindex"
)

// Retriever is the slice of the vector index the pipeline needs.
type Retriever interface {
	Query(ctx context.Context, sc scope.ID, query string, k int) ([]vecindex.Result, error)
}

// capStrings keeps at most n items, preserving order.
func capStrings(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

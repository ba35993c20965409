// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package embedding generates text embeddings for the vector index.
package embedding

import "context"

// Embedder turns text into an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

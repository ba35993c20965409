// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embedding

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-assistant/pkg/types"
)

func TestNewGenAIEngineRequiresAPIKey(t *testing.T) {
	_, err := NewGenAIEngine(context.Background(), types.EmbeddingConfig{})
	assert.Error(t, err)
}

func TestNewGenAIEngineDefaultsModel(t *testing.T) {
	e, err := NewGenAIEngine(context.Background(), types.EmbeddingConfig{APIKey: "test-key"})
	require.NoError(t, err)
	assert.Equal(t, defaultModel, e.model)

	e, err = NewGenAIEngine(context.Background(), types.EmbeddingConfig{
		APIKey: "test-key",
		Model:  "gemini-embedding-custom",
	})
	require.NoError(t, err)
	assert.Equal(t, "gemini-embedding-custom", e.model)
}

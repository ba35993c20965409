// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agents

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-assistant/internal/corpus"
	"github.com/pdiddy/research-assistant/internal/llm"
	"github.com/pdiddy/research-assistant/internal/scope"
	"github.com/pdiddy/research-assistant/internal/vecindex"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// scriptedCompleter replays canned responses in order and records every
// prompt it was given.
type scriptedCompleter struct {
	responses []string
	err       error
	prompts   [][]llm.Message
}

func (s *scriptedCompleter) Complete(_ context.Context, messages []llm.Message) (string, error) {
	s.prompts = append(s.prompts, messages)
	if s.err != nil {
		return "", s.err
	}
	if len(s.responses) == 0 {
		return "", fmt.Errorf("scripted completer exhausted")
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return resp, nil
}

// stubRetriever replays canned results, or an error.
type stubRetriever struct {
	results []vecindex.Result
	err     error
	gotK    int
}

func (s *stubRetriever) Query(_ context.Context, _ scope.ID, _ string, k int) ([]vecindex.Result, error) {
	s.gotK = k
	return s.results, s.err
}

func newTestStore(t *testing.T) *corpus.Store {
	t.Helper()
	store, err := corpus.Open(types.StoreConfig{Path: filepath.Join(t.TempDir(), "corpus.db")})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedPaper(t *testing.T, store *corpus.Store, sc scope.ID, arxivID, title, summary string) types.Paper {
	t.Helper()
	p, _, err := store.UpsertPaper(context.Background(), sc, corpus.PaperFields{
		ArxivID: arxivID,
		Title:   title,
		Summary: summary,
	})
	require.NoError(t, err)
	return p
}

func paperIDResult(id int64) vecindex.Result {
	return vecindex.Result{
		ID:       fmt.Sprintf("paper-%d-abs", id),
		Metadata: map[string]string{"paper_id": fmt.Sprintf("%d", id)},
	}
}

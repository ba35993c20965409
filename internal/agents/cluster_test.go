// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agents

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/scope"
)

func TestClustererGroupsPrefilteredPapers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p1 := seedPaper(t, store, "u1", "2301.1", "Attention One", "about attention")
	p2 := seedPaper(t, store, "u1", "2301.2", "Attention Two", "more attention")
	seedPaper(t, store, "u1", "2301.3", "Unrelated Biology", "cells")

	prefilter := &stubRetriever{}
	prefilter.results = append(prefilter.results, paperIDResult(p1.ID), paperIDResult(p2.ID), paperIDResult(p1.ID))

	completer := &scriptedCompleter{responses: []string{
		fmt.Sprintf(`Here you go: [{"label": "attention", "paper_ids": [%d, %d], "rationale": "same topic"}]`, p1.ID, p2.ID),
	}}

	clusterer := NewClusterer(store, prefilter, completer, zap.NewNop())
	clusters, err := clusterer.Run(ctx, "u1", "attention", 10)
	require.NoError(t, err)
	require.Len(t, clusters, 1)
	assert.Equal(t, "attention", clusters[0].Label)
	assert.Equal(t, []int64{p1.ID, p2.ID}, clusters[0].PaperIDs)
	assert.Equal(t, 30, prefilter.gotK)

	// The prompt should carry only the prefiltered papers.
	prompt := completer.prompts[0][1].Content
	assert.Contains(t, prompt, "Attention One")
	assert.NotContains(t, prompt, "Unrelated Biology")
}

func TestClustererKeywordFallbackWhenPrefilterFails(t *testing.T) {
	store := newTestStore(t)
	p := seedPaper(t, store, "u1", "2301.1", "Graph networks survey", "graphs")

	prefilter := &stubRetriever{err: fmt.Errorf("index down")}
	completer := &scriptedCompleter{responses: []string{
		fmt.Sprintf(`[{"label": "graphs", "paper_ids": [%d], "rationale": "keyword match"}]`, p.ID),
	}}

	clusterer := NewClusterer(store, prefilter, completer, zap.NewNop())
	clusters, err := clusterer.Run(context.Background(), "u1", "Graph", 10)
	require.NoError(t, err)
	require.Len(t, clusters, 1)
}

func TestClustererEmptyCorpusReturnsNoClusters(t *testing.T) {
	store := newTestStore(t)
	completer := &scriptedCompleter{}

	clusterer := NewClusterer(store, &stubRetriever{}, completer, zap.NewNop())
	clusters, err := clusterer.Run(context.Background(), "u1", "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, clusters)
	// No model call should be made without papers.
	assert.Empty(t, completer.prompts)
}

func TestClustererScopeIsolation(t *testing.T) {
	store := newTestStore(t)
	seedPaper(t, store, "u1", "1", "Mine A", "a")
	seedPaper(t, store, "u1", "2", "Mine B", "b")
	seedPaper(t, store, "u1", "3", "Mine C", "c")
	seedPaper(t, store, "u2", "4", "Theirs A", "a")
	seedPaper(t, store, "u2", "5", "Theirs B", "b")

	completer := &scriptedCompleter{responses: []string{`[]`}}
	clusterer := NewClusterer(store, &stubRetriever{}, completer, zap.NewNop())

	_, err := clusterer.Run(context.Background(), "u1", "Mine", 10)
	require.NoError(t, err)

	prompt := completer.prompts[0][1].Content
	assert.Contains(t, prompt, "Mine A")
	assert.NotContains(t, prompt, "Theirs A")
}

func TestClustererToleratesNonJSONOutput(t *testing.T) {
	store := newTestStore(t)
	seedPaper(t, store, "u1", "1", "Paper", "match topic words")

	completer := &scriptedCompleter{responses: []string{"I could not group these papers."}}
	clusterer := NewClusterer(store, &stubRetriever{}, completer, zap.NewNop())

	clusters, err := clusterer.Run(context.Background(), "u1", "topic", 5)
	require.NoError(t, err)
	assert.Empty(t, clusters)
}

func TestClustererDropsBadItemsAndUnknownIDs(t *testing.T) {
	store := newTestStore(t)
	p := seedPaper(t, store, "u1", "1", "Paper about topic", "topic text")

	completer := &scriptedCompleter{responses: []string{fmt.Sprintf(
		`[{"label": "", "paper_ids": [%d], "rationale": "missing label"},
		  {"label": "ghosts", "paper_ids": [9999], "rationale": "unknown id"},
		  {"label": "good", "paper_ids": [%d, 9999], "rationale": "keeps known id"}]`,
		p.ID, p.ID)}}
	clusterer := NewClusterer(store, &stubRetriever{}, completer, zap.NewNop())

	clusters, err := clusterer.Run(context.Background(), "u1", "topic", 5)
	require.NoError(t, err)
	require.Len(t, clusters, 1)
	assert.Equal(t, "good", clusters[0].Label)
	assert.Equal(t, []int64{p.ID}, clusters[0].PaperIDs)
}

func TestClustererRejectsEmptyScope(t *testing.T) {
	store := newTestStore(t)
	clusterer := NewClusterer(store, &stubRetriever{}, &scriptedCompleter{}, zap.NewNop())
	_, err := clusterer.Run(context.Background(), "", "topic", 5)
	assert.ErrorIs(t, err, scope.ErrEmptyScope)
}

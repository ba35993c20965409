// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/pkg/types"
)

func TestSummarizerParsesModelOutput(t *testing.T) {
	store := newTestStore(t)
	p1 := seedPaper(t, store, "u1", "2301.1", "Attention One", "a")
	p2 := seedPaper(t, store, "u1", "", "Untitled Notes", "b")

	completer := &scriptedCompleter{responses: []string{
		`{"key_points": ["finding one", "finding two"],
		  "limitations": ["small sample"],
		  "representative_papers": ["Attention One (arXiv:2301.1)"]}`,
	}}
	summarizer := NewSummarizer(store, completer, zap.NewNop())

	summaries, err := summarizer.Run(context.Background(), "u1", []types.Cluster{
		{Label: "attention", PaperIDs: []int64{p1.ID, p2.ID}},
	})
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	s := summaries[0]
	assert.Equal(t, "attention", s.ClusterLabel)
	assert.Equal(t, []string{"finding one", "finding two"}, s.KeyPoints)
	assert.Equal(t, []string{"small sample"}, s.Limitations)
	assert.Equal(t, []string{"Attention One (arXiv:2301.1)"}, s.RepresentativePapers)

	// The prompt cites papers with arXiv ids when known, bare titles
	// otherwise.
	prompt := completer.prompts[0][1].Content
	assert.Contains(t, prompt, "- Attention One (arXiv:2301.1)")
	assert.Contains(t, prompt, "- Untitled Notes\n")
}

func TestSummarizerFallbackOnProseOutput(t *testing.T) {
	store := newTestStore(t)
	p1 := seedPaper(t, store, "u1", "2301.1", "Paper One", "a")
	p2 := seedPaper(t, store, "u1", "2301.2", "Paper Two", "b")

	completer := &scriptedCompleter{responses: []string{
		"These papers discuss various approaches to attention.",
	}}
	summarizer := NewSummarizer(store, completer, zap.NewNop())

	summaries, err := summarizer.Run(context.Background(), "u1", []types.Cluster{
		{Label: "attention", PaperIDs: []int64{p1.ID, p2.ID}},
	})
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	s := summaries[0]
	assert.Equal(t, []string{"Summary unavailable"}, s.KeyPoints)
	assert.Equal(t, []string{"N/A"}, s.Limitations)
	assert.Len(t, s.RepresentativePapers, 2)
}

func TestSummarizerCapsIntake(t *testing.T) {
	store := newTestStore(t)
	p := seedPaper(t, store, "u1", "1", "Paper", "a")

	long := `{"key_points": ["1","2","3","4","5","6","7","8","9","10"],
		"limitations": ["a","b","c","d","e"],
		"representative_papers": ["r1","r2","r3","r4","r5","r6","r7","r8","r9"]}`
	completer := &scriptedCompleter{responses: []string{long}}
	summarizer := NewSummarizer(store, completer, zap.NewNop())

	summaries, err := summarizer.Run(context.Background(), "u1", []types.Cluster{
		{Label: "c", PaperIDs: []int64{p.ID}},
	})
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Len(t, summaries[0].KeyPoints, 8)
	assert.Len(t, summaries[0].Limitations, 4)
	assert.Len(t, summaries[0].RepresentativePapers, 8)
}

func TestSummarizerOneSummaryPerCluster(t *testing.T) {
	store := newTestStore(t)
	p := seedPaper(t, store, "u1", "1", "Paper", "a")

	completer := &scriptedCompleter{responses: []string{
		`{"key_points": ["ok"], "limitations": [], "representative_papers": []}`,
		"not json at all",
	}}
	summarizer := NewSummarizer(store, completer, zap.NewNop())

	summaries, err := summarizer.Run(context.Background(), "u1", []types.Cluster{
		{Label: "first", PaperIDs: []int64{p.ID}},
		{Label: "second", PaperIDs: []int64{p.ID}},
	})
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, []string{"ok"}, summaries[0].KeyPoints)
	assert.Equal(t, []string{"Summary unavailable"}, summaries[1].KeyPoints)
}

func TestSummarizerNoClusters(t *testing.T) {
	store := newTestStore(t)
	summarizer := NewSummarizer(store, &scriptedCompleter{}, zap.NewNop())
	summaries, err := summarizer.Run(context.Background(), "u1", nil)
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

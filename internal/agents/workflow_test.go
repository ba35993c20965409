// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agents

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/corpus"
	"github.com/pdiddy/research-assistant/internal/ingest"
	"github.com/pdiddy/research-assistant/internal/scope"
)

// stubIngestor records ensure-corpus calls.
type stubIngestor struct {
	report ingest.Report
	err    error
	calls  int
}

func (s *stubIngestor) FetchAndStore(_ context.Context, _ scope.ID, _ string, _ int) (ingest.Report, error) {
	s.calls++
	return s.report, s.err
}

func newTestWorkflow(store *corpus.Store, ingestor Ingestor, completer *scriptedCompleter) *Workflow {
	log := zap.NewNop()
	return NewWorkflow(store, ingestor,
		NewClusterer(store, &stubRetriever{}, completer, log),
		NewSummarizer(store, completer, log),
		NewHypothesizer(completer, log),
		NewPlanner(completer, log),
		log)
}

func TestWorkflowRunsEndToEnd(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p1 := seedPaper(t, store, "u1", "2301.1", "Attention topic paper", "topic a")
	p2 := seedPaper(t, store, "u1", "2301.2", "Another topic paper", "topic b")

	completer := &scriptedCompleter{responses: []string{
		// cluster
		fmt.Sprintf(`[{"label": "topic", "paper_ids": [%d, %d], "rationale": "related"}]`, p1.ID, p2.ID),
		// summarize
		`{"key_points": ["kp"], "limitations": ["lim"], "representative_papers": ["ref"]}`,
		// hypothesize
		`[{"text": "H1", "supporting_papers": ["ref"]}]`,
		// plan
		`{"steps": ["s1"], "datasets": ["d"], "metrics": ["m"], "risks": ["r"]}`,
	}}
	ingestor := &stubIngestor{}
	w := newTestWorkflow(store, ingestor, completer)

	result, err := w.Run(ctx, "u1", "topic", 2)
	require.NoError(t, err)
	assert.NotEmpty(t, result.RunID)
	require.Len(t, result.Clusters, 1)
	require.Len(t, result.Summaries, 1)
	require.Len(t, result.Hypotheses, 1)
	require.Len(t, result.Plans, 1)
	assert.Equal(t, "H1", result.Plans[0].HypothesisText)
	assert.Contains(t, result.Logs, "Clustering 2 papers for topic 'topic'")

	// Corpus already holds k papers, so no ingestion happened.
	assert.Equal(t, 0, ingestor.calls)

	// Artifacts landed under the run id with plan linkage by text.
	hyps, err := store.RunHypotheses(ctx, "u1", result.RunID)
	require.NoError(t, err)
	require.Len(t, hyps, 1)

	plans, err := store.RunPlans(ctx, "u1", result.RunID)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, hyps[0].ID, plans[0].HypothesisID)
	assert.Contains(t, plans[0].Plan, "Steps:\n- s1")
}

func TestWorkflowEnsuresCorpusWhenSmall(t *testing.T) {
	store := newTestStore(t)
	seedPaper(t, store, "u1", "1", "Only topic paper", "topic")

	completer := &scriptedCompleter{responses: []string{
		`[]`, // cluster returns nothing; later stages make no calls
	}}
	ingestor := &stubIngestor{report: ingest.Report{Processed: 3, Embedded: 3}}
	w := newTestWorkflow(store, ingestor, completer)

	result, err := w.Run(context.Background(), "u1", "topic", 5)
	require.NoError(t, err)
	assert.Equal(t, 1, ingestor.calls)
	assert.Contains(t, result.Logs, "Corpus ensured. processed=3, embedded=3")
	assert.Empty(t, result.Clusters)
	assert.Empty(t, result.Plans)
}

func TestWorkflowSwallowsIngestFailure(t *testing.T) {
	store := newTestStore(t)
	seedPaper(t, store, "u1", "1", "Topic paper", "topic")

	completer := &scriptedCompleter{responses: []string{`[]`}}
	ingestor := &stubIngestor{err: fmt.Errorf("arXiv unreachable")}
	w := newTestWorkflow(store, ingestor, completer)

	result, err := w.Run(context.Background(), "u1", "topic", 5)
	require.NoError(t, err)
	require.NotEmpty(t, result.Logs)
	assert.Contains(t, result.Logs[0], "Corpus ensure failed or partial")
}

func TestWorkflowRunsAreScopedAndDistinct(t *testing.T) {
	store := newTestStore(t)
	seedPaper(t, store, "u1", "1", "Topic A", "topic")
	seedPaper(t, store, "u2", "2", "Topic B", "topic")

	mkCompleter := func() *scriptedCompleter {
		return &scriptedCompleter{responses: []string{`[]`}}
	}

	w1 := newTestWorkflow(store, &stubIngestor{report: ingest.Report{}}, mkCompleter())
	r1, err := w1.Run(context.Background(), "u1", "topic", 1)
	require.NoError(t, err)

	w2 := newTestWorkflow(store, &stubIngestor{report: ingest.Report{}}, mkCompleter())
	r2, err := w2.Run(context.Background(), "u2", "topic", 1)
	require.NoError(t, err)

	assert.NotEqual(t, r1.RunID, r2.RunID)
}

func TestWorkflowRejectsEmptyScope(t *testing.T) {
	store := newTestStore(t)
	w := newTestWorkflow(store, &stubIngestor{}, &scriptedCompleter{})
	_, err := w.Run(context.Background(), "", "topic", 5)
	assert.ErrorIs(t, err, scope.ErrEmptyScope)
}

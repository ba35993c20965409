// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agents

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/corpus"
	"github.com/pdiddy/research-assistant/internal/ingest"
	"github.com/pdiddy/research-assistant/internal/scope"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// Ingestor is the slice of ingestion the workflow needs to top up a
// too-small corpus.
type Ingestor interface {
	FetchAndStore(ctx context.Context, sc scope.ID, query string, topK int) (ingest.Report, error)
}

// Workflow runs the full research pipeline for one scope: ensure the
// corpus is large enough, cluster, summarize, hypothesize, plan, and
// persist the artifacts under a fresh run id.
type Workflow struct {
	store        *corpus.Store
	ingestor     Ingestor
	clusterer    *Clusterer
	summarizer   *Summarizer
	hypothesizer *Hypothesizer
	planner      *Planner
	log          *zap.Logger
}

// NewWorkflow wires the four stages over shared store, retriever, and
// completer.
func NewWorkflow(store *corpus.Store, ingestor Ingestor, clusterer *Clusterer, summarizer *Summarizer, hypothesizer *Hypothesizer, planner *Planner, log *zap.Logger) *Workflow {
	if log == nil {
		log = zap.NewNop()
	}
	return &Workflow{
		store:        store,
		ingestor:     ingestor,
		clusterer:    clusterer,
		summarizer:   summarizer,
		hypothesizer: hypothesizer,
		planner:      planner,
		log:          log,
	}
}

// Run executes one workflow over the scope's corpus. Stage fallbacks keep
// the run going through unusable model output; only storage failures and
// completion errors abort it.
func (w *Workflow) Run(ctx context.Context, sc scope.ID, topic string, k int) (types.RunResult, error) {
	if err := sc.Validate(); err != nil {
		return types.RunResult{}, err
	}
	if k <= 0 {
		k = types.DefaultPaperLimit
	}

	runID := uuid.NewString()
	var logs []string

	logs = w.ensureCorpus(ctx, sc, topic, k, logs)

	logs = append(logs, fmt.Sprintf("Clustering %d papers for topic '%s'", k, topic))
	clusters, err := w.clusterer.Run(ctx, sc, topic, k)
	if err != nil {
		return types.RunResult{}, fmt.Errorf("cluster stage: %w", err)
	}

	summaries, err := w.summarizer.Run(ctx, sc, clusters)
	if err != nil {
		return types.RunResult{}, fmt.Errorf("summarize stage: %w", err)
	}

	hypotheses, err := w.hypothesizer.Run(ctx, summaries)
	if err != nil {
		return types.RunResult{}, fmt.Errorf("hypothesize stage: %w", err)
	}

	plans, err := w.planner.Run(ctx, hypotheses)
	if err != nil {
		return types.RunResult{}, fmt.Errorf("plan stage: %w", err)
	}

	if err := w.store.PersistRunArtifacts(ctx, sc, runID, clusters, hypotheses, plans); err != nil {
		return types.RunResult{}, fmt.Errorf("persisting run artifacts: %w", err)
	}

	w.log.Info("workflow complete",
		zap.String("run_id", runID),
		zap.String("scope", string(sc)),
		zap.Int("clusters", len(clusters)),
		zap.Int("hypotheses", len(hypotheses)),
		zap.Int("plans", len(plans)))

	return types.RunResult{
		RunID:      runID,
		Clusters:   clusters,
		Summaries:  summaries,
		Hypotheses: hypotheses,
		Plans:      plans,
		Logs:       logs,
	}, nil
}

// ensureCorpus tops up the scope's corpus from arXiv when it holds fewer
// than k papers. Ingestion failures are logged and swallowed so the run
// continues over whatever the scope already has.
func (w *Workflow) ensureCorpus(ctx context.Context, sc scope.ID, topic string, k int, logs []string) []string {
	count, err := w.store.CountPapers(ctx, sc)
	if err != nil {
		msg := fmt.Sprintf("Corpus ensure failed or partial: %v", err)
		w.log.Warn(msg)
		return append(logs, msg)
	}
	if count >= k {
		return logs
	}

	report, err := w.ingestor.FetchAndStore(ctx, sc, topic, k)
	if err != nil {
		msg := fmt.Sprintf("Corpus ensure failed or partial: %v", err)
		w.log.Warn(msg)
		return append(logs, msg)
	}

	msg := fmt.Sprintf("Corpus ensured. processed=%d, embedded=%d", report.Processed, report.Embedded)
	w.log.Info(msg)
	return append(logs, msg)
}

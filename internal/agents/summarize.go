// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/corpus"
	"github.com/pdiddy/research-assistant/internal/llm"
	"github.com/pdiddy/research-assistant/internal/scope"
	"github.com/pdiddy/research-assistant/pkg/types"
)

const summarizeSystemPrompt = "Role: Research summarizer.\n" +
	"Task: For the cluster, produce structured summary.\n" +
	"Rules:\n" +
	"- Output STRICT JSON object with keys: key_points (5-8), limitations (2-4), representative_papers.\n" +
	"- representative_papers: list[str] formatted as 'Title (arXiv:id)' when available.\n" +
	"- Do NOT include explanations outside JSON."

// Intake caps for summarizer output.
const (
	maxKeyPoints           = 8
	maxLimitations         = 4
	maxRepresentative      = 8
	fallbackRepresentative = 5
)

// Summarizer produces one structured summary per cluster.
type Summarizer struct {
	store     *corpus.Store
	completer llm.Completer
	log       *zap.Logger
}

// NewSummarizer builds the summarize stage.
func NewSummarizer(store *corpus.Store, completer llm.Completer, log *zap.Logger) *Summarizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Summarizer{store: store, completer: completer, log: log}
}

// summaryPayload is the summary object as the model returns it.
type summaryPayload struct {
	KeyPoints            []string `json:"key_points"`
	Limitations          []string `json:"limitations"`
	RepresentativePapers []string `json:"representative_papers"`
}

// Run summarizes each cluster with one completion. When a cluster's
// summary cannot be parsed, a fixed fallback summary stands in so every
// cluster produces exactly one summary.
func (s *Summarizer) Run(ctx context.Context, sc scope.ID, clusters []types.Cluster) ([]types.ClusterSummary, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	if len(clusters) == 0 {
		return nil, nil
	}

	summaries := make([]types.ClusterSummary, 0, len(clusters))
	for _, cl := range clusters {
		papers, err := s.store.QueryPapers(ctx, sc, corpus.PaperFilter{IDs: cl.PaperIDs}, 0)
		if err != nil {
			return nil, fmt.Errorf("loading cluster %q papers: %w", cl.Label, err)
		}

		refs := make([]string, 0, len(papers))
		var contextList strings.Builder
		for _, p := range papers {
			ref := p.Citation()
			refs = append(refs, ref)
			contextList.WriteString("- " + ref + "\n")
		}

		s.log.Info("summarizing cluster",
			zap.String("label", cl.Label), zap.Int("papers", len(refs)))
		text, err := s.completer.Complete(ctx, []llm.Message{
			llm.System(summarizeSystemPrompt),
			llm.Human(fmt.Sprintf("Cluster label: %s\nRepresentative titles:\n%s\nReturn only JSON.",
				cl.Label, contextList.String())),
		})
		if err != nil {
			return nil, fmt.Errorf("summarize completion for %q: %w", cl.Label, err)
		}

		raw, ok := llm.ExtractObject(text)
		if !ok {
			s.log.Warn("summarizer returned no JSON, using fallback",
				zap.String("label", cl.Label))
			summaries = append(summaries, fallbackSummary(cl.Label, refs))
			continue
		}

		var payload summaryPayload
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			s.log.Warn("summarizer returned malformed JSON, using fallback",
				zap.String("label", cl.Label), zap.Error(err))
			summaries = append(summaries, fallbackSummary(cl.Label, refs))
			continue
		}

		representative := payload.RepresentativePapers
		if representative == nil {
			representative = refs
		}
		summaries = append(summaries, types.ClusterSummary{
			ClusterLabel:         cl.Label,
			KeyPoints:            capStrings(payload.KeyPoints, maxKeyPoints),
			RepresentativePapers: capStrings(representative, maxRepresentative),
			Limitations:          capStrings(payload.Limitations, maxLimitations),
		})
	}
	return summaries, nil
}

func fallbackSummary(label string, refs []string) types.ClusterSummary {
	return types.ClusterSummary{
		ClusterLabel:         label,
		KeyPoints:            []string{"Summary unavailable"},
		RepresentativePapers: capStrings(refs, fallbackRepresentative),
		Limitations:          []string{"N/A"},
	}
}

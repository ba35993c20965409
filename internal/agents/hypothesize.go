// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/llm"
	"github.com/pdiddy/research-assistant/pkg/types"
)

const hypothesizeSystemPrompt = "Role: Hypothesis generator.\n" +
	"Task: Propose testable, falsifiable hypotheses from cluster summaries.\n" +
	"Rules:\n" +
	"- Output a STRICT JSON array.\n" +
	"- Each object keys: text (string), supporting_papers (list[str]).\n" +
	"- No prose outside JSON."

// fallbackHypothesisText stands in when the model output is unusable.
const fallbackHypothesisText = "No hypothesis generated"

// Hypothesizer derives hypotheses from all cluster summaries in one call.
type Hypothesizer struct {
	completer llm.Completer
	log       *zap.Logger
}

// NewHypothesizer builds the hypothesize stage.
func NewHypothesizer(completer llm.Completer, log *zap.Logger) *Hypothesizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hypothesizer{completer: completer, log: log}
}

// hypothesisPayload is one hypothesis as the model returns it.
type hypothesisPayload struct {
	Text             string   `json:"text"`
	SupportingPapers []string `json:"supporting_papers"`
}

// Run generates hypotheses from the summaries. No summaries means no
// hypotheses. Unusable model output degrades to a single fallback
// hypothesis rather than failing the run.
func (h *Hypothesizer) Run(ctx context.Context, summaries []types.ClusterSummary) ([]types.Hypothesis, error) {
	if len(summaries) == 0 {
		return nil, nil
	}

	blocks := make([]string, 0, len(summaries))
	for _, s := range summaries {
		blocks = append(blocks, fmt.Sprintf("Cluster: %s\nKey points: %v\nLimitations: %v\nReps: %v",
			s.ClusterLabel, s.KeyPoints, s.Limitations, s.RepresentativePapers))
	}

	h.log.Info("generating hypotheses", zap.Int("summaries", len(summaries)))
	text, err := h.completer.Complete(ctx, []llm.Message{
		llm.System(hypothesizeSystemPrompt),
		llm.Human(strings.Join(blocks, "\n\n") + "\nReturn STRICT JSON array only."),
	})
	if err != nil {
		return nil, fmt.Errorf("hypothesize completion: %w", err)
	}

	raw, ok := llm.ExtractArray(text)
	if !ok {
		h.log.Warn("hypothesizer returned no JSON, falling back to single hypothesis")
		return []types.Hypothesis{{Text: fallbackHypothesisText, SupportingPapers: []string{}}}, nil
	}

	var payloads []hypothesisPayload
	if err := json.Unmarshal([]byte(raw), &payloads); err != nil {
		h.log.Warn("hypothesizer returned malformed JSON, falling back", zap.Error(err))
		return []types.Hypothesis{{Text: fallbackHypothesisText, SupportingPapers: []string{}}}, nil
	}

	var out []types.Hypothesis
	for _, p := range payloads {
		if p.Text == "" {
			continue
		}
		out = append(out, types.Hypothesis{
			Text:             p.Text,
			SupportingPapers: p.SupportingPapers,
		})
	}
	return out, nil
}

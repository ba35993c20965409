// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/llm"
	"github.com/pdiddy/research-assistant/pkg/types"
)

const planSystemPrompt = "Role: Experiment designer.\n" +
	"Task: Create a concise, actionable plan for the hypothesis.\n" +
	"Rules: Output STRICT JSON object with keys: steps (5-8), datasets (2-4), metrics (2-4), risks (2-4).\n" +
	"No text outside JSON."

// fallbackPlanStep stands in when the model output is unusable.
const fallbackPlanStep = "No plan generated"

// Cap limits for plan intake.
const (
	maxPlanSteps = 8
	maxPlanLists = 4
)

// Planner designs one experiment plan per hypothesis.
type Planner struct {
	completer llm.Completer
	log       *zap.Logger
}

// NewPlanner builds the plan stage.
func NewPlanner(completer llm.Completer, log *zap.Logger) *Planner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Planner{completer: completer, log: log}
}

// planPayload is the plan object as the model returns it.
type planPayload struct {
	Steps    []string `json:"steps"`
	Datasets []string `json:"datasets"`
	Metrics  []string `json:"metrics"`
	Risks    []string `json:"risks"`
}

// Run produces one plan per hypothesis, each from its own completion. A
// hypothesis whose plan cannot be parsed gets the fallback plan; the rest
// are unaffected.
func (p *Planner) Run(ctx context.Context, hypotheses []types.Hypothesis) ([]types.ExperimentPlan, error) {
	if len(hypotheses) == 0 {
		return nil, nil
	}

	plans := make([]types.ExperimentPlan, 0, len(hypotheses))
	for _, h := range hypotheses {
		p.log.Info("designing experiment plan")
		text, err := p.completer.Complete(ctx, []llm.Message{
			llm.System(planSystemPrompt),
			llm.Human(fmt.Sprintf("Hypothesis: %s\nSupporting papers: %v\nReturn STRICT JSON only.",
				h.Text, h.SupportingPapers)),
		})
		if err != nil {
			return nil, fmt.Errorf("plan completion: %w", err)
		}

		raw, ok := llm.ExtractObject(text)
		if !ok {
			p.log.Warn("planner returned no JSON, using fallback plan")
			plans = append(plans, fallbackPlan(h.Text))
			continue
		}

		var payload planPayload
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			p.log.Warn("planner returned malformed JSON, using fallback plan", zap.Error(err))
			plans = append(plans, fallbackPlan(h.Text))
			continue
		}

		plans = append(plans, types.ExperimentPlan{
			HypothesisText: h.Text,
			Steps:          capStrings(payload.Steps, maxPlanSteps),
			Datasets:       capStrings(payload.Datasets, maxPlanLists),
			Metrics:        capStrings(payload.Metrics, maxPlanLists),
			Risks:          capStrings(payload.Risks, maxPlanLists),
		})
	}
	return plans, nil
}

func fallbackPlan(hypothesisText string) types.ExperimentPlan {
	return types.ExperimentPlan{
		HypothesisText: hypothesisText,
		Steps:          []string{fallbackPlanStep},
		Datasets:       []string{},
		Metrics:        []string{},
		Risks:          []string{},
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/corpus"
	"github.com/pdiddy/research-assistant/internal/llm"
	"github.com/pdiddy/research-assistant/internal/scope"
	"github.com/pdiddy/research-assistant/pkg/types"
)

const clusterSystemPrompt = "Role: Research organizer.\n" +
	"Task: Group provided papers (IDs and metadata) into 2-6 coherent, on-topic clusters.\n" +
	"Rules:\n" +
	"- Consider only on-topic items for the given topic.\n" +
	"- Use titles and abstracts.\n" +
	"- Output STRICT JSON array with objects having keys: label, paper_ids, rationale.\n" +
	"- label: short string; paper_ids: list[int] (from provided IDs); rationale: 1-3 sentences.\n" +
	"- Do NOT include any extra keys or text outside JSON."

// summaryTruncateLen bounds how much of each abstract goes into the prompt.
const summaryTruncateLen = 2000

// Clusterer groups a scope's papers into topical clusters.
type Clusterer struct {
	store     *corpus.Store
	retriever Retriever
	completer llm.Completer
	log       *zap.Logger
}

// NewClusterer builds the cluster stage.
func NewClusterer(store *corpus.Store, retriever Retriever, completer llm.Completer, log *zap.Logger) *Clusterer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Clusterer{store: store, retriever: retriever, completer: completer, log: log}
}

// clusterItem is one paper as presented to the model.
type clusterItem struct {
	ID      int64  `json:"id"`
	ArxivID string `json:"arxiv_id"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Link    string `json:"link"`
}

// clusterPayload is one cluster as the model returns it.
type clusterPayload struct {
	Label     string  `json:"label"`
	PaperIDs  []int64 `json:"paper_ids"`
	Rationale string  `json:"rationale"`
}

// Run selects up to limit on-topic papers and asks the model to group
// them. The semantic pre-filter narrows candidates through the vector
// index; if it yields nothing a keyword match over title and summary is
// used instead. Unusable model output produces an empty cluster list, not
// an error, so the workflow can continue.
func (c *Clusterer) Run(ctx context.Context, sc scope.ID, topic string, limit int) ([]types.Cluster, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = types.DefaultPaperLimit
	}

	candidateIDs := c.prefilter(ctx, sc, topic, limit)

	filter := corpus.PaperFilter{IDs: candidateIDs}
	if len(candidateIDs) == 0 {
		filter = corpus.PaperFilter{Match: topic}
	}
	papers, err := c.store.QueryPapers(ctx, sc, filter, limit)
	if err != nil {
		return nil, fmt.Errorf("loading papers: %w", err)
	}
	if len(papers) == 0 {
		c.log.Warn("no papers available for clustering",
			zap.String("scope", string(sc)), zap.String("topic", topic))
		return nil, nil
	}

	items := make([]clusterItem, 0, len(papers))
	known := make(map[int64]bool, len(papers))
	for _, p := range papers {
		summary := p.Summary
		if len(summary) > summaryTruncateLen {
			summary = summary[:summaryTruncateLen]
		}
		items = append(items, clusterItem{
			ID:      p.ID,
			ArxivID: p.ArxivID,
			Title:   p.Title,
			Summary: summary,
			Link:    p.Link,
		})
		known[p.ID] = true
	}

	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encoding papers: %w", err)
	}

	c.log.Info("clustering papers",
		zap.String("topic", topic), zap.Int("papers", len(items)))
	text, err := c.completer.Complete(ctx, []llm.Message{
		llm.System(clusterSystemPrompt),
		llm.Human(fmt.Sprintf("Topic: %s\nPapers JSON:\n%s\nReturn STRICT JSON array only. Ignore off-topic items.",
			topic, itemsJSON)),
	})
	if err != nil {
		return nil, fmt.Errorf("cluster completion: %w", err)
	}

	raw, ok := llm.ExtractArray(text)
	if !ok {
		c.log.Error("clustering model did not return a JSON array")
		return nil, nil
	}

	var payloads []clusterPayload
	if err := json.Unmarshal([]byte(raw), &payloads); err != nil {
		c.log.Error("clustering model returned malformed JSON", zap.Error(err))
		return nil, nil
	}

	var clusters []types.Cluster
	for _, p := range payloads {
		ids := make([]int64, 0, len(p.PaperIDs))
		for _, id := range p.PaperIDs {
			if known[id] {
				ids = append(ids, id)
			}
		}
		if p.Label == "" || len(ids) == 0 {
			c.log.Warn("skipping bad cluster item", zap.String("label", p.Label))
			continue
		}
		clusters = append(clusters, types.Cluster{
			Label:     p.Label,
			PaperIDs:  ids,
			Rationale: p.Rationale,
		})
	}
	return clusters, nil
}

// prefilter collects candidate paper ids by semantic similarity, deduped
// in rank order. Failures degrade to an empty candidate set.
func (c *Clusterer) prefilter(ctx context.Context, sc scope.ID, topic string, limit int) []int64 {
	k := limit * 3
	if k < limit {
		k = limit
	}
	results, err := c.retriever.Query(ctx, sc, topic, k)
	if err != nil {
		c.log.Warn("semantic prefilter failed", zap.Error(err))
		return nil
	}

	var (
		ids  []int64
		seen = make(map[int64]bool)
	)
	for _, r := range results {
		id, err := strconv.ParseInt(r.Metadata["paper_id"], 10, 64)
		if err != nil || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	c.log.Debug("semantic prefilter collected candidates",
		zap.String("scope", string(sc)), zap.Int("count", len(ids)))
	return ids
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rag answers questions over a user's corpus by retrieving the
// nearest indexed chunks and grounding one completion on them.
package rag

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/llm"
	"github.com/pdiddy/research-assistant/internal/scope"
	"github.com/pdiddy/research-assistant/internal/vecindex"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// DefaultTopK is how many chunks ground an answer when the caller does
// not choose.
const DefaultTopK = 5

const systemPrompt = "You are a precise research assistant. Answer the user's question using the provided context only. " +
	"Cite specific papers as [n] with title and arXiv id. If the answer is not in the context, say you don't know."

// Retriever is the slice of the vector index answering needs.
type Retriever interface {
	Query(ctx context.Context, sc scope.ID, query string, k int) ([]vecindex.Result, error)
}

// Citation points at one retrieved source, numbered as cited in the answer.
type Citation struct {
	Index   int
	Title   string
	ArxivID string
	Link    string
}

// ContextChunk is one retrieved chunk that grounded the answer.
type ContextChunk struct {
	Text     string
	Metadata map[string]string
}

// Answer is the result of one question.
type Answer struct {
	Text      string
	Citations []Citation
	Contexts  []ContextChunk
}

// Answerer runs retrieval-augmented answering.
type Answerer struct {
	retriever Retriever
	completer llm.Completer
	cfg       types.AnswerConfig
	log       *zap.Logger
}

// New builds an Answerer.
func New(retriever Retriever, completer llm.Completer, cfg types.AnswerConfig, log *zap.Logger) *Answerer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Answerer{retriever: retriever, completer: completer, cfg: cfg, log: log}
}

// Ask retrieves the scope's top-k chunks for the question and produces one
// grounded completion. With an empty corpus the model still runs, with no
// context, and typically reports it does not know.
func (a *Answerer) Ask(ctx context.Context, sc scope.ID, question string, k int) (Answer, error) {
	if err := sc.Validate(); err != nil {
		return Answer{}, err
	}
	if strings.TrimSpace(question) == "" {
		return Answer{}, fmt.Errorf("question is empty")
	}
	if k <= 0 {
		k = a.cfg.TopK
	}
	if k <= 0 {
		k = DefaultTopK
	}

	results, err := a.retriever.Query(ctx, sc, question, k)
	if err != nil {
		return Answer{}, fmt.Errorf("retrieving context: %w", err)
	}

	userPrompt := fmt.Sprintf(
		"Question:\n%s\n\nContext:\n%s\n\n"+
			"Instructions: Provide a concise answer followed by a bullet list of citations as \"[n] Title (arXiv:id)\".",
		question, formatContexts(results),
	)

	text, err := a.completer.Complete(ctx, []llm.Message{
		llm.System(systemPrompt),
		llm.Human(userPrompt),
	})
	if err != nil {
		return Answer{}, fmt.Errorf("generating answer: %w", err)
	}

	answer := Answer{Text: text}
	for i, r := range results {
		answer.Citations = append(answer.Citations, citationFor(i+1, r.Metadata))
		answer.Contexts = append(answer.Contexts, ContextChunk{Text: r.Text, Metadata: r.Metadata})
	}

	a.log.Debug("answered question",
		zap.String("scope", string(sc)),
		zap.Int("contexts", len(results)))
	return answer, nil
}

// formatContexts renders retrieved chunks as numbered, titled blocks.
func formatContexts(results []vecindex.Result) string {
	blocks := make([]string, 0, len(results))
	for i, r := range results {
		title := r.Metadata["title"]
		if title == "" {
			title = "Unknown Title"
		}
		arxivID := r.Metadata["arxiv_id"]
		if arxivID == "" {
			arxivID = "N/A"
		}
		blocks = append(blocks, fmt.Sprintf("[%d] %s (arXiv:%s)\n%s", i+1, title, arxivID, r.Text))
	}
	return strings.Join(blocks, "\n\n")
}

func citationFor(index int, meta map[string]string) Citation {
	c := Citation{
		Index:   index,
		Title:   meta["title"],
		ArxivID: meta["arxiv_id"],
		Link:    meta["link"],
	}
	if c.Title == "" {
		c.Title = "Unknown Title"
	}
	if c.Link == "" && c.ArxivID != "" {
		c.Link = "https://arxiv.org/abs/" + c.ArxivID
	}
	return c
}

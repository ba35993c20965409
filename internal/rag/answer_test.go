// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rag

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/llm"
	"github.com/pdiddy/research-assistant/internal/scope"
	"github.com/pdiddy/research-assistant/internal/vecindex"
	"github.com/pdiddy/research-assistant/pkg/types"
)

type fakeRetriever struct {
	results []vecindex.Result
	gotK    int
	gotSc   scope.ID
}

func (f *fakeRetriever) Query(_ context.Context, sc scope.ID, _ string, k int) ([]vecindex.Result, error) {
	f.gotK = k
	f.gotSc = sc
	if k < len(f.results) {
		return f.results[:k], nil
	}
	return f.results, nil
}

type fakeCompleter struct {
	response string
	err      error
	messages []llm.Message
}

func (f *fakeCompleter) Complete(_ context.Context, messages []llm.Message) (string, error) {
	f.messages = messages
	return f.response, f.err
}

func TestAskGroundsAnswerOnRetrievedChunks(t *testing.T) {
	retriever := &fakeRetriever{results: []vecindex.Result{
		{
			Text: "Attention improves translation.",
			Metadata: map[string]string{
				"title":    "Attention Paper",
				"arxiv_id": "2301.07041",
				"user_id":  "u1",
			},
		},
		{
			Text:     "Uploaded notes on optimizers.",
			Metadata: map[string]string{"title": "My Notes", "user_id": "u1"},
		},
	}}
	completer := &fakeCompleter{response: "Attention helps [1]."}
	answerer := New(retriever, completer, types.AnswerConfig{}, zap.NewNop())

	answer, err := answerer.Ask(context.Background(), "u1", "Does attention help?", 0)
	require.NoError(t, err)
	assert.Equal(t, "Attention helps [1].", answer.Text)
	assert.Equal(t, scope.ID("u1"), retriever.gotSc)
	assert.Equal(t, DefaultTopK, retriever.gotK)

	require.Len(t, completer.messages, 2)
	assert.Equal(t, llm.RoleSystem, completer.messages[0].Role)
	prompt := completer.messages[1].Content
	assert.Contains(t, prompt, "Question:\nDoes attention help?")
	assert.Contains(t, prompt, "[1] Attention Paper (arXiv:2301.07041)\nAttention improves translation.")
	assert.Contains(t, prompt, "[2] My Notes (arXiv:N/A)")

	require.Len(t, answer.Citations, 2)
	assert.Equal(t, 1, answer.Citations[0].Index)
	assert.Equal(t, "https://arxiv.org/abs/2301.07041", answer.Citations[0].Link)
	assert.Empty(t, answer.Citations[1].Link)
	require.Len(t, answer.Contexts, 2)
}

func TestAskWithEmptyCorpusStillCompletes(t *testing.T) {
	completer := &fakeCompleter{response: "I don't know."}
	answerer := New(&fakeRetriever{}, completer, types.AnswerConfig{}, zap.NewNop())

	answer, err := answerer.Ask(context.Background(), "u1", "Anything?", 3)
	require.NoError(t, err)
	assert.Equal(t, "I don't know.", answer.Text)
	assert.Empty(t, answer.Citations)
	assert.Contains(t, completer.messages[1].Content, "Context:\n\n")
}

func TestAskUsesConfiguredTopK(t *testing.T) {
	retriever := &fakeRetriever{}
	answerer := New(retriever, &fakeCompleter{response: "ok"}, types.AnswerConfig{TopK: 7}, zap.NewNop())

	_, err := answerer.Ask(context.Background(), "u1", "q", 0)
	require.NoError(t, err)
	assert.Equal(t, 7, retriever.gotK)

	// An explicit k beats the configured default.
	_, err = answerer.Ask(context.Background(), "u1", "q", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, retriever.gotK)
}

func TestAskValidation(t *testing.T) {
	answerer := New(&fakeRetriever{}, &fakeCompleter{}, types.AnswerConfig{}, zap.NewNop())

	_, err := answerer.Ask(context.Background(), "", "q", 1)
	assert.ErrorIs(t, err, scope.ErrEmptyScope)

	_, err = answerer.Ask(context.Background(), "u1", "   ", 1)
	assert.Error(t, err)
}

func TestAskPropagatesCompleterError(t *testing.T) {
	completer := &fakeCompleter{err: fmt.Errorf("quota exceeded")}
	answerer := New(&fakeRetriever{}, completer, types.AnswerConfig{}, zap.NewNop())

	_, err := answerer.Ask(context.Background(), "u1", "q", 1)
	assert.Error(t, err)
}

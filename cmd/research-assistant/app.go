// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-assistant/internal/corpus"
	"github.com/pdiddy/research-assistant/internal/embedding"
	"github.com/pdiddy/research-assistant/internal/llm"
	"github.com/pdiddy/research-assistant/internal/scope"
	"github.com/pdiddy/research-assistant/internal/secrets"
	"github.com/pdiddy/research-assistant/internal/vecindex"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// loadConfig assembles the full configuration from the config file,
// RESEARCH_ASSISTANT_* environment variables, and .secrets/ fallbacks.
func loadConfig() types.AssistantConfig {
	viper.SetDefault("store.path", "research-assistant.db")
	viper.SetDefault("vector.path", "research-assistant-vectors.db")
	viper.SetDefault("ai.model", "gemini-2.5-flash")
	viper.SetDefault("embedding.model", "gemini-embedding-001")
	viper.SetDefault("ingest.max_results", 50)
	viper.SetDefault("ingest.chunk_size", 1200)
	viper.SetDefault("ingest.chunk_overlap", 200)
	viper.SetDefault("ingest.timeout", 30*time.Second)
	viper.SetDefault("answer.top_k", 5)
	viper.SetDefault("workflow.paper_limit", types.DefaultPaperLimit)

	apiKey := secretDefault(secrets.KeyGeminiAPI, viper.GetString("ai.api_key"))

	return types.AssistantConfig{
		Store:  types.StoreConfig{Path: viper.GetString("store.path")},
		Vector: types.VectorConfig{Path: viper.GetString("vector.path")},
		AI: types.AIConfig{
			Model:  viper.GetString("ai.model"),
			APIKey: apiKey,
		},
		Embedding: types.EmbeddingConfig{
			Model:  viper.GetString("embedding.model"),
			APIKey: secretDefault(secrets.KeyGeminiAPI, viper.GetString("embedding.api_key")),
		},
		Ingest: types.IngestConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("ingest.timeout"),
				UserAgent: "research-assistant/" + version,
			},
			MaxResults:   viper.GetInt("ingest.max_results"),
			ChunkSize:    viper.GetInt("ingest.chunk_size"),
			ChunkOverlap: viper.GetInt("ingest.chunk_overlap"),
		},
		Answer:   types.AnswerConfig{TopK: viper.GetInt("answer.top_k")},
		Workflow: types.WorkflowConfig{PaperLimit: viper.GetInt("workflow.paper_limit")},
	}
}

// userStateFile remembers the auto-minted scope id between invocations.
const userStateFile = ".research-assistant-user"

// currentScope resolves the user scope: --user flag, then RESEARCH_ASSISTANT_USER
// or the config file, then the state file. With none of those a fresh scope
// is minted and persisted so later invocations share it.
func currentScope(cmd *cobra.Command) (scope.ID, error) {
	user, _ := cmd.Flags().GetString("user")
	if user == "" {
		user = viper.GetString("user")
	}
	if user == "" {
		if data, err := os.ReadFile(userStateFile); err == nil {
			user = strings.TrimSpace(string(data))
		}
	}
	if user == "" {
		session := scope.NewSession()
		if err := os.WriteFile(userStateFile, []byte(session.Scope().String()+"\n"), 0o600); err != nil {
			return "", fmt.Errorf("persisting user scope: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Minted user scope %s (saved to %s)\n", session.Scope(), userStateFile)
		return session.Scope(), nil
	}

	session, err := scope.SessionFor(scope.ID(user))
	if err != nil {
		return "", err
	}
	return session.Scope(), nil
}

// app bundles the components a command may need, opened once and closed
// together.
type app struct {
	cfg   types.AssistantConfig
	log   *zap.Logger
	store *corpus.Store
	index *vecindex.Index
	chat  *llm.Gemini
}

// newApp opens the corpus store and vector index. When withAI is set it
// also builds the embedding engine (vector writes and queries need it)
// and the chat client.
func newApp(ctx context.Context, cmd *cobra.Command, withAI bool) (*app, error) {
	log, err := newLogger(cmd)
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}

	cfg := loadConfig()

	store, err := corpus.Open(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("opening corpus store: %w", err)
	}

	backend, err := vecindex.OpenSQLiteVec(cfg.Vector)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("opening vector index: %w", err)
	}

	a := &app{cfg: cfg, log: log, store: store}

	if withAI {
		if cfg.AI.APIKey == "" {
			backend.Close()
			store.Close()
			return nil, fmt.Errorf("no Gemini API key: set ai.api_key, RESEARCH_ASSISTANT_AI_API_KEY, or .secrets/%s", secrets.KeyGeminiAPI)
		}
		embedder, err := embedding.NewGenAIEngine(ctx, cfg.Embedding)
		if err != nil {
			backend.Close()
			store.Close()
			return nil, fmt.Errorf("building embedding engine: %w", err)
		}
		a.index = vecindex.New(backend, embedder, log)
		a.chat = llm.NewGemini(cfg.AI)
	} else {
		a.index = vecindex.New(backend, nil, log)
	}

	return a, nil
}

func (a *app) Close() {
	a.index.Close()
	a.store.Close()
	_ = a.log.Sync()
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printYAML writes v to stdout as YAML.
func printYAML(v any) error {
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(v)
}

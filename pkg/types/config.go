// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "research-assistant/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// StoreConfig holds settings for the relational corpus store.
type StoreConfig struct {
	// Path is the SQLite database file path.
	Path string `json:"path" yaml:"path"`
}

// VectorConfig holds settings for the vector index.
type VectorConfig struct {
	// Path is the SQLite database file path backing the index.
	Path string `json:"path" yaml:"path"`
}

// AIConfig holds shared settings for components that call a generative
// AI API.
type AIConfig struct {
	// Model is the chat model identifier (e.g. "gemini-2.0-flash").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

// EmbeddingConfig holds settings for the embedding provider.
type EmbeddingConfig struct {
	// Model is the embedding model identifier.
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the embedding API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

// IngestConfig holds settings for the ingestion component.
type IngestConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults caps how many papers one fetch may pull (default 50).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// ChunkSize is the target chunk length for uploaded text (default 1200).
	ChunkSize int `json:"chunk_size" yaml:"chunk_size"`

	// ChunkOverlap is the overlap between adjacent chunks (default 200).
	ChunkOverlap int `json:"chunk_overlap" yaml:"chunk_overlap"`
}

// AnswerConfig holds settings for retrieval-augmented answering.
type AnswerConfig struct {
	// TopK is the default number of chunks retrieved per question
	// (default 5).
	TopK int `json:"top_k" yaml:"top_k"`
}

// WorkflowConfig holds settings for the agent pipeline.
type WorkflowConfig struct {
	// PaperLimit is the default corpus size a run works over (default 20).
	PaperLimit int `json:"paper_limit" yaml:"paper_limit"`
}

// AssistantConfig groups all component configurations.
type AssistantConfig struct {
	Store     StoreConfig     `json:"store" yaml:"store"`
	Vector    VectorConfig    `json:"vector" yaml:"vector"`
	AI        AIConfig        `json:"ai" yaml:"ai"`
	Embedding EmbeddingConfig `json:"embedding" yaml:"embedding"`
	Ingest    IngestConfig    `json:"ingest" yaml:"ingest"`
	Answer    AnswerConfig    `json:"answer" yaml:"answer"`
	Workflow  WorkflowConfig  `json:"workflow" yaml:"workflow"`
}

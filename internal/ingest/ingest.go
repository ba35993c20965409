// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest brings papers into a user's corpus, either by fetching
// metadata from arXiv or by chunking uploaded full text, and embeds the
// text into the user's vector namespace.
package ingest

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/corpus"
	"github.com/pdiddy/research-assistant/internal/scope"
	"github.com/pdiddy/research-assistant/internal/vecindex"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// Source fetches paper metadata for a free-text query.
type Source interface {
	Fetch(ctx context.Context, query string, maxResults int) ([]corpus.PaperFields, error)
}

// Indexer is the slice of the vector index ingestion needs.
type Indexer interface {
	Add(ctx context.Context, sc scope.ID, docs []vecindex.Document) error
}

// Ingestor writes papers into the corpus store and vector index.
type Ingestor struct {
	store  *corpus.Store
	index  Indexer
	source Source
	cfg    types.IngestConfig
	log    *zap.Logger
}

// New builds an Ingestor.
func New(store *corpus.Store, index Indexer, source Source, cfg types.IngestConfig, log *zap.Logger) *Ingestor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ingestor{store: store, index: index, source: source, cfg: cfg, log: log}
}

// Report summarizes one fetch run.
type Report struct {
	Processed int
	Embedded  int
	Titles    []string
}

// FetchAndStore fetches up to topK papers for the query, upserts each into
// the scope's corpus, and embeds the abstract of any paper not embedded
// yet. A failure on one paper is logged and skipped; the rest of the batch
// still lands.
func (in *Ingestor) FetchAndStore(ctx context.Context, sc scope.ID, query string, topK int) (Report, error) {
	if err := sc.Validate(); err != nil {
		return Report{}, err
	}

	docs, err := in.source.Fetch(ctx, query, topK)
	if err != nil {
		return Report{}, fmt.Errorf("fetching papers: %w", err)
	}

	var report Report
	for _, fields := range docs {
		paper, _, err := in.store.UpsertPaper(ctx, sc, fields)
		if err != nil {
			in.log.Error("failed to store paper",
				zap.String("title", fields.Title), zap.Error(err))
			continue
		}
		report.Processed++
		report.Titles = append(report.Titles, paper.Title)

		if paper.Summary == "" || paper.Embedded {
			continue
		}
		if err := in.embedAbstract(ctx, sc, paper); err != nil {
			in.log.Error("failed to embed abstract",
				zap.Int64("paper_id", paper.ID), zap.Error(err))
			continue
		}
		report.Embedded++
	}

	in.log.Info("fetch complete",
		zap.String("scope", string(sc)),
		zap.Int("processed", report.Processed),
		zap.Int("embedded", report.Embedded))
	return report, nil
}

// embedAbstract records the abstract as chunk 0 and indexes it under the
// scope's namespace.
func (in *Ingestor) embedAbstract(ctx context.Context, sc scope.ID, paper types.Paper) error {
	chunk, err := in.store.RecordChunk(ctx, sc, paper.ID, 0, paper.Summary)
	if err != nil {
		return fmt.Errorf("recording chunk: %w", err)
	}

	vectorID := fmt.Sprintf("paper-%d-abs", paper.ID)
	doc := vecindex.Document{
		ID:       vectorID,
		Text:     paper.Summary,
		Metadata: paperMetadata(paper, 0),
	}
	if err := in.index.Add(ctx, sc, []vecindex.Document{doc}); err != nil {
		return fmt.Errorf("indexing abstract: %w", err)
	}

	if err := in.store.SetChunkVectorID(ctx, sc, chunk.ID, vectorID); err != nil {
		return fmt.Errorf("linking chunk: %w", err)
	}
	return in.store.MarkPaperEmbedded(ctx, sc, paper.ID)
}

// UploadText stores user-supplied full text as a new upload-source paper,
// splits it into chunks, and embeds every chunk. Returns the paper and the
// number of chunks indexed.
func (in *Ingestor) UploadText(ctx context.Context, sc scope.ID, title, authors, text string) (types.Paper, int, error) {
	if err := sc.Validate(); err != nil {
		return types.Paper{}, 0, err
	}
	if text == "" {
		return types.Paper{}, 0, fmt.Errorf("upload text is empty")
	}

	paper, _, err := in.store.UpsertPaper(ctx, sc, corpus.PaperFields{
		Title:   title,
		Authors: authors,
		Source:  types.SourceUpload,
	})
	if err != nil {
		return types.Paper{}, 0, fmt.Errorf("storing paper: %w", err)
	}

	size := in.cfg.ChunkSize
	if size <= 0 {
		size = DefaultChunkSize
	}
	overlap := in.cfg.ChunkOverlap
	if overlap <= 0 {
		overlap = DefaultChunkOverlap
	}

	pieces := SplitText(text, size, overlap)
	for i, piece := range pieces {
		chunk, err := in.store.RecordChunk(ctx, sc, paper.ID, i, piece)
		if err != nil {
			return types.Paper{}, 0, fmt.Errorf("recording chunk %d: %w", i, err)
		}

		vectorID := fmt.Sprintf("paper-%d-chunk-%d", paper.ID, i)
		doc := vecindex.Document{
			ID:       vectorID,
			Text:     piece,
			Metadata: paperMetadata(paper, i),
		}
		if err := in.index.Add(ctx, sc, []vecindex.Document{doc}); err != nil {
			return types.Paper{}, 0, fmt.Errorf("indexing chunk %d: %w", i, err)
		}
		if err := in.store.SetChunkVectorID(ctx, sc, chunk.ID, vectorID); err != nil {
			return types.Paper{}, 0, fmt.Errorf("linking chunk %d: %w", i, err)
		}
	}

	if err := in.store.MarkPaperEmbedded(ctx, sc, paper.ID); err != nil {
		return types.Paper{}, 0, fmt.Errorf("marking paper embedded: %w", err)
	}
	paper.Ingested = true
	paper.Embedded = true

	in.log.Info("upload complete",
		zap.String("scope", string(sc)),
		zap.Int64("paper_id", paper.ID),
		zap.Int("chunks", len(pieces)))
	return paper, len(pieces), nil
}

func paperMetadata(paper types.Paper, order int) map[string]string {
	return map[string]string{
		"paper_id": strconv.FormatInt(paper.ID, 10),
		"arxiv_id": paper.ArxivID,
		"title":    paper.Title,
		"order":    strconv.Itoa(order),
		"source":   string(paper.Source),
	}
}

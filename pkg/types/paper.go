// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// PaperSource identifies how a paper entered the corpus.
type PaperSource string

const (
	SourceArxiv  PaperSource = "arxiv"
	SourceUpload PaperSource = "upload"
)

// Paper holds metadata for one paper in a user's corpus.
// Within one user scope the arXiv id is unique; two scopes may hold
// papers with the same arXiv id independently.
type Paper struct {
	// ID is the internal row identifier.
	ID int64 `json:"id" yaml:"id"`

	// ArxivID is the external archival identifier (e.g. "2401.01234").
	// Empty for uploaded papers.
	ArxivID string `json:"arxiv_id,omitempty" yaml:"arxiv_id,omitempty"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Authors is the comma-joined author list as free text.
	Authors string `json:"authors" yaml:"authors"`

	// Summary is the abstract.
	Summary string `json:"summary" yaml:"summary"`

	// PublishedAt is the publication timestamp. Nil when the source
	// supplied no parseable date.
	PublishedAt *time.Time `json:"published_at,omitempty" yaml:"published_at,omitempty"`

	// Link is the source entry URL.
	Link string `json:"link,omitempty" yaml:"link,omitempty"`

	// PDFURL is the document URL, when the source exposes one.
	PDFURL string `json:"pdf_url,omitempty" yaml:"pdf_url,omitempty"`

	// Source records the provenance: arxiv or upload.
	Source PaperSource `json:"source" yaml:"source"`

	// Ingested reports whether the full text has been parsed into chunks.
	Ingested bool `json:"ingested" yaml:"ingested"`

	// Embedded reports whether vectors have been produced for this paper.
	Embedded bool `json:"embedded" yaml:"embedded"`

	// CreatedAt is the row creation time.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Citation renders the paper as a citation string: "Title (arXiv:id)",
// or the bare title when the paper has no arXiv id.
func (p Paper) Citation() string {
	if p.ArxivID == "" {
		return p.Title
	}
	return p.Title + " (arXiv:" + p.ArxivID + ")"
}

// Chunk is a contiguous slice of a paper's text, independently embeddable.
// A chunk belongs to exactly one paper; deleting the paper cascades.
type Chunk struct {
	// ID is the internal row identifier.
	ID int64 `json:"id" yaml:"id"`

	// PaperID references the owning paper.
	PaperID int64 `json:"paper_id" yaml:"paper_id"`

	// Ord is the ordinal position of the chunk within the paper.
	Ord int `json:"ord" yaml:"ord"`

	// Text is the raw chunk text.
	Text string `json:"text" yaml:"text"`

	// VectorID is the back-reference into the vector index, when the
	// chunk has been embedded.
	VectorID string `json:"vector_id,omitempty" yaml:"vector_id,omitempty"`
}

package adamsdoc

import (
	"context"
)

// Chunk is a bounded span of a document's text, the unit of retrieval.
// A chunk without an Embedding can only be matched by keyword scoring.
type Chunk struct {
	Text      string        `json:"text"`
	Embedding []float32     `json:"embedding,omitempty"`
	Metadata  ChunkMetadata `json:"metadata"`
}

// ChunkMetadata locates a chunk in its source document for citation.
type ChunkMetadata struct {
	DocumentID string `json:"documentId"`
	Title      string `json:"title,omitempty"`

	// Index is 0-based and contiguous within a document.
	Index int `json:"index"`

	// Approximate character offsets, derived from line numbers.
	StartChar int `json:"startChar"`
	EndChar   int `json:"endChar"`

	PageNumber int    `json:"pageNumber,omitempty"`
	TotalPages int    `json:"totalPages,omitempty"`
	Section    string `json:"section,omitempty"`

	// 1-based line range in the source text.
	StartLine int `json:"startLine,omitempty"`
	EndLine   int `json:"endLine,omitempty"`
}

// DocumentMetadata is caller-supplied information about a document being indexed.
type DocumentMetadata struct {
	Title string `json:"title,omitempty"`
}

// Embedder converts text into fixed-length vectors.
type Embedder interface {
	// Embed returns one vector per input text, in order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// SearchResult is a ranked chunk with its formatted citation.
type SearchResult struct {
	Chunk    *Chunk  `json:"chunk"`
	Score    float64 `json:"score"`
	Citation string  `json:"citation"`
}

// Retriever ranks indexed chunks against a question.
type Retriever interface {
	Search(ctx context.Context, question string, topK int) ([]SearchResult, error)
}

// IndexResult reports how a document was indexed.
type IndexResult struct {
	DocumentID string `json:"documentId"`
	Chunks     int    `json:"chunks"`
	Embedded   int    `json:"embedded"`
	TotalPages int    `json:"totalPages"`

	// EmbedErr is the first embedding failure, if any. Chunks whose batch
	// failed remain usable by keyword scoring.
	EmbedErr error `json:"-"`
}

// Indexer splits documents into chunks and makes them searchable.
type Indexer interface {
	// IndexDocument replaces any chunks previously indexed for documentID.
	// A totalPages of 0 means the page count is unknown.
	IndexDocument(ctx context.Context, documentID, text string, meta DocumentMetadata, totalPages int) (*IndexResult, error)
}

package mock

import (
	"context"

	"github.com/fwojciec/adamsdoc"
)

var (
	_ adamsdoc.Embedder  = (*Embedder)(nil)
	_ adamsdoc.Retriever = (*Retriever)(nil)
	_ adamsdoc.Indexer   = (*Indexer)(nil)
)

// Embedder is a mock implementation of adamsdoc.Embedder.
type Embedder struct {
	EmbedFn func(ctx context.Context, texts []string) ([][]float32, error)
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return e.EmbedFn(ctx, texts)
}

// Retriever is a mock implementation of adamsdoc.Retriever.
type Retriever struct {
	SearchFn func(ctx context.Context, question string, topK int) ([]adamsdoc.SearchResult, error)
}

func (r *Retriever) Search(ctx context.Context, question string, topK int) ([]adamsdoc.SearchResult, error) {
	return r.SearchFn(ctx, question, topK)
}

// Indexer is a mock implementation of adamsdoc.Indexer.
type Indexer struct {
	IndexDocumentFn func(ctx context.Context, documentID, text string, meta adamsdoc.DocumentMetadata, totalPages int) (*adamsdoc.IndexResult, error)
}

func (i *Indexer) IndexDocument(ctx context.Context, documentID, text string, meta adamsdoc.DocumentMetadata, totalPages int) (*adamsdoc.IndexResult, error) {
	return i.IndexDocumentFn(ctx, documentID, text, meta, totalPages)
}

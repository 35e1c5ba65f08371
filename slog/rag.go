package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/adamsdoc"
)

// Ensure the decorators implement their interfaces.
var (
	_ adamsdoc.Embedder  = (*LoggingEmbedder)(nil)
	_ adamsdoc.Indexer   = (*LoggingIndexer)(nil)
	_ adamsdoc.Retriever = (*LoggingRetriever)(nil)
	_ adamsdoc.Asker     = (*LoggingAsker)(nil)
)

// LoggingEmbedder wraps an Embedder with debug logging.
type LoggingEmbedder struct {
	next   adamsdoc.Embedder
	logger *slog.Logger
}

// NewLoggingEmbedder creates a new LoggingEmbedder.
func NewLoggingEmbedder(next adamsdoc.Embedder, logger *slog.Logger) *LoggingEmbedder {
	return &LoggingEmbedder{next: next, logger: logger}
}

// Embed delegates to the wrapped embedder and logs the batch.
func (e *LoggingEmbedder) Embed(ctx context.Context, texts []string) (vectors [][]float32, err error) {
	defer func(begin time.Time) {
		e.logger.Debug("embed",
			"texts", len(texts),
			"vectors", len(vectors),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Embed(ctx, texts)
}

// LoggingIndexer wraps an Indexer with logging.
type LoggingIndexer struct {
	next   adamsdoc.Indexer
	logger *slog.Logger
}

// NewLoggingIndexer creates a new LoggingIndexer.
func NewLoggingIndexer(next adamsdoc.Indexer, logger *slog.Logger) *LoggingIndexer {
	return &LoggingIndexer{next: next, logger: logger}
}

// IndexDocument delegates to the wrapped indexer and logs the result,
// including embedding failures that did not fail the call.
func (i *LoggingIndexer) IndexDocument(ctx context.Context, documentID, text string, meta adamsdoc.DocumentMetadata, totalPages int) (res *adamsdoc.IndexResult, err error) {
	defer func(begin time.Time) {
		attrs := []any{"id", documentID, "duration", time.Since(begin)}
		if res != nil {
			attrs = append(attrs, "chunks", res.Chunks, "embedded", res.Embedded, "pages", res.TotalPages)
			if res.EmbedErr != nil {
				attrs = append(attrs, "embed_err", res.EmbedErr)
			}
		}
		i.logger.Info("index document", append(attrs, "err", err)...)
	}(time.Now())
	return i.next.IndexDocument(ctx, documentID, text, meta, totalPages)
}

// LoggingRetriever wraps a Retriever with logging.
type LoggingRetriever struct {
	next   adamsdoc.Retriever
	logger *slog.Logger
}

// NewLoggingRetriever creates a new LoggingRetriever.
func NewLoggingRetriever(next adamsdoc.Retriever, logger *slog.Logger) *LoggingRetriever {
	return &LoggingRetriever{next: next, logger: logger}
}

// Search delegates to the wrapped retriever and logs the operation.
func (r *LoggingRetriever) Search(ctx context.Context, question string, topK int) (results []adamsdoc.SearchResult, err error) {
	defer func(begin time.Time) {
		r.logger.Info("retrieve",
			"question", question,
			"top_k", topK,
			"count", len(results),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return r.next.Search(ctx, question, topK)
}

// LoggingAsker wraps an Asker with logging.
type LoggingAsker struct {
	next   adamsdoc.Asker
	logger *slog.Logger
}

// NewLoggingAsker creates a new LoggingAsker.
func NewLoggingAsker(next adamsdoc.Asker, logger *slog.Logger) *LoggingAsker {
	return &LoggingAsker{next: next, logger: logger}
}

// Ask delegates to the wrapped asker and logs the operation.
func (a *LoggingAsker) Ask(ctx context.Context, question string) (answer *adamsdoc.Answer, err error) {
	defer func(begin time.Time) {
		var sources int
		if answer != nil {
			sources = len(answer.Sources)
		}
		a.logger.Info("ask",
			"question", question,
			"sources", sources,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return a.next.Ask(ctx, question)
}

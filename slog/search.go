package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/adamsdoc"
)

// Ensure the decorators implement their interfaces.
var (
	_ adamsdoc.Searcher       = (*LoggingSearcher)(nil)
	_ adamsdoc.SearchStrategy = (*LoggingStrategy)(nil)
)

// LoggingSearcher wraps a Searcher with logging.
type LoggingSearcher struct {
	next   adamsdoc.Searcher
	logger *slog.Logger
}

// NewLoggingSearcher creates a new LoggingSearcher.
func NewLoggingSearcher(next adamsdoc.Searcher, logger *slog.Logger) *LoggingSearcher {
	return &LoggingSearcher{next: next, logger: logger}
}

// Search delegates to the wrapped searcher and logs the operation.
func (s *LoggingSearcher) Search(ctx context.Context, query string, maxResults int) (docs []*adamsdoc.Descriptor, err error) {
	defer func(begin time.Time) {
		s.logger.Info("search",
			"query", query,
			"max", maxResults,
			"count", len(docs),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Search(ctx, query, maxResults)
}

// LoggingStrategy wraps a SearchStrategy with debug logging so each
// fallback step is visible.
type LoggingStrategy struct {
	next   adamsdoc.SearchStrategy
	logger *slog.Logger
}

// NewLoggingStrategy creates a new LoggingStrategy.
func NewLoggingStrategy(next adamsdoc.SearchStrategy, logger *slog.Logger) *LoggingStrategy {
	return &LoggingStrategy{next: next, logger: logger}
}

// Name delegates to the wrapped strategy.
func (s *LoggingStrategy) Name() string {
	return s.next.Name()
}

// Search delegates to the wrapped strategy and logs the attempt.
func (s *LoggingStrategy) Search(ctx context.Context, query string, maxResults int) (docs []*adamsdoc.Descriptor, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("search strategy",
			"strategy", s.next.Name(),
			"query", query,
			"count", len(docs),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Search(ctx, query, maxResults)
}

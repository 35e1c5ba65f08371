package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/adamsdoc"
)

// Ensure LoggingTextCache implements adamsdoc.TextCache.
var _ adamsdoc.TextCache = (*LoggingTextCache)(nil)

// LoggingTextCache wraps a TextCache with logging.
type LoggingTextCache struct {
	next   adamsdoc.TextCache
	logger *slog.Logger
}

// NewLoggingTextCache creates a new LoggingTextCache.
func NewLoggingTextCache(next adamsdoc.TextCache, logger *slog.Logger) *LoggingTextCache {
	return &LoggingTextCache{next: next, logger: logger}
}

// GetCachedText delegates to the wrapped cache and logs the operation.
func (c *LoggingTextCache) GetCachedText(ctx context.Context, path, documentID string) (text string, err error) {
	defer func(begin time.Time) {
		c.logger.Info("cached text",
			"id", documentID,
			"path", path,
			"chars", len(text),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.GetCachedText(ctx, path, documentID)
}

// Entry delegates to the wrapped cache.
func (c *LoggingTextCache) Entry(documentID string) (*adamsdoc.CacheEntry, error) {
	return c.next.Entry(documentID)
}

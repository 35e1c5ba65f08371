package mock

import (
	"context"

	"github.com/fwojciec/adamsdoc"
)

var (
	_ adamsdoc.TextCache     = (*TextCache)(nil)
	_ adamsdoc.TextExtractor = (*TextExtractor)(nil)
)

// TextCache is a mock implementation of adamsdoc.TextCache.
type TextCache struct {
	GetCachedTextFn func(ctx context.Context, path, documentID string) (string, error)
	EntryFn         func(documentID string) (*adamsdoc.CacheEntry, error)
}

func (c *TextCache) GetCachedText(ctx context.Context, path, documentID string) (string, error) {
	return c.GetCachedTextFn(ctx, path, documentID)
}

func (c *TextCache) Entry(documentID string) (*adamsdoc.CacheEntry, error) {
	return c.EntryFn(documentID)
}

// TextExtractor is a mock implementation of adamsdoc.TextExtractor.
type TextExtractor struct {
	ExtractFn func(ctx context.Context, data []byte) (*adamsdoc.Extraction, error)
}

func (e *TextExtractor) Extract(ctx context.Context, data []byte) (*adamsdoc.Extraction, error) {
	return e.ExtractFn(ctx, data)
}

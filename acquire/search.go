// Package acquire orchestrates document acquisition: searching the registry
// through ordered strategies, downloading in paced batches, and feeding
// downloaded documents into the text cache and retrieval engine.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/fwojciec/adamsdoc"
)

var _ adamsdoc.Searcher = (*Searcher)(nil)

// Searcher tries each strategy in order until one returns results.
type Searcher struct {
	strategies []adamsdoc.SearchStrategy
	cache      adamsdoc.Cache[[]*adamsdoc.Descriptor]
}

// SearcherOption configures a Searcher.
type SearcherOption func(*Searcher)

// WithSearchCache memoizes non-empty results in c.
func WithSearchCache(c adamsdoc.Cache[[]*adamsdoc.Descriptor]) SearcherOption {
	return func(s *Searcher) {
		s.cache = c
	}
}

// NewSearcher creates a Searcher over strategies, attempted in the given order.
func NewSearcher(strategies []adamsdoc.SearchStrategy, opts ...SearcherOption) *Searcher {
	s := &Searcher{strategies: strategies}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SearchCacheKey returns the memoization key for a query and limit.
func SearchCacheKey(query string, maxResults int) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	return "search_" + normalized + "_" + strconv.Itoa(maxResults)
}

// Search returns up to maxResults unique descriptors from the first strategy
// that yields any. A strategy that fails or finds nothing hands over to the
// next. If the final strategy fails, the failures of every strategy are
// joined into the returned error; otherwise finding nothing is not an error.
func (s *Searcher) Search(ctx context.Context, query string, maxResults int) ([]*adamsdoc.Descriptor, error) {
	if strings.TrimSpace(query) == "" {
		return nil, adamsdoc.Errorf(adamsdoc.EINVALID, "search query required")
	}

	key := SearchCacheKey(query, maxResults)
	if s.cache != nil {
		if docs, ok := s.cache.Get(key); ok {
			return docs, nil
		}
	}

	var errs []error
	lastFailed := false
	for _, st := range s.strategies {
		docs, err := st.Search(ctx, query, maxResults)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			errs = append(errs, fmt.Errorf("%s search: %w", st.Name(), err))
			lastFailed = true
			continue
		}
		lastFailed = false

		docs = uniqueDescriptors(docs, maxResults)
		if len(docs) == 0 {
			continue
		}

		if s.cache != nil {
			s.cache.Set(key, docs)
		}
		return docs, nil
	}

	if lastFailed {
		return nil, errors.Join(errs...)
	}
	return []*adamsdoc.Descriptor{}, nil
}

// uniqueDescriptors drops descriptors with duplicate or unusable
// identifiers, keeping the first, and truncates to limit when it is positive.
func uniqueDescriptors(docs []*adamsdoc.Descriptor, limit int) []*adamsdoc.Descriptor {
	seen := make(map[string]bool, len(docs))
	out := make([]*adamsdoc.Descriptor, 0, len(docs))
	for _, d := range docs {
		if d == nil || seen[d.ID] || adamsdoc.ValidateDocumentID(d.ID) != nil {
			continue
		}
		seen[d.ID] = true
		out = append(out, d)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

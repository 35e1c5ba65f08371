package acquire

import (
	"context"
	"fmt"

	"github.com/fwojciec/adamsdoc"
)

// Pipeline runs search, batch download, text caching and indexing for a query.
type Pipeline struct {
	searcher adamsdoc.Searcher
	batch    *Batch
	cache    adamsdoc.TextCache
	indexer  adamsdoc.Indexer
	store    adamsdoc.DescriptorStore
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithDescriptorStore persists every descriptor found by a search.
func WithDescriptorStore(s adamsdoc.DescriptorStore) PipelineOption {
	return func(p *Pipeline) {
		p.store = s
	}
}

// NewPipeline creates a Pipeline.
func NewPipeline(searcher adamsdoc.Searcher, batch *Batch, cache adamsdoc.TextCache, indexer adamsdoc.Indexer, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		searcher: searcher,
		batch:    batch,
		cache:    cache,
		indexer:  indexer,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// DocumentError is a failure that affected a single document.
type DocumentError struct {
	DocumentID string
	Err        error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s: %v", e.DocumentID, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// PipelineResult summarizes a pipeline run.
type PipelineResult struct {
	Descriptors []*adamsdoc.Descriptor
	Downloads   *BatchResult
	Indexed     []*adamsdoc.IndexResult
	Failures    []*DocumentError
}

// Run searches for query, downloads up to target documents from at most
// maxResults hits, and indexes their text. Documents that fail to download,
// extract or index are collected in Failures; only search, persistence and
// context errors abort the run.
func (p *Pipeline) Run(ctx context.Context, query string, maxResults, target int) (*PipelineResult, error) {
	docs, err := p.searcher.Search(ctx, query, maxResults)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	out := &PipelineResult{Descriptors: docs}
	if len(docs) == 0 {
		return out, nil
	}

	if p.store != nil {
		if err := p.store.SaveDescriptors(ctx, query, docs); err != nil {
			return out, fmt.Errorf("save descriptors: %w", err)
		}
	}

	downloads, err := p.batch.Run(ctx, docs, target, query)
	out.Downloads = downloads
	if err != nil {
		return out, fmt.Errorf("download: %w", err)
	}

	titles := make(map[string]string, len(docs))
	for _, d := range docs {
		titles[d.ID] = d.Title
	}

	for _, r := range downloads.Results {
		if !r.Success {
			out.Failures = append(out.Failures, &DocumentError{DocumentID: r.DocumentID, Err: adamsdoc.Errorf(adamsdoc.EUNAVAILABLE, "%s", r.Error)})
			continue
		}

		res, err := p.index(ctx, r, titles[r.DocumentID])
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			out.Failures = append(out.Failures, &DocumentError{DocumentID: r.DocumentID, Err: err})
			continue
		}
		out.Indexed = append(out.Indexed, res)
	}
	return out, nil
}

func (p *Pipeline) index(ctx context.Context, r *adamsdoc.DownloadResult, title string) (*adamsdoc.IndexResult, error) {
	text, err := p.cache.GetCachedText(ctx, r.FilePath, r.DocumentID)
	if err != nil {
		return nil, err
	}

	pages := 0
	if entry, err := p.cache.Entry(r.DocumentID); err == nil {
		pages = entry.Pages
	}

	return p.indexer.IndexDocument(ctx, r.DocumentID, text, adamsdoc.DocumentMetadata{Title: title}, pages)
}

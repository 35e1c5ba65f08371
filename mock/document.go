package mock

import (
	"context"

	"github.com/fwojciec/adamsdoc"
)

var (
	_ adamsdoc.Searcher        = (*Searcher)(nil)
	_ adamsdoc.SearchStrategy  = (*SearchStrategy)(nil)
	_ adamsdoc.DescriptorStore = (*DescriptorStore)(nil)
)

// Searcher is a mock implementation of adamsdoc.Searcher.
type Searcher struct {
	SearchFn func(ctx context.Context, query string, maxResults int) ([]*adamsdoc.Descriptor, error)
}

func (s *Searcher) Search(ctx context.Context, query string, maxResults int) ([]*adamsdoc.Descriptor, error) {
	return s.SearchFn(ctx, query, maxResults)
}

// SearchStrategy is a mock implementation of adamsdoc.SearchStrategy.
type SearchStrategy struct {
	NameFn   func() string
	SearchFn func(ctx context.Context, query string, maxResults int) ([]*adamsdoc.Descriptor, error)
}

func (s *SearchStrategy) Name() string {
	return s.NameFn()
}

func (s *SearchStrategy) Search(ctx context.Context, query string, maxResults int) ([]*adamsdoc.Descriptor, error) {
	return s.SearchFn(ctx, query, maxResults)
}

// DescriptorStore is a mock implementation of adamsdoc.DescriptorStore.
type DescriptorStore struct {
	SaveDescriptorsFn    func(ctx context.Context, query string, docs []*adamsdoc.Descriptor) error
	FindDescriptorByIDFn func(ctx context.Context, id string) (*adamsdoc.Descriptor, error)
	FindDescriptorsFn    func(ctx context.Context, filter adamsdoc.DescriptorFilter) ([]*adamsdoc.Descriptor, error)
}

func (s *DescriptorStore) SaveDescriptors(ctx context.Context, query string, docs []*adamsdoc.Descriptor) error {
	return s.SaveDescriptorsFn(ctx, query, docs)
}

func (s *DescriptorStore) FindDescriptorByID(ctx context.Context, id string) (*adamsdoc.Descriptor, error) {
	return s.FindDescriptorByIDFn(ctx, id)
}

func (s *DescriptorStore) FindDescriptors(ctx context.Context, filter adamsdoc.DescriptorFilter) ([]*adamsdoc.Descriptor, error) {
	return s.FindDescriptorsFn(ctx, filter)
}

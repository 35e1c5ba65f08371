package acquire_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/adamsdoc"
	"github.com/fwojciec/adamsdoc/acquire"
	"github.com/fwojciec/adamsdoc/lru"
	"github.com/fwojciec/adamsdoc/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strategy(name string, docs []*adamsdoc.Descriptor, err error, calls *int) *mock.SearchStrategy {
	return &mock.SearchStrategy{
		NameFn: func() string { return name },
		SearchFn: func(context.Context, string, int) ([]*adamsdoc.Descriptor, error) {
			if calls != nil {
				*calls++
			}
			return docs, err
		},
	}
}

func descriptors(ids ...string) []*adamsdoc.Descriptor {
	docs := make([]*adamsdoc.Descriptor, len(ids))
	for i, id := range ids {
		docs[i] = &adamsdoc.Descriptor{ID: id, Title: "Title " + id}
	}
	return docs
}

func TestSearcher_Search(t *testing.T) {
	t.Parallel()

	t.Run("returns first strategy results without trying the next", func(t *testing.T) {
		t.Parallel()

		browserCalls := 0
		s := acquire.NewSearcher([]adamsdoc.SearchStrategy{
			strategy("api", descriptors("ML1", "ML2"), nil, nil),
			strategy("browser", descriptors("ML3"), nil, &browserCalls),
		})

		docs, err := s.Search(context.Background(), "reactor", 10)

		require.NoError(t, err)
		assert.Len(t, docs, 2)
		assert.Zero(t, browserCalls)
	})

	t.Run("falls through on error", func(t *testing.T) {
		t.Parallel()

		s := acquire.NewSearcher([]adamsdoc.SearchStrategy{
			strategy("api", nil, errors.New("api down"), nil),
			strategy("browser", descriptors("ML3"), nil, nil),
		})

		docs, err := s.Search(context.Background(), "reactor", 10)

		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "ML3", docs[0].ID)
	})

	t.Run("falls through on empty results", func(t *testing.T) {
		t.Parallel()

		s := acquire.NewSearcher([]adamsdoc.SearchStrategy{
			strategy("api", []*adamsdoc.Descriptor{}, nil, nil),
			strategy("browser", descriptors("ML3"), nil, nil),
		})

		docs, err := s.Search(context.Background(), "reactor", 10)

		require.NoError(t, err)
		assert.Len(t, docs, 1)
	})

	t.Run("finding nothing is not an error", func(t *testing.T) {
		t.Parallel()

		s := acquire.NewSearcher([]adamsdoc.SearchStrategy{
			strategy("api", nil, errors.New("api down"), nil),
			strategy("browser", nil, nil, nil),
		})

		docs, err := s.Search(context.Background(), "reactor", 10)

		require.NoError(t, err)
		assert.NotNil(t, docs)
		assert.Empty(t, docs)
	})

	t.Run("joins errors when the final strategy fails", func(t *testing.T) {
		t.Parallel()

		apiErr := errors.New("api down")
		browserErr := &adamsdoc.ExhaustedRetriesError{Op: "evaluate results", Attempts: 3, Err: errors.New("detached")}
		s := acquire.NewSearcher([]adamsdoc.SearchStrategy{
			strategy("api", nil, apiErr, nil),
			strategy("browser", nil, browserErr, nil),
		})

		_, err := s.Search(context.Background(), "reactor", 10)

		require.Error(t, err)
		assert.ErrorIs(t, err, apiErr)
		var exhausted *adamsdoc.ExhaustedRetriesError
		assert.ErrorAs(t, err, &exhausted)
		assert.Contains(t, err.Error(), "api search")
		assert.Contains(t, err.Error(), "browser search")
	})

	t.Run("deduplicates and truncates", func(t *testing.T) {
		t.Parallel()

		s := acquire.NewSearcher([]adamsdoc.SearchStrategy{
			strategy("api", descriptors("ML1", "ML2", "ML1", "ML3", "ML4"), nil, nil),
		})

		docs, err := s.Search(context.Background(), "reactor", 3)

		require.NoError(t, err)
		require.Len(t, docs, 3)
		assert.Equal(t, "ML1", docs[0].ID)
		assert.Equal(t, "ML2", docs[1].ID)
		assert.Equal(t, "ML3", docs[2].ID)
	})

	t.Run("drops identifiers that are not usable as file names", func(t *testing.T) {
		t.Parallel()

		s := acquire.NewSearcher([]adamsdoc.SearchStrategy{
			strategy("api", descriptors("ML1", "../ML2", "", "ML3"), nil, nil),
		})

		docs, err := s.Search(context.Background(), "reactor", 10)

		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "ML1", docs[0].ID)
		assert.Equal(t, "ML3", docs[1].ID)
	})

	t.Run("memoizes results by normalized query and limit", func(t *testing.T) {
		t.Parallel()

		calls := 0
		cache := lru.New[[]*adamsdoc.Descriptor]()
		s := acquire.NewSearcher([]adamsdoc.SearchStrategy{
			strategy("api", descriptors("ML1"), nil, &calls),
		}, acquire.WithSearchCache(cache))

		_, err := s.Search(context.Background(), "Steam  Generator", 5)
		require.NoError(t, err)
		docs, err := s.Search(context.Background(), "steam generator", 5)
		require.NoError(t, err)

		assert.Len(t, docs, 1)
		assert.Equal(t, 1, calls)
		_, ok := cache.Get("search_steam generator_5")
		assert.True(t, ok)
	})

	t.Run("does not memoize empty results", func(t *testing.T) {
		t.Parallel()

		cache := lru.New[[]*adamsdoc.Descriptor]()
		s := acquire.NewSearcher([]adamsdoc.SearchStrategy{
			strategy("api", nil, nil, nil),
		}, acquire.WithSearchCache(cache))

		_, err := s.Search(context.Background(), "reactor", 5)

		require.NoError(t, err)
		assert.Zero(t, cache.Len())
	})

	t.Run("rejects empty query", func(t *testing.T) {
		t.Parallel()

		s := acquire.NewSearcher(nil)

		_, err := s.Search(context.Background(), " ", 5)

		assert.Equal(t, adamsdoc.EINVALID, adamsdoc.ErrorCode(err))
	})
}

func TestSearchCacheKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "search_steam generator_10", acquire.SearchCacheKey("  Steam\tGenerator ", 10))
}

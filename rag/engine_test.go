package rag_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fwojciec/adamsdoc"
	"github.com/fwojciec/adamsdoc/mock"
	"github.com/fwojciec/adamsdoc/rag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pagedText = "Page 1\n" +
	"The reactor vessel and the coolant loop. The pump reactor coolant.\n" +
	"Page 2\n" +
	"Inspection of the reactor coolant pump seal.\n" +
	"Page 3\n" +
	"Unrelated text about license fees.\n"

// sealEmbedder maps texts mentioning "seal" to one axis and everything else
// to the other.
func sealEmbedder(calls *int) *mock.Embedder {
	return &mock.Embedder{
		EmbedFn: func(_ context.Context, texts []string) ([][]float32, error) {
			*calls++
			out := make([][]float32, len(texts))
			for i, t := range texts {
				if strings.Contains(strings.ToLower(t), "seal") {
					out[i] = []float32{1, 0}
				} else {
					out[i] = []float32{0, 1}
				}
			}
			return out, nil
		},
	}
}

func TestEngine_IndexDocument(t *testing.T) {
	t.Parallel()

	t.Run("builds page-aware chunk metadata", func(t *testing.T) {
		t.Parallel()

		e := rag.NewEngine()
		res, err := e.IndexDocument(context.Background(), "ML24001A001", pagedText, adamsdoc.DocumentMetadata{Title: "Inspection Report"}, 0)
		require.NoError(t, err)

		assert.Equal(t, 3, res.Chunks)
		assert.Equal(t, 3, res.TotalPages)
		assert.Equal(t, 0, res.Embedded)
		assert.NoError(t, res.EmbedErr)

		chunks, err := e.Chunks("ML24001A001")
		require.NoError(t, err)
		require.Len(t, chunks, 3)

		for i, c := range chunks {
			assert.Equal(t, i, c.Metadata.Index)
			assert.Equal(t, i+1, c.Metadata.PageNumber)
			assert.Equal(t, 3, c.Metadata.TotalPages)
			assert.Equal(t, "Inspection Report", c.Metadata.Title)
			assert.Nil(t, c.Embedding)
		}

		second := chunks[1].Metadata
		assert.Equal(t, 3, second.StartLine)
		assert.Equal(t, 4, second.EndLine)
		assert.Equal(t, 3*rag.CharsPerLine, second.StartChar)
		assert.Equal(t, 4*rag.CharsPerLine, second.EndChar)
	})

	t.Run("uses supplied total pages", func(t *testing.T) {
		t.Parallel()

		e := rag.NewEngine()
		res, err := e.IndexDocument(context.Background(), "doc", pagedText, adamsdoc.DocumentMetadata{}, 10)
		require.NoError(t, err)

		assert.Equal(t, 10, res.TotalPages)
		chunks, err := e.Chunks("doc")
		require.NoError(t, err)
		assert.Equal(t, 10, chunks[0].Metadata.TotalPages)
	})

	t.Run("detects section headings", func(t *testing.T) {
		t.Parallel()

		e := rag.NewEngine()
		_, err := e.IndexDocument(context.Background(), "doc", "3.2 SAFETY ANALYSIS\nThe analysis shows margin.\n", adamsdoc.DocumentMetadata{}, 1)
		require.NoError(t, err)

		chunks, err := e.Chunks("doc")
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, "SAFETY ANALYSIS", chunks[0].Metadata.Section)
	})

	t.Run("replaces chunks on re-index", func(t *testing.T) {
		t.Parallel()

		e := rag.NewEngine()
		_, err := e.IndexDocument(context.Background(), "doc", pagedText, adamsdoc.DocumentMetadata{}, 0)
		require.NoError(t, err)
		_, err = e.IndexDocument(context.Background(), "doc", "short text", adamsdoc.DocumentMetadata{}, 0)
		require.NoError(t, err)

		chunks, err := e.Chunks("doc")
		require.NoError(t, err)
		assert.Len(t, chunks, 1)
		assert.Equal(t, 1, e.Stats().Documents)
	})

	t.Run("embeds chunks in batches", func(t *testing.T) {
		t.Parallel()

		var calls int
		e := rag.NewEngine(rag.WithEmbedder(sealEmbedder(&calls)), rag.WithEmbedBatchSize(2))
		res, err := e.IndexDocument(context.Background(), "doc", pagedText, adamsdoc.DocumentMetadata{}, 0)
		require.NoError(t, err)

		assert.Equal(t, 2, calls)
		assert.Equal(t, 3, res.Embedded)
		assert.NoError(t, res.EmbedErr)
	})

	t.Run("keeps chunks whose batch failed", func(t *testing.T) {
		t.Parallel()

		var calls int
		embedder := &mock.Embedder{
			EmbedFn: func(_ context.Context, texts []string) ([][]float32, error) {
				calls++
				if calls == 2 {
					return nil, errors.New("quota exceeded")
				}
				out := make([][]float32, len(texts))
				for i := range texts {
					out[i] = []float32{1, 0}
				}
				return out, nil
			},
		}
		e := rag.NewEngine(rag.WithEmbedder(embedder), rag.WithEmbedBatchSize(2))

		res, err := e.IndexDocument(context.Background(), "doc", pagedText, adamsdoc.DocumentMetadata{}, 0)
		require.NoError(t, err)

		assert.Equal(t, 3, res.Chunks)
		assert.Equal(t, 2, res.Embedded)
		require.Error(t, res.EmbedErr)
		assert.Contains(t, res.EmbedErr.Error(), "quota exceeded")

		chunks, err := e.Chunks("doc")
		require.NoError(t, err)
		assert.NotNil(t, chunks[0].Embedding)
		assert.NotNil(t, chunks[1].Embedding)
		assert.Nil(t, chunks[2].Embedding)
	})

	t.Run("rejects empty document ID", func(t *testing.T) {
		t.Parallel()

		_, err := rag.NewEngine().IndexDocument(context.Background(), "", "text", adamsdoc.DocumentMetadata{}, 0)
		assert.Equal(t, adamsdoc.EINVALID, adamsdoc.ErrorCode(err))
	})
}

func TestEngine_Search(t *testing.T) {
	t.Parallel()

	t.Run("exact phrase ranks first in keyword mode", func(t *testing.T) {
		t.Parallel()

		e := rag.NewEngine()
		_, err := e.IndexDocument(context.Background(), "ML24001A001", pagedText, adamsdoc.DocumentMetadata{}, 0)
		require.NoError(t, err)

		results, err := e.Search(context.Background(), "Reactor Coolant Pump", 5)
		require.NoError(t, err)
		require.Len(t, results, 2)

		assert.Equal(t, 1, results[0].Chunk.Metadata.Index)
		assert.InDelta(t, 1.0, results[0].Score, 1e-9)
		assert.Equal(t, "[ML24001A001] Page 2 of 3 (Lines 3-4)", results[0].Citation)

		assert.Equal(t, 0, results[1].Chunk.Metadata.Index)
		assert.InDelta(t, 5.0/13.0, results[1].Score, 1e-9)
	})

	t.Run("limits keyword results to topK", func(t *testing.T) {
		t.Parallel()

		e := rag.NewEngine()
		_, err := e.IndexDocument(context.Background(), "doc", pagedText, adamsdoc.DocumentMetadata{}, 0)
		require.NoError(t, err)

		results, err := e.Search(context.Background(), "reactor", 1)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, 0, results[0].Chunk.Metadata.Index)
	})

	t.Run("returns empty results when nothing matches", func(t *testing.T) {
		t.Parallel()

		e := rag.NewEngine()
		_, err := e.IndexDocument(context.Background(), "doc", pagedText, adamsdoc.DocumentMetadata{}, 0)
		require.NoError(t, err)

		results, err := e.Search(context.Background(), "turbine", 5)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("ranks by embedding similarity", func(t *testing.T) {
		t.Parallel()

		var calls int
		e := rag.NewEngine(rag.WithEmbedder(sealEmbedder(&calls)))
		_, err := e.IndexDocument(context.Background(), "doc", pagedText, adamsdoc.DocumentMetadata{}, 0)
		require.NoError(t, err)

		results, err := e.Search(context.Background(), "which seal failed", 2)
		require.NoError(t, err)
		require.Len(t, results, 2)

		assert.Equal(t, 1, results[0].Chunk.Metadata.Index)
		assert.InDelta(t, 1.0, results[0].Score, 1e-6)
		assert.InDelta(t, 0.0, results[1].Score, 1e-6)
		assert.Equal(t, rag.ModeEmbedding, e.Stats().Mode)
	})

	t.Run("falls back to keywords when question embedding fails", func(t *testing.T) {
		t.Parallel()

		var calls int
		embedder := &mock.Embedder{
			EmbedFn: func(_ context.Context, texts []string) ([][]float32, error) {
				calls++
				if calls > 1 {
					return nil, errors.New("unavailable")
				}
				out := make([][]float32, len(texts))
				for i := range texts {
					out[i] = []float32{1, 1}
				}
				return out, nil
			},
		}
		e := rag.NewEngine(rag.WithEmbedder(embedder))
		_, err := e.IndexDocument(context.Background(), "doc", pagedText, adamsdoc.DocumentMetadata{}, 0)
		require.NoError(t, err)

		results, err := e.Search(context.Background(), "license fees", 5)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, 2, results[0].Chunk.Metadata.Index)
	})

	t.Run("returns empty results for empty engine", func(t *testing.T) {
		t.Parallel()

		results, err := rag.NewEngine().Search(context.Background(), "anything", 5)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("rejects blank question", func(t *testing.T) {
		t.Parallel()

		_, err := rag.NewEngine().Search(context.Background(), "  ", 5)
		assert.Equal(t, adamsdoc.EINVALID, adamsdoc.ErrorCode(err))
	})
}

func TestEngine_RemoveDocument(t *testing.T) {
	t.Parallel()

	e := rag.NewEngine()
	_, err := e.IndexDocument(context.Background(), "a", pagedText, adamsdoc.DocumentMetadata{}, 0)
	require.NoError(t, err)
	_, err = e.IndexDocument(context.Background(), "b", "reactor notes", adamsdoc.DocumentMetadata{}, 0)
	require.NoError(t, err)

	assert.True(t, e.RemoveDocument("a"))
	assert.False(t, e.RemoveDocument("a"))

	_, err = e.Chunks("a")
	assert.Equal(t, adamsdoc.ENOTFOUND, adamsdoc.ErrorCode(err))

	results, err := e.Search(context.Background(), "reactor", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "b", results[0].Chunk.Metadata.DocumentID)
}

func TestEngine_Stats(t *testing.T) {
	t.Parallel()

	e := rag.NewEngine()
	_, err := e.IndexDocument(context.Background(), "a", pagedText, adamsdoc.DocumentMetadata{}, 0)
	require.NoError(t, err)
	_, err = e.IndexDocument(context.Background(), "b", "reactor notes", adamsdoc.DocumentMetadata{}, 0)
	require.NoError(t, err)

	assert.Equal(t, rag.Stats{
		Documents:          2,
		DocumentsWithPages: 2,
		Chunks:             4,
		Mode:               rag.ModeKeyword,
	}, e.Stats())

	e.Clear()
	assert.Equal(t, rag.Stats{Mode: rag.ModeKeyword}, e.Stats())
}

package fs_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/adamsdoc"
	"github.com/fwojciec/adamsdoc/fs"
	"github.com/fwojciec/adamsdoc/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func countingExtractor(calls *atomic.Int32) *mock.TextExtractor {
	return &mock.TextExtractor{
		ExtractFn: func(_ context.Context, data []byte) (*adamsdoc.Extraction, error) {
			calls.Add(1)
			return &adamsdoc.Extraction{Text: "text of " + string(data), Pages: 2}, nil
		},
	}
}

func writePDF(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func openCache(t *testing.T, dir string, ext adamsdoc.TextExtractor, opts ...fs.Option) *fs.TextCache {
	t.Helper()
	opts = append([]fs.Option{fs.WithClock(func() time.Time { return fixedNow })}, opts...)
	c := fs.NewTextCache(dir, ext, opts...)
	require.NoError(t, c.Open())
	return c
}

func TestTextCache_GetCachedText(t *testing.T) {
	t.Parallel()

	t.Run("extracts once and serves repeats from cache", func(t *testing.T) {
		t.Parallel()

		docs := t.TempDir()
		path := writePDF(t, docs, "ML24001A001.pdf", "%PDF one")

		var calls atomic.Int32
		c := openCache(t, t.TempDir(), countingExtractor(&calls))

		first, err := c.GetCachedText(context.Background(), path, "ML24001A001")
		require.NoError(t, err)
		second, err := c.GetCachedText(context.Background(), path, "ML24001A001")
		require.NoError(t, err)

		assert.Equal(t, "text of %PDF one", first)
		assert.Equal(t, first, second)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("writes text file and index entry", func(t *testing.T) {
		t.Parallel()

		docs := t.TempDir()
		dir := t.TempDir()
		path := writePDF(t, docs, "ML24001A001.pdf", "%PDF one")

		var calls atomic.Int32
		c := openCache(t, dir, countingExtractor(&calls))

		_, err := c.GetCachedText(context.Background(), path, "ML24001A001")
		require.NoError(t, err)

		data, err := os.ReadFile(filepath.Join(dir, "ML24001A001.txt"))
		require.NoError(t, err)
		assert.Equal(t, "text of %PDF one", string(data))
		assert.FileExists(t, filepath.Join(dir, fs.IndexFileName))

		entry, err := c.Entry("ML24001A001")
		require.NoError(t, err)
		assert.Equal(t, path, entry.FilePath)
		assert.Equal(t, int64(len("%PDF one")), entry.FileSize)
		assert.Equal(t, fixedNow, entry.ExtractedAt)
		assert.Equal(t, 2, entry.Pages)
		assert.Equal(t, 1, entry.EstimatedPages)
		assert.NotEmpty(t, entry.Hash)
	})

	t.Run("re-extracts when the file changes", func(t *testing.T) {
		t.Parallel()

		docs := t.TempDir()
		path := writePDF(t, docs, "doc.pdf", "%PDF one")

		var calls atomic.Int32
		c := openCache(t, t.TempDir(), countingExtractor(&calls))

		_, err := c.GetCachedText(context.Background(), path, "doc")
		require.NoError(t, err)

		writePDF(t, docs, "doc.pdf", "%PDF two")
		text, err := c.GetCachedText(context.Background(), path, "doc")
		require.NoError(t, err)

		assert.Equal(t, "text of %PDF two", text)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("defaults document ID to file name", func(t *testing.T) {
		t.Parallel()

		docs := t.TempDir()
		path := writePDF(t, docs, "ML24001A002.pdf", "%PDF")

		var calls atomic.Int32
		c := openCache(t, t.TempDir(), countingExtractor(&calls))

		_, err := c.GetCachedText(context.Background(), path, "")
		require.NoError(t, err)

		_, err = c.Entry("ML24001A002")
		assert.NoError(t, err)
	})

	t.Run("reloads index from disk", func(t *testing.T) {
		t.Parallel()

		docs := t.TempDir()
		dir := t.TempDir()
		path := writePDF(t, docs, "doc.pdf", "%PDF one")

		var calls atomic.Int32
		c := openCache(t, dir, countingExtractor(&calls))
		_, err := c.GetCachedText(context.Background(), path, "doc")
		require.NoError(t, err)

		reopened := openCache(t, dir, countingExtractor(&calls))
		text, err := reopened.GetCachedText(context.Background(), path, "doc")
		require.NoError(t, err)

		assert.Equal(t, "text of %PDF one", text)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("returns EEXTRACT for empty text", func(t *testing.T) {
		t.Parallel()

		docs := t.TempDir()
		path := writePDF(t, docs, "doc.pdf", "%PDF")

		c := openCache(t, t.TempDir(), &mock.TextExtractor{
			ExtractFn: func(context.Context, []byte) (*adamsdoc.Extraction, error) {
				return &adamsdoc.Extraction{Text: "  \n\t "}, nil
			},
		})

		_, err := c.GetCachedText(context.Background(), path, "doc")
		assert.Equal(t, adamsdoc.EEXTRACT, adamsdoc.ErrorCode(err))

		_, err = c.Entry("doc")
		assert.Equal(t, adamsdoc.ENOTFOUND, adamsdoc.ErrorCode(err))
	})

	t.Run("returns EEXTRACT when extraction fails", func(t *testing.T) {
		t.Parallel()

		docs := t.TempDir()
		path := writePDF(t, docs, "doc.pdf", "%PDF")

		c := openCache(t, t.TempDir(), &mock.TextExtractor{
			ExtractFn: func(context.Context, []byte) (*adamsdoc.Extraction, error) {
				return nil, errors.New("malformed xref")
			},
		})

		_, err := c.GetCachedText(context.Background(), path, "doc")
		assert.Equal(t, adamsdoc.EEXTRACT, adamsdoc.ErrorCode(err))
		assert.Contains(t, adamsdoc.ErrorMessage(err), "malformed xref")
	})

	t.Run("returns ENOTFOUND for missing file", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		c := openCache(t, t.TempDir(), countingExtractor(&calls))

		_, err := c.GetCachedText(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"), "missing")
		assert.Equal(t, adamsdoc.ENOTFOUND, adamsdoc.ErrorCode(err))
		assert.Equal(t, int32(0), calls.Load())
	})

	t.Run("rejects document IDs containing separators", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		c := openCache(t, t.TempDir(), countingExtractor(&calls))

		_, err := c.GetCachedText(context.Background(), "x.pdf", "../escape")
		assert.Equal(t, adamsdoc.EINVALID, adamsdoc.ErrorCode(err))
	})
}

func TestTextCache_Stats(t *testing.T) {
	t.Parallel()

	docs := t.TempDir()
	a := writePDF(t, docs, "a.pdf", "%PDF a")
	b := writePDF(t, docs, "b.pdf", "%PDF bb")

	var calls atomic.Int32
	c := openCache(t, t.TempDir(), countingExtractor(&calls))

	for _, p := range []string{a, b, a, a} {
		_, err := c.GetCachedText(context.Background(), p, "")
		require.NoError(t, err)
	}

	s := c.Stats()
	assert.Equal(t, 2, s.Entries)
	assert.Equal(t, len("text of %PDF a")+len("text of %PDF bb"), s.TotalTextSize)
	assert.InDelta(t, 0.5, s.HitRate, 1e-9)

	entries := c.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].DocumentID)
	assert.Equal(t, "b", entries[1].DocumentID)
}

func TestTextCache_Clear(t *testing.T) {
	t.Parallel()

	docs := t.TempDir()
	dir := t.TempDir()
	path := writePDF(t, docs, "doc.pdf", "%PDF")

	var calls atomic.Int32
	c := openCache(t, dir, countingExtractor(&calls))
	_, err := c.GetCachedText(context.Background(), path, "doc")
	require.NoError(t, err)

	require.NoError(t, c.Clear())

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, files)
	assert.Equal(t, fs.Stats{}, c.Stats())

	_, err = c.GetCachedText(context.Background(), path, "doc")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestTextCache_CacheDir(t *testing.T) {
	t.Parallel()

	t.Run("processes every PDF and skips failures", func(t *testing.T) {
		t.Parallel()

		docs := t.TempDir()
		writePDF(t, docs, "general_2024-03-01/a.pdf", "%PDF a")
		writePDF(t, docs, "general_2024-03-01/b.pdf", "%PDF b")
		writePDF(t, docs, "reactor_2024-03-01/c.pdf", "%PDF c")
		writePDF(t, docs, "reactor_2024-03-01/bad.pdf", "broken")
		writePDF(t, docs, "reactor_2024-03-01/notes.txt", "ignored")

		c := openCache(t, t.TempDir(), &mock.TextExtractor{
			ExtractFn: func(_ context.Context, data []byte) (*adamsdoc.Extraction, error) {
				if string(data) == "broken" {
					return nil, errors.New("not a PDF")
				}
				return &adamsdoc.Extraction{Text: string(data)}, nil
			},
		}, fs.WithBatch(2, time.Millisecond))

		res, err := c.CacheDir(context.Background(), docs)
		require.NoError(t, err)

		assert.Equal(t, 3, res.Processed)
		assert.Equal(t, 1, res.Skipped)
		require.Len(t, res.Errors, 1)
		assert.Contains(t, res.Errors[0].Error(), "bad.pdf")
		assert.Len(t, c.Entries(), 3)
	})

	t.Run("stops on canceled context", func(t *testing.T) {
		t.Parallel()

		docs := t.TempDir()
		writePDF(t, docs, "a.pdf", "%PDF a")
		writePDF(t, docs, "b.pdf", "%PDF b")

		ctx, cancel := context.WithCancel(context.Background())
		c := openCache(t, t.TempDir(), &mock.TextExtractor{
			ExtractFn: func(ctx context.Context, _ []byte) (*adamsdoc.Extraction, error) {
				cancel()
				return nil, ctx.Err()
			},
		}, fs.WithBatch(1, time.Millisecond))

		_, err := c.CacheDir(ctx, docs)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

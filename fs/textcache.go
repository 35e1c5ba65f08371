// Package fs provides the file-backed text cache for downloaded PDFs.
package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/adamsdoc"
	"golang.org/x/sync/errgroup"
)

// IndexFileName is the name of the JSON index inside the cache directory.
const IndexFileName = "cache-index.json"

// Batch defaults for CacheDir.
const (
	DefaultBatchSize  = 3
	DefaultBatchPause = 500 * time.Millisecond
)

// Ensure TextCache implements adamsdoc.TextCache at compile time.
var _ adamsdoc.TextCache = (*TextCache)(nil)

// TextCache stores extracted PDF text in <dir>/<id>.txt and keeps an index
// of entries in <dir>/cache-index.json. An entry is reused only while the
// content hash of its PDF is unchanged.
//
// TextCache is safe for concurrent use.
type TextCache struct {
	dir        string
	extractor  adamsdoc.TextExtractor
	now        func() time.Time
	batchSize  int
	batchPause time.Duration

	mu    sync.Mutex
	index map[string]*adamsdoc.CacheEntry
	stats struct {
		hits           int
		misses         int
		extractions    int
		extractionTime time.Duration
	}
}

// Option configures a TextCache.
type Option func(*TextCache)

// WithBatch sets how many PDFs CacheDir processes concurrently and the
// pause between groups.
func WithBatch(size int, pause time.Duration) Option {
	return func(c *TextCache) {
		c.batchSize = size
		c.batchPause = pause
	}
}

// WithClock sets the time source for extraction timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *TextCache) {
		c.now = now
	}
}

// NewTextCache creates a TextCache in dir using extractor.
// Open must be called before use.
func NewTextCache(dir string, extractor adamsdoc.TextExtractor, opts ...Option) *TextCache {
	c := &TextCache{
		dir:        dir,
		extractor:  extractor,
		now:        time.Now,
		batchSize:  DefaultBatchSize,
		batchPause: DefaultBatchPause,
		index:      make(map[string]*adamsdoc.CacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.batchSize < 1 {
		c.batchSize = 1
	}
	return c
}

// Open creates the cache directory and loads an existing index.
func (c *TextCache) Open() error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	data, err := os.ReadFile(c.indexPath())
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	} else if err != nil {
		return fmt.Errorf("read cache index: %w", err)
	}

	var entries []*adamsdoc.CacheEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("decode cache index: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range entries {
		c.index[e.DocumentID] = e
	}
	return nil
}

// Dir returns the cache directory.
func (c *TextCache) Dir() string {
	return c.dir
}

// GetCachedText returns the text of the PDF at path, extracting it only
// when the document is not cached or the file's hash has changed. An empty
// documentID defaults to the file name without its extension.
func (c *TextCache) GetCachedText(ctx context.Context, path, documentID string) (string, error) {
	if documentID == "" {
		documentID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := adamsdoc.ValidateDocumentID(documentID); err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", adamsdoc.Errorf(adamsdoc.ENOTFOUND, "PDF not found: %s", path)
	} else if err != nil {
		return "", err
	}
	hash := fmt.Sprintf("%016x", xxhash.Sum64(data))

	c.mu.Lock()
	if e, ok := c.index[documentID]; ok && e.Hash == hash {
		c.stats.hits++
		c.mu.Unlock()
		return e.Text, nil
	}
	c.stats.misses++
	c.mu.Unlock()

	begin := time.Now()
	ext, err := c.extractor.Extract(ctx, data)
	elapsed := time.Since(begin)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if adamsdoc.ErrorCode(err) == adamsdoc.EEXTRACT {
			return "", err
		}
		return "", adamsdoc.Errorf(adamsdoc.EEXTRACT, "extract %s: %v", documentID, err)
	}
	if strings.TrimSpace(ext.Text) == "" {
		return "", adamsdoc.Errorf(adamsdoc.EEXTRACT, "no text extracted from %s", documentID)
	}

	entry := &adamsdoc.CacheEntry{
		DocumentID:     documentID,
		FilePath:       path,
		Text:           ext.Text,
		ExtractedAt:    c.now(),
		FileSize:       int64(len(data)),
		Hash:           hash,
		EstimatedPages: adamsdoc.EstimatePages(ext.Text),
		Pages:          ext.Pages,
		ExtractionTime: elapsed,
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.WriteFile(c.textPath(documentID), []byte(ext.Text), 0644); err != nil {
		return "", fmt.Errorf("write cached text: %w", err)
	}
	c.index[documentID] = entry
	c.stats.extractions++
	c.stats.extractionTime += elapsed
	if err := c.saveIndex(); err != nil {
		return "", err
	}
	return ext.Text, nil
}

// Entry returns a copy of the index entry for documentID.
func (c *TextCache) Entry(documentID string) (*adamsdoc.CacheEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.index[documentID]
	if !ok {
		return nil, adamsdoc.Errorf(adamsdoc.ENOTFOUND, "document %s not cached", documentID)
	}
	cp := *e
	return &cp, nil
}

// Entries returns copies of all index entries ordered by document ID.
func (c *TextCache) Entries() []*adamsdoc.CacheEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sortedEntries()
}

// Stats describes the cache contents and its effectiveness.
type Stats struct {
	Entries               int           `json:"entries"`
	TotalTextSize         int           `json:"totalTextSize"`
	HitRate               float64       `json:"hitRate"`
	AverageExtractionTime time.Duration `json:"averageExtractionTime"`
}

// Stats reports cache usage since the cache was opened or last cleared.
func (c *TextCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{Entries: len(c.index)}
	for _, e := range c.index {
		s.TotalTextSize += len(e.Text)
	}
	if total := c.stats.hits + c.stats.misses; total > 0 {
		s.HitRate = float64(c.stats.hits) / float64(total)
	}
	if c.stats.extractions > 0 {
		s.AverageExtractionTime = c.stats.extractionTime / time.Duration(c.stats.extractions)
	}
	return s
}

// Clear removes every cached file and resets the index and statistics.
func (c *TextCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	files, err := os.ReadDir(c.dir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, f.Name())); err != nil {
			return err
		}
	}

	c.index = make(map[string]*adamsdoc.CacheEntry)
	c.stats.hits = 0
	c.stats.misses = 0
	c.stats.extractions = 0
	c.stats.extractionTime = 0
	return nil
}

// BatchResult summarizes a CacheDir run.
type BatchResult struct {
	Processed int
	Skipped   int
	Errors    []error
}

// CacheDir caches every .pdf file under root. Files are processed in
// concurrent groups with a pause between groups. Files that cannot be
// cached are counted as skipped; only a canceled context stops the run.
func (c *TextCache) CacheDir(ctx context.Context, root string) (*BatchResult, error) {
	paths, err := findPDFs(root)
	if err != nil {
		return nil, err
	}

	var processed, skipped atomic.Int64
	var mu sync.Mutex
	var errs []error

	for start := 0; start < len(paths); start += c.batchSize {
		if start > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.batchPause):
			}
		}

		end := min(start+c.batchSize, len(paths))
		var g errgroup.Group
		for _, path := range paths[start:end] {
			g.Go(func() error {
				if _, err := c.GetCachedText(ctx, path, ""); err != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					skipped.Add(1)
					mu.Lock()
					errs = append(errs, fmt.Errorf("%s: %w", path, err))
					mu.Unlock()
					return nil
				}
				processed.Add(1)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	return &BatchResult{
		Processed: int(processed.Load()),
		Skipped:   int(skipped.Load()),
		Errors:    errs,
	}, nil
}

func findPDFs(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".pdf") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

func (c *TextCache) indexPath() string {
	return filepath.Join(c.dir, IndexFileName)
}

func (c *TextCache) textPath(documentID string) string {
	return filepath.Join(c.dir, documentID+".txt")
}

// sortedEntries must be called with mu held.
func (c *TextCache) sortedEntries() []*adamsdoc.CacheEntry {
	entries := make([]*adamsdoc.CacheEntry, 0, len(c.index))
	for _, e := range c.index {
		cp := *e
		entries = append(entries, &cp)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].DocumentID < entries[j].DocumentID
	})
	return entries
}

// saveIndex writes the index to a temporary file and renames it over the
// previous snapshot. Must be called with mu held.
func (c *TextCache) saveIndex() error {
	data, err := json.MarshalIndent(c.sortedEntries(), "", "  ")
	if err != nil {
		return err
	}

	tmp := c.indexPath() + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write cache index: %w", err)
	}
	if err := os.Rename(tmp, c.indexPath()); err != nil {
		return fmt.Errorf("replace cache index: %w", err)
	}
	return nil
}

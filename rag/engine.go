// Package rag implements chunk-level retrieval over indexed document text.
//
// Documents are split into page-aware chunks and ranked against a question
// either by embedding similarity, when an embedder is configured, or by
// keyword occurrence counts.
package rag

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/fwojciec/adamsdoc"
)

// Default engine settings.
const (
	DefaultEmbedBatchSize = 20

	// CharsPerLine approximates character offsets from line numbers.
	CharsPerLine = 80

	// PhraseBonus is added to a chunk's keyword score when it contains the
	// whole question.
	PhraseBonus = 10
)

// Search modes reported by Stats.
const (
	ModeEmbedding = "embedding"
	ModeKeyword   = "keyword"
)

// Ensure Engine implements the domain interfaces at compile time.
var (
	_ adamsdoc.Indexer   = (*Engine)(nil)
	_ adamsdoc.Retriever = (*Engine)(nil)
)

// Engine holds indexed chunks in memory and ranks them against questions.
// Engine is safe for concurrent use.
type Engine struct {
	embedder       adamsdoc.Embedder
	chunkSize      int
	embedBatchSize int

	mu    sync.RWMutex
	docs  map[string][]*adamsdoc.Chunk
	order []string // document IDs in first-indexed order
}

// Option configures an Engine.
type Option func(*Engine)

// WithEmbedder enables embedding-based ranking.
func WithEmbedder(e adamsdoc.Embedder) Option {
	return func(eng *Engine) {
		eng.embedder = e
	}
}

// WithChunkSize sets the target chunk length in characters.
func WithChunkSize(n int) Option {
	return func(eng *Engine) {
		eng.chunkSize = n
	}
}

// WithEmbedBatchSize sets how many chunk texts are embedded per request.
func WithEmbedBatchSize(n int) Option {
	return func(eng *Engine) {
		eng.embedBatchSize = n
	}
}

// NewEngine creates an empty Engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		chunkSize:      adamsdoc.DefaultChunkSize,
		embedBatchSize: DefaultEmbedBatchSize,
		docs:           make(map[string][]*adamsdoc.Chunk),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.embedBatchSize < 1 {
		e.embedBatchSize = DefaultEmbedBatchSize
	}
	return e
}

// IndexDocument splits text into chunks and replaces any chunks previously
// indexed for documentID. When an embedder is configured chunks are embedded
// in batches; a failed batch leaves its chunks without embeddings and is
// reported in IndexResult.EmbedErr.
func (e *Engine) IndexDocument(ctx context.Context, documentID, text string, meta adamsdoc.DocumentMetadata, totalPages int) (*adamsdoc.IndexResult, error) {
	if documentID == "" {
		return nil, adamsdoc.Errorf(adamsdoc.EINVALID, "document ID required")
	}

	spans := adamsdoc.SplitWithPages(text, totalPages, e.chunkSize)

	if totalPages <= 0 {
		for _, s := range spans {
			totalPages = max(totalPages, s.PageNumber)
		}
	}

	chunks := make([]*adamsdoc.Chunk, len(spans))
	for i, s := range spans {
		chunks[i] = &adamsdoc.Chunk{
			Text: s.Text,
			Metadata: adamsdoc.ChunkMetadata{
				DocumentID: documentID,
				Title:      meta.Title,
				Index:      i,
				StartChar:  s.StartLine * CharsPerLine,
				EndChar:    s.EndLine * CharsPerLine,
				PageNumber: s.PageNumber,
				TotalPages: totalPages,
				Section:    adamsdoc.DetectSection(s.Text),
				StartLine:  s.StartLine,
				EndLine:    s.EndLine,
			},
		}
	}

	res := &adamsdoc.IndexResult{
		DocumentID: documentID,
		Chunks:     len(chunks),
		TotalPages: totalPages,
	}

	if e.embedder != nil {
		embedded, err := e.embed(ctx, chunks)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		res.Embedded = embedded
		res.EmbedErr = err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.docs[documentID]; !ok {
		e.order = append(e.order, documentID)
	}
	e.docs[documentID] = chunks

	return res, nil
}

// embed attaches embeddings to chunks batch by batch and returns how many
// chunks were embedded along with the first batch failure.
func (e *Engine) embed(ctx context.Context, chunks []*adamsdoc.Chunk) (int, error) {
	var embedded int
	var firstErr error

	for start := 0; start < len(chunks); start += e.embedBatchSize {
		if err := ctx.Err(); err != nil {
			return embedded, err
		}

		batch := chunks[start:min(start+e.embedBatchSize, len(chunks))]
		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}

		vectors, err := e.embedder.Embed(ctx, texts)
		if err == nil && len(vectors) != len(batch) {
			err = adamsdoc.Errorf(adamsdoc.EINTERNAL, "embedder returned %d vectors for %d texts", len(vectors), len(batch))
		}
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("embed chunks %d-%d: %w", start, start+len(batch)-1, err)
			}
			continue
		}

		for i, c := range batch {
			c.Embedding = vectors[i]
			embedded++
		}
	}

	return embedded, firstErr
}

// Search returns up to topK chunks ranked against question.
//
// When an embedder is configured and at least one chunk is embedded, chunks
// are ranked by cosine similarity to the question's embedding. Otherwise, or
// when the question cannot be embedded, chunks are ranked by keyword score
// normalized to the best match.
func (e *Engine) Search(ctx context.Context, question string, topK int) ([]adamsdoc.SearchResult, error) {
	if strings.TrimSpace(question) == "" {
		return nil, adamsdoc.Errorf(adamsdoc.EINVALID, "question required")
	}
	if topK <= 0 {
		return []adamsdoc.SearchResult{}, nil
	}

	chunks := e.snapshot()
	if len(chunks) == 0 {
		return []adamsdoc.SearchResult{}, nil
	}

	if e.embedder != nil && hasEmbeddings(chunks) {
		results, err := e.rankByEmbedding(ctx, chunks, question, topK)
		if err == nil {
			return results, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return rankByKeyword(chunks, question, topK), nil
}

func (e *Engine) rankByEmbedding(ctx context.Context, chunks []*adamsdoc.Chunk, question string, topK int) ([]adamsdoc.SearchResult, error) {
	vectors, err := e.embedder.Embed(ctx, []string{question})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, adamsdoc.Errorf(adamsdoc.EINTERNAL, "embedder returned %d vectors for 1 text", len(vectors))
	}
	q := vectors[0]

	var results []adamsdoc.SearchResult
	for _, c := range chunks {
		if c.Embedding == nil {
			continue
		}
		results = append(results, newResult(c, adamsdoc.CosineSimilarity(q, c.Embedding)))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func rankByKeyword(chunks []*adamsdoc.Chunk, question string, topK int) []adamsdoc.SearchResult {
	phrase := strings.ToLower(question)
	words := strings.Fields(phrase)

	results := []adamsdoc.SearchResult{}
	for _, c := range chunks {
		text := strings.ToLower(c.Text)

		var score float64
		for _, w := range words {
			score += float64(strings.Count(text, w))
		}
		if strings.Contains(text, phrase) {
			score += PhraseBonus
		}
		if score > 0 {
			results = append(results, newResult(c, score))
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}

	if len(results) > 0 {
		best := results[0].Score
		for i := range results {
			results[i].Score /= best
		}
	}
	return results
}

func newResult(c *adamsdoc.Chunk, score float64) adamsdoc.SearchResult {
	return adamsdoc.SearchResult{
		Chunk:    c,
		Score:    score,
		Citation: adamsdoc.FormatCitation(c.Metadata),
	}
}

func hasEmbeddings(chunks []*adamsdoc.Chunk) bool {
	for _, c := range chunks {
		if c.Embedding != nil {
			return true
		}
	}
	return false
}

// snapshot returns all chunks in document then chunk order.
func (e *Engine) snapshot() []*adamsdoc.Chunk {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var chunks []*adamsdoc.Chunk
	for _, id := range e.order {
		chunks = append(chunks, e.docs[id]...)
	}
	return chunks
}

// Chunks returns the chunks indexed for documentID.
// Returns ENOTFOUND if the document is not indexed.
func (e *Engine) Chunks(documentID string) ([]*adamsdoc.Chunk, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	chunks, ok := e.docs[documentID]
	if !ok {
		return nil, adamsdoc.Errorf(adamsdoc.ENOTFOUND, "document %s not indexed", documentID)
	}
	return append([]*adamsdoc.Chunk(nil), chunks...), nil
}

// RemoveDocument drops a document's chunks. It reports whether the
// document was indexed.
func (e *Engine) RemoveDocument(documentID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.docs[documentID]; !ok {
		return false
	}
	delete(e.docs, documentID)
	for i, id := range e.order {
		if id == documentID {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	return true
}

// Clear drops every indexed document.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.docs = make(map[string][]*adamsdoc.Chunk)
	e.order = nil
}

// Stats summarizes the indexed corpus.
type Stats struct {
	Documents          int    `json:"documents"`
	DocumentsWithPages int    `json:"documentsWithPages"`
	Chunks             int    `json:"chunks"`
	Embedded           int    `json:"embedded"`
	Mode               string `json:"mode"`
}

// Stats reports the indexed corpus and the mode Search would use.
func (e *Engine) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	s := Stats{Documents: len(e.docs), Mode: ModeKeyword}
	for _, chunks := range e.docs {
		s.Chunks += len(chunks)
		paged := false
		for _, c := range chunks {
			if c.Embedding != nil {
				s.Embedded++
			}
			if c.Metadata.PageNumber > 0 {
				paged = true
			}
		}
		if paged {
			s.DocumentsWithPages++
		}
	}
	if e.embedder != nil && s.Embedded > 0 {
		s.Mode = ModeEmbedding
	}
	return s
}

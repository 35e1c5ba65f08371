package adamsdoc

import (
	"context"
	"time"
)

// CacheEntry is the cached extraction of one document's PDF.
// An entry is valid only while Hash matches the hash of the file at FilePath.
type CacheEntry struct {
	DocumentID     string        `json:"documentId"`
	FilePath       string        `json:"filePath"`
	Text           string        `json:"text"`
	ExtractedAt    time.Time     `json:"extractedAt"`
	FileSize       int64         `json:"fileSize"`
	Hash           string        `json:"hash"`
	EstimatedPages int           `json:"estimatedPages"`
	Pages          int           `json:"pages,omitempty"` // reported by the extractor, 0 if unknown
	ExtractionTime time.Duration `json:"extractionTime,omitempty"`
}

// TextCache returns extracted text for downloaded PDFs, extracting only
// when the file is new or has changed.
type TextCache interface {
	// GetCachedText returns the text for the PDF at path.
	// Returns EEXTRACT if no usable text could be extracted.
	GetCachedText(ctx context.Context, path, documentID string) (string, error)

	// Entry returns the index entry for documentID.
	// Returns ENOTFOUND if the document has not been cached.
	Entry(documentID string) (*CacheEntry, error)
}

// Extraction is the text and page count extracted from a PDF.
type Extraction struct {
	Text  string
	Pages int
}

// TextExtractor extracts plain text from PDF bytes.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte) (*Extraction, error)
}

// Package pdf extracts plain text from PDF documents using ledongthuc/pdf.
package pdf

import (
	"bytes"
	"context"
	"strings"

	"github.com/fwojciec/adamsdoc"
	"github.com/ledongthuc/pdf"
)

// Ensure Extractor implements adamsdoc.TextExtractor at compile time.
var _ adamsdoc.TextExtractor = (*Extractor)(nil)

// Extractor extracts the text layer of a PDF page by page.
// Scanned documents without a text layer yield empty text.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the text of every page, pages separated by a blank line.
func (e *Extractor) Extract(ctx context.Context, data []byte) (ext *adamsdoc.Extraction, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			ext = nil
			err = adamsdoc.Errorf(adamsdoc.EEXTRACT, "malformed PDF: %v", r)
		}
	}()

	reader := bytes.NewReader(data)
	r, err := pdf.NewReader(reader, reader.Size())
	if err != nil {
		return nil, adamsdoc.Errorf(adamsdoc.EEXTRACT, "reading PDF: %v", err)
	}

	numPages := r.NumPage()
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, adamsdoc.Errorf(adamsdoc.EEXTRACT, "page %d: %v", i, err)
		}
		pages = append(pages, strings.TrimRight(text, " \n"))
	}

	return &adamsdoc.Extraction{
		Text:  strings.Join(pages, "\n\n"),
		Pages: numPages,
	}, nil
}

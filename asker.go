package adamsdoc

import "context"

// Answer is a generated answer with the chunks it was grounded on.
type Answer struct {
	Text    string
	Sources []SearchResult
}

// Asker answers natural language questions over the indexed documents.
type Asker interface {
	// Ask answers the question using the most relevant indexed chunks.
	// Returns ENOTFOUND if no indexed chunk matches the question.
	Ask(ctx context.Context, question string) (*Answer, error)
}

package main_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/fwojciec/adamsdoc"
	main "github.com/fwojciec/adamsdoc/cmd/adamsdoc"
	"github.com/fwojciec/adamsdoc/fs"
	"github.com/fwojciec/adamsdoc/mock"
	"github.com/stretchr/testify/require"
)

// newDeps returns Dependencies with output buffers and an opened text cache
// whose extractor returns the PDF bytes as text.
func newDeps(t *testing.T) (*main.Dependencies, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	textCache := fs.NewTextCache(t.TempDir(), &mock.TextExtractor{
		ExtractFn: func(_ context.Context, data []byte) (*adamsdoc.Extraction, error) {
			return &adamsdoc.Extraction{Text: string(data), Pages: 1}, nil
		},
	})
	require.NoError(t, textCache.Open())

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	return &main.Dependencies{
		Ctx:       context.Background(),
		Stdout:    stdout,
		Stderr:    stderr,
		TextCache: textCache,
		PDFDir:    t.TempDir(),
	}, stdout, stderr
}

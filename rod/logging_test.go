package rod_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/fwojciec/adamsdoc"
	"github.com/fwojciec/adamsdoc/mock"
	"github.com/fwojciec/adamsdoc/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingBrowser(t *testing.T) {
	t.Parallel()

	newLogger := func(buf *bytes.Buffer) *slog.Logger {
		return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	t.Run("logs navigation and snapshots", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		closed := false
		inner := &mock.Browser{
			OpenPageFn: func(_ context.Context) (adamsdoc.Page, error) {
				return &mock.Page{
					NavigateFn: func(_ context.Context, _ string) error { return nil },
					HTMLFn:     func(_ context.Context) (string, error) { return "<table></table>", nil },
					CloseFn:    func() error { closed = true; return nil },
				}, nil
			},
		}

		page, err := rod.NewLoggingBrowser(inner, newLogger(&buf)).OpenPage(context.Background())
		require.NoError(t, err)
		require.NoError(t, page.Navigate(context.Background(), "https://example.com/results"))
		html, err := page.HTML(context.Background())
		require.NoError(t, err)
		require.NoError(t, page.Close())

		assert.Equal(t, "<table></table>", html)
		assert.True(t, closed)
		out := buf.String()
		assert.Contains(t, out, "msg=navigate")
		assert.Contains(t, out, "url=https://example.com/results")
		assert.Contains(t, out, `msg="page html"`)
		assert.Contains(t, out, "bytes=15")
	})

	t.Run("logs open failures", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.Browser{
			OpenPageFn: func(_ context.Context) (adamsdoc.Page, error) {
				return nil, errors.New("chrome missing")
			},
		}

		page, err := rod.NewLoggingBrowser(inner, newLogger(&buf)).OpenPage(context.Background())

		require.Error(t, err)
		assert.Nil(t, page)
		assert.Contains(t, buf.String(), `err="chrome missing"`)
	})
}

//go:build integration

package gemini_test

import (
	"context"
	"testing"

	"github.com/fwojciec/adamsdoc"
	"github.com/fwojciec/adamsdoc/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenCounter_CountTokens(t *testing.T) {
	t.Parallel()

	tc, err := gemini.NewTokenCounter("gemini-2.0-flash")
	require.NoError(t, err)

	var _ adamsdoc.TokenCounter = tc

	t.Run("counts tokens in text", func(t *testing.T) {
		t.Parallel()

		count, err := tc.CountTokens(context.Background(), "Reactor coolant pump seal inspection.")
		require.NoError(t, err)
		assert.Positive(t, count)
	})

	t.Run("empty string returns zero", func(t *testing.T) {
		t.Parallel()

		count, err := tc.CountTokens(context.Background(), "")
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})
}

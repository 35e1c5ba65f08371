package rod_test

import (
	"context"
	"testing"

	"github.com/fwojciec/adamsdoc"
	"github.com/fwojciec/adamsdoc/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrowser_Lazy(t *testing.T) {
	t.Parallel()

	t.Run("does not launch before the first page", func(t *testing.T) {
		t.Parallel()

		b := rod.NewBrowser()

		assert.Zero(t, b.LauncherPID())
		assert.NoError(t, b.Close())
	})

	t.Run("close is idempotent", func(t *testing.T) {
		t.Parallel()

		b := rod.NewBrowser()

		require.NoError(t, b.Close())
		assert.NoError(t, b.Close())
	})

	t.Run("refuses pages after close", func(t *testing.T) {
		t.Parallel()

		b := rod.NewBrowser()
		require.NoError(t, b.Close())

		_, err := b.OpenPage(context.Background())

		assert.Equal(t, adamsdoc.EINVALID, adamsdoc.ErrorCode(err))
	})

	t.Run("checks context before launching", func(t *testing.T) {
		t.Parallel()

		b := rod.NewBrowser()
		defer b.Close()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := b.OpenPage(ctx)

		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, b.LauncherPID())
	})
}

package mock

import (
	"context"

	"github.com/fwojciec/adamsdoc"
)

var _ adamsdoc.Asker = (*Asker)(nil)

// Asker is a mock implementation of adamsdoc.Asker.
type Asker struct {
	AskFn func(ctx context.Context, question string) (*adamsdoc.Answer, error)
}

func (a *Asker) Ask(ctx context.Context, question string) (*adamsdoc.Answer, error) {
	return a.AskFn(ctx, question)
}

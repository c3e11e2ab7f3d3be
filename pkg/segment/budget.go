package segment

import (
	"context"
	"fmt"
)

// ctxCheckInterval must be a power of two.
const ctxCheckInterval = 1024

// budget counts steps and polls the context every ctxCheckInterval steps,
// starting with the first one.
type budget struct {
	ctx      context.Context
	maxSteps int64
	steps    int64
}

func newBudget(ctx context.Context, maxSteps int64) *budget {
	return &budget{ctx: ctx, maxSteps: maxSteps}
}

func (b *budget) step() error {
	b.steps++
	if b.maxSteps > 0 && b.steps > b.maxSteps {
		return fmt.Errorf("%w: more than %d steps", ErrBudgetExceeded, b.maxSteps)
	}
	if (b.steps-1)&(ctxCheckInterval-1) == 0 {
		if err := b.ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrBudgetExceeded, err)
		}
	}
	return nil
}

// withTimeout applies opts.Timeout to ctx. The returned cancel func is never nil.
func withTimeout(ctx context.Context, opts Options) (context.Context, context.CancelFunc) {
	if opts.Timeout > 0 {
		return context.WithTimeout(ctx, opts.Timeout)
	}
	return ctx, func() {}
}

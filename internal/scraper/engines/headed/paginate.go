package headed

import (
	"context"
	"time"
)

// scrollSurface is the slice of page behavior the pagination loop needs.
// BrowserInstance satisfies it; tests drive the loop with a fake.
type scrollSurface interface {
	ScrollToBottom() error
	ContentHeight() (float64, error)
	ClickLoadMore(selectors []string) (bool, error)
}

// settleFunc returns how long to wait after a scroll step for lazy content.
type settleFunc func() time.Duration

// paceFunc interleaves human-style page interaction between scroll steps.
// It may be nil.
type paceFunc func()

// sleepCtx pauses for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// loadMoreContent drives infinite scroll until the content height stops
// growing and no load-more control remains, or the scroll budget runs out.
// It reports whether any scrolling was performed.
func loadMoreContent(ctx context.Context, surface scrollSurface, loadMoreSelectors []string, budget int, settle settleFunc, pace paceFunc) (bool, error) {
	previousHeight, err := surface.ContentHeight()
	if err != nil {
		return false, err
	}

	scrollsPerformed := 0

	for attempt := 0; attempt < budget; attempt++ {
		if err := surface.ScrollToBottom(); err != nil {
			return scrollsPerformed > 0, err
		}

		if pace != nil {
			pace()
		}

		if err := sleepCtx(ctx, settle()); err != nil {
			return scrollsPerformed > 0, err
		}

		currentHeight, err := surface.ContentHeight()
		if err != nil {
			return scrollsPerformed > 0, err
		}

		if currentHeight == previousHeight {
			clicked, err := surface.ClickLoadMore(loadMoreSelectors)
			if err != nil {
				return scrollsPerformed > 0, err
			}
			if !clicked {
				break
			}
			if err := sleepCtx(ctx, settle()); err != nil {
				return scrollsPerformed > 0, err
			}
		}

		previousHeight = currentHeight
		scrollsPerformed++
	}

	return scrollsPerformed > 0, nil
}

package headed

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeSurface struct {
	heights     []float64
	heightIdx   int
	scrolls     int
	clicks      int
	clickResult bool
	scrollErr   error
}

func (f *fakeSurface) ScrollToBottom() error {
	if f.scrollErr != nil {
		return f.scrollErr
	}
	f.scrolls++
	return nil
}

func (f *fakeSurface) ContentHeight() (float64, error) {
	h := f.heights[f.heightIdx]
	if f.heightIdx < len(f.heights)-1 {
		f.heightIdx++
	}
	return h, nil
}

func (f *fakeSurface) ClickLoadMore(selectors []string) (bool, error) {
	f.clicks++
	return f.clickResult, nil
}

func noSettle() time.Duration { return 0 }

func TestLoadMoreContentStopsWhenHeightStagnates(t *testing.T) {
	// Height grows twice, then stalls. No load-more button.
	surface := &fakeSurface{heights: []float64{1000, 2000, 3000, 3000}}

	scrolled, err := loadMoreContent(context.Background(), surface, nil, 10, noSettle, nil)
	if err != nil {
		t.Fatalf("loadMoreContent: %v", err)
	}
	if !scrolled {
		t.Error("expected scrolling to be reported")
	}
	if surface.scrolls != 3 {
		t.Errorf("scrolls = %d, want 3 (two growth steps plus the stalled one)", surface.scrolls)
	}
	if surface.clicks != 1 {
		t.Errorf("clicks = %d, want one load-more attempt after stagnation", surface.clicks)
	}
}

func TestLoadMoreContentRespectsBudget(t *testing.T) {
	// Height grows forever; the budget must cap the loop.
	heights := make([]float64, 50)
	for i := range heights {
		heights[i] = float64((i + 1) * 1000)
	}
	surface := &fakeSurface{heights: heights}

	scrolled, err := loadMoreContent(context.Background(), surface, nil, 3, noSettle, nil)
	if err != nil {
		t.Fatalf("loadMoreContent: %v", err)
	}
	if !scrolled {
		t.Error("expected scrolling to be reported")
	}
	if surface.scrolls != 3 {
		t.Errorf("scrolls = %d, want the budget of 3", surface.scrolls)
	}
}

func TestLoadMoreContentClicksLoadMore(t *testing.T) {
	// Stalls immediately but a load-more button keeps the loop alive
	// until the budget runs out.
	surface := &fakeSurface{heights: []float64{1000, 1000}, clickResult: true}

	scrolled, err := loadMoreContent(context.Background(), surface, []string{".load-more-button"}, 4, noSettle, nil)
	if err != nil {
		t.Fatalf("loadMoreContent: %v", err)
	}
	if !scrolled {
		t.Error("expected scrolling to be reported")
	}
	if surface.clicks != 4 {
		t.Errorf("clicks = %d, want one per stalled attempt", surface.clicks)
	}
}

func TestLoadMoreContentNoScrollNeeded(t *testing.T) {
	surface := &fakeSurface{heights: []float64{1000, 1000}}

	scrolled, err := loadMoreContent(context.Background(), surface, nil, 5, noSettle, nil)
	if err != nil {
		t.Fatalf("loadMoreContent: %v", err)
	}
	if scrolled {
		t.Error("a page that never grows must report no scrolling performed")
	}
}

func TestLoadMoreContentPropagatesScrollError(t *testing.T) {
	scrollErr := errors.New("page detached")
	surface := &fakeSurface{heights: []float64{1000}, scrollErr: scrollErr}

	_, err := loadMoreContent(context.Background(), surface, nil, 5, noSettle, nil)
	if !errors.Is(err, scrollErr) {
		t.Errorf("err = %v, want the surface error propagated", err)
	}
}

func TestLoadMoreContentPacesBetweenScrolls(t *testing.T) {
	// Height grows until the budget caps the loop. The pace hook runs
	// once per scroll step, before the settle delay.
	heights := make([]float64, 10)
	for i := range heights {
		heights[i] = float64((i + 1) * 1000)
	}
	surface := &fakeSurface{heights: heights}

	paced := 0
	pace := func() { paced++ }

	scrolled, err := loadMoreContent(context.Background(), surface, nil, 4, noSettle, pace)
	if err != nil {
		t.Fatalf("loadMoreContent: %v", err)
	}
	if !scrolled {
		t.Error("expected scrolling to be reported")
	}
	if paced != surface.scrolls {
		t.Errorf("pace called %d times, want once per scroll (%d)", paced, surface.scrolls)
	}
}

func TestLoadMoreContentHonorsContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	heights := make([]float64, 10)
	for i := range heights {
		heights[i] = float64((i + 1) * 1000)
	}
	surface := &fakeSurface{heights: heights}

	_, err := loadMoreContent(ctx, surface, nil, 5, func() time.Duration { return time.Millisecond }, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

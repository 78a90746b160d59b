package antibot

import (
	"math/rand"
	"sync"
	"time"
)

// DelayScheduler paces a sequential loop of upstream calls. Every fifth item
// gets a longer pause to stay well inside provider rate limits, the first
// third of the batch runs faster, and everything else gets a medium jitter on
// top of the base delay.
type DelayScheduler struct {
	mu   sync.Mutex
	base time.Duration
	rng  *rand.Rand
}

// NewDelayScheduler creates a scheduler with a 1 second base delay.
// A nil source gets a time-seeded one.
func NewDelayScheduler(rng *rand.Rand) *DelayScheduler {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &DelayScheduler{
		base: time.Second,
		rng:  rng,
	}
}

// NextDelay returns the pause to take after processing item index out of total.
func (d *DelayScheduler) NextDelay(index, total int) time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()

	if index%5 == 0 {
		return d.base + d.uniform(time.Second, 2*time.Second)
	}
	if float64(index) < float64(total)*0.3 {
		return d.base + d.uniform(200*time.Millisecond, 800*time.Millisecond)
	}
	return d.base + d.uniform(500*time.Millisecond, time.Second)
}

func (d *DelayScheduler) uniform(min, max time.Duration) time.Duration {
	return min + time.Duration(d.rng.Float64()*float64(max-min))
}

package antibot

import (
	"math/rand"
	"sync"
	"time"
)

// Profile is one randomized browser fingerprint applied to a scraping session.
type Profile struct {
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
	Locale         string
	Timezone       string
	HasTouch       bool
	Headers        map[string]string
}

var userAgents = []string{
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:120.0) Gecko/20100101 Firefox/120.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:120.0) Gecko/20100101 Firefox/120.0",
	"Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
}

var viewports = []struct{ width, height int }{
	{1920, 1080},
	{1366, 768},
	{1536, 864},
	{1440, 900},
	{1280, 720},
}

// Sampler draws randomized fingerprints and pacing delays. The random source
// is injectable so callers can pin the sequence.
type Sampler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSampler creates a sampler. A nil source gets a time-seeded one.
func NewSampler(rng *rand.Rand) *Sampler {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Sampler{rng: rng}
}

// SampleProfile draws a fingerprint from the user agent and viewport pools.
func (s *Sampler) SampleProfile() Profile {
	s.mu.Lock()
	defer s.mu.Unlock()

	ua := userAgents[s.rng.Intn(len(userAgents))]
	vp := viewports[s.rng.Intn(len(viewports))]

	return Profile{
		UserAgent:      ua,
		ViewportWidth:  vp.width,
		ViewportHeight: vp.height,
		Locale:         "en-CA",
		Timezone:       "America/Toronto",
		HasTouch:       s.rng.Intn(2) == 0,
		Headers: map[string]string{
			"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
			"Accept-Language":           "en-CA,en;q=0.5",
			"Accept-Encoding":           "gzip, deflate, br",
			"DNT":                       "1",
			"Connection":                "keep-alive",
			"Upgrade-Insecure-Requests": "1",
			"Sec-Fetch-Dest":            "document",
			"Sec-Fetch-Mode":            "navigate",
			"Sec-Fetch-Site":            "none",
		},
	}
}

// RetryDelay is the pause before retrying a failed navigation, 2 to 5 seconds.
func (s *Sampler) RetryDelay() time.Duration {
	return s.uniform(2*time.Second, 5*time.Second)
}

// ChallengeCooldown is the pause after a bot challenge is detected,
// 5 to 10 seconds.
func (s *Sampler) ChallengeCooldown() time.Duration {
	return s.uniform(5*time.Second, 10*time.Second)
}

// SettleDelay is the wait after a scroll step for lazy content to land,
// 2 to 4 seconds.
func (s *Sampler) SettleDelay() time.Duration {
	return s.uniform(2*time.Second, 4*time.Second)
}

// ReadingPause mimics the short pauses of a human reading between wheel
// scrolls, 500 milliseconds to 1.5 seconds.
func (s *Sampler) ReadingPause() time.Duration {
	return s.uniform(500*time.Millisecond, 1500*time.Millisecond)
}

// Intn exposes the underlying source for small choices like wheel step counts.
func (s *Sampler) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

func (s *Sampler) uniform(min, max time.Duration) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return min + time.Duration(s.rng.Float64()*float64(max-min))
}

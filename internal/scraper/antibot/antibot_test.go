package antibot

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
)

func TestSampleProfilePools(t *testing.T) {
	sampler := NewSampler(rand.New(rand.NewSource(7)))

	for i := 0; i < 50; i++ {
		profile := sampler.SampleProfile()

		if !strings.Contains(profile.UserAgent, "Firefox") {
			t.Errorf("user agent %q is not from the Firefox pool", profile.UserAgent)
		}
		if profile.ViewportWidth < 1280 || profile.ViewportHeight < 720 {
			t.Errorf("viewport %dx%d outside known pool", profile.ViewportWidth, profile.ViewportHeight)
		}
		if profile.Locale != "en-CA" || profile.Timezone != "America/Toronto" {
			t.Errorf("unexpected locale/timezone: %s %s", profile.Locale, profile.Timezone)
		}
		if profile.Headers["Accept-Language"] != "en-CA,en;q=0.5" {
			t.Errorf("unexpected Accept-Language header: %q", profile.Headers["Accept-Language"])
		}
	}
}

func TestSampleProfileDeterministicWithSeed(t *testing.T) {
	a := NewSampler(rand.New(rand.NewSource(42)))
	b := NewSampler(rand.New(rand.NewSource(42)))

	for i := 0; i < 10; i++ {
		pa, pb := a.SampleProfile(), b.SampleProfile()
		if pa.UserAgent != pb.UserAgent || pa.ViewportWidth != pb.ViewportWidth {
			t.Fatalf("samplers with the same seed diverged at draw %d", i)
		}
	}
}

func TestDelayBounds(t *testing.T) {
	sampler := NewSampler(rand.New(rand.NewSource(1)))

	tests := []struct {
		name     string
		draw     func() time.Duration
		min, max time.Duration
	}{
		{"retry", sampler.RetryDelay, 2 * time.Second, 5 * time.Second},
		{"cooldown", sampler.ChallengeCooldown, 5 * time.Second, 10 * time.Second},
		{"settle", sampler.SettleDelay, 2 * time.Second, 4 * time.Second},
		{"reading", sampler.ReadingPause, 500 * time.Millisecond, 1500 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 100; i++ {
				d := tt.draw()
				if d < tt.min || d > tt.max {
					t.Fatalf("delay %v outside [%v, %v]", d, tt.min, tt.max)
				}
			}
		})
	}
}

func TestSchedulerNextDelay(t *testing.T) {
	scheduler := NewDelayScheduler(rand.New(rand.NewSource(3)))

	tests := []struct {
		name     string
		index    int
		total    int
		min, max time.Duration
	}{
		{"every fifth item pauses longer", 5, 20, 2 * time.Second, 3 * time.Second},
		{"index zero counts as a fifth item", 0, 20, 2 * time.Second, 3 * time.Second},
		{"early progress runs faster", 3, 20, 1200 * time.Millisecond, 1800 * time.Millisecond},
		{"steady state medium jitter", 13, 20, 1500 * time.Millisecond, 2 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 100; i++ {
				d := scheduler.NextDelay(tt.index, tt.total)
				if d < tt.min || d > tt.max {
					t.Fatalf("delay %v outside [%v, %v]", d, tt.min, tt.max)
				}
			}
		})
	}
}

func TestDetectChallenge(t *testing.T) {
	tests := []struct {
		name    string
		html    string
		matched bool
	}{
		{
			name:    "recaptcha iframe",
			html:    `<html><body><iframe src="https://www.google.com/recaptcha/api2/anchor"></iframe></body></html>`,
			matched: true,
		},
		{
			name:    "captcha class",
			html:    `<html><body><div class="g-captcha-box"></div></body></html>`,
			matched: true,
		},
		{
			name:    "verification text",
			html:    `<html><body><p>Please verify you are human to continue.</p></body></html>`,
			matched: true,
		},
		{
			name:    "unusual traffic text",
			html:    `<html><body><p>We detected unusual traffic from your network.</p></body></html>`,
			matched: true,
		},
		{
			name:    "normal product page",
			html:    `<html><body><div class="product-item"><h3>Laptop</h3></div></body></html>`,
			matched: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := goquery.NewDocumentFromReader(strings.NewReader(tt.html))
			if err != nil {
				t.Fatalf("parse fixture: %v", err)
			}
			indicator, matched := DetectChallenge(doc)
			if matched != tt.matched {
				t.Errorf("DetectChallenge() = (%q, %v), want matched=%v", indicator, matched, tt.matched)
			}
			if matched && indicator == "" {
				t.Error("matched challenges must report their indicator")
			}
		})
	}
}

func TestFindRecaptchaSiteKey(t *testing.T) {
	html := `<html><body><div class="g-recaptcha" data-sitekey="6LeIxAcTAAAAAJcZ"></div></body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}

	key, ok := FindRecaptchaSiteKey(doc)
	if !ok || key != "6LeIxAcTAAAAAJcZ" {
		t.Errorf("FindRecaptchaSiteKey() = (%q, %v), want the embedded key", key, ok)
	}

	plain, err := goquery.NewDocumentFromReader(strings.NewReader(`<html><body></body></html>`))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	if _, ok := FindRecaptchaSiteKey(plain); ok {
		t.Error("expected no site key on a plain page")
	}
}

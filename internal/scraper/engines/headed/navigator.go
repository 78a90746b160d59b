package headed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/lkl2050/ecommerce-llm-pipeline/internal/config"
	"github.com/lkl2050/ecommerce-llm-pipeline/internal/logging"
	"github.com/lkl2050/ecommerce-llm-pipeline/internal/logging/types"
	"github.com/lkl2050/ecommerce-llm-pipeline/internal/scraper/antibot"
)

// ChallengeSolver produces a response token for an embedded reCAPTCHA.
type ChallengeSolver interface {
	SolveRecaptcha(ctx context.Context, siteKey, pageURL string) (string, error)
}

// Navigator drives catalog page loads through retries, bot challenge
// handling and the content-presence wait.
type Navigator struct {
	config  *config.Config
	sampler *antibot.Sampler
	solver  ChallengeSolver
	logger  types.Logger
}

// NewNavigator creates a navigator. The solver may be nil, in which case
// challenges are handled with human simulation and cooldowns only.
func NewNavigator(cfg *config.Config, sampler *antibot.Sampler, solver ChallengeSolver) *Navigator {
	return &Navigator{
		config:  cfg,
		sampler: sampler,
		solver:  solver,
		logger:  logging.GetGlobalLogger(),
	}
}

// LoadCatalog navigates to the category page and leaves it ready for card
// collection. Navigation failures and bot challenges are retried up to the
// configured attempt count; a missing content selector is tolerated.
func (n *Navigator) LoadCatalog(ctx context.Context, browser *BrowserInstance, url string, contentSelectors []string) error {
	maxAttempts := n.config.Scraper.MaxRetries
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		n.logger.Info("Navigating to catalog page", map[string]interface{}{
			"url":     url,
			"attempt": attempt,
		})

		if err := browser.Navigate(ctx, url, n.config.Scraper.RequestTimeout); err != nil {
			lastErr = err
			n.logger.Warn("Navigation attempt failed", map[string]interface{}{
				"url":     url,
				"attempt": attempt,
				"error":   err.Error(),
			})
			if attempt < maxAttempts {
				if err := sleepCtx(ctx, n.sampler.RetryDelay()); err != nil {
					return err
				}
			}
			continue
		}

		// Let client-side rendering settle before inspecting the page.
		if err := sleepCtx(ctx, 3*time.Second); err != nil {
			return err
		}

		challenged, err := n.handleChallenge(ctx, browser, url)
		if err != nil {
			return err
		}
		if challenged {
			lastErr = fmt.Errorf("bot challenge on %s", url)
			continue
		}

		if marker := n.config.Catalog.TitleMarker; marker != "" {
			title, err := browser.GetPageTitle()
			if err == nil && !strings.Contains(strings.ToLower(title), marker) {
				lastErr = fmt.Errorf("unexpected page title %q for %s", title, url)
				n.logger.Warn("Landed on an unexpected page", map[string]interface{}{
					"url":     url,
					"title":   title,
					"attempt": attempt,
				})
				if attempt < maxAttempts {
					if err := sleepCtx(ctx, n.sampler.RetryDelay()); err != nil {
						return err
					}
				}
				continue
			}
		}

		matched, err := browser.WaitForAnySelector(contentSelectors, n.config.Scraper.ContentTimeout)
		if err != nil {
			// Proceed anyway. Some layouts render cards without matching
			// any known container selector.
			n.logger.Warn("No content selector resolved, proceeding", map[string]interface{}{
				"url":   url,
				"error": err.Error(),
			})
		} else {
			n.logger.Debug("Catalog content detected", map[string]interface{}{
				"selector": matched,
			})
		}

		return nil
	}

	return fmt.Errorf("catalog navigation failed after %d attempts: %w", maxAttempts, lastErr)
}

// handleChallenge inspects the page for bot detection markers. When a
// challenge is present it optionally solves an embedded reCAPTCHA, then
// simulates human interaction and cools down before the caller retries.
func (n *Navigator) handleChallenge(ctx context.Context, browser *BrowserInstance, url string) (bool, error) {
	html, err := browser.GetPageHTML()
	if err != nil {
		return false, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false, nil
	}

	indicator, found := antibot.DetectChallenge(doc)
	if !found {
		return false, nil
	}

	n.logger.Warn("Bot detection triggered", map[string]interface{}{
		"url":       url,
		"indicator": indicator,
	})

	if n.solver != nil && n.config.Scraper.Captcha.EnableAutoSolve {
		if siteKey, ok := antibot.FindRecaptchaSiteKey(doc); ok {
			token, err := n.solver.SolveRecaptcha(ctx, siteKey, url)
			if err != nil {
				n.logger.Warn("Captcha solve failed", map[string]interface{}{
					"url":   url,
					"error": err.Error(),
				})
			} else if err := browser.InjectCaptchaSolution(token); err != nil {
				n.logger.Warn("Captcha injection failed", map[string]interface{}{
					"url":   url,
					"error": err.Error(),
				})
			}
		}
	}

	if err := browser.SimulateHumanBehavior(n.sampler); err != nil {
		n.logger.Debug("Human behavior simulation failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if err := sleepCtx(ctx, n.sampler.ChallengeCooldown()); err != nil {
		return true, err
	}

	return true, nil
}

package captcha

import (
	"context"
	"fmt"
	"time"

	api2captcha "github.com/2captcha/2captcha-go"

	"github.com/lkl2050/ecommerce-llm-pipeline/internal/config"
	"github.com/lkl2050/ecommerce-llm-pipeline/internal/logging"
	"github.com/lkl2050/ecommerce-llm-pipeline/internal/logging/types"
)

// Solver wraps the 2CAPTCHA service for reCAPTCHA challenges that bot
// detection surfaces during catalog runs.
type Solver struct {
	config *config.Config
	client *api2captcha.Client
	logger types.Logger
}

// NewSolver creates a 2CAPTCHA solver instance
func NewSolver(cfg *config.Config) *Solver {
	logger := logging.GetGlobalLogger()

	if cfg.Scraper.Captcha.APIKey == "" {
		logger.Warn("2CAPTCHA API key not configured, captcha solving will be disabled", map[string]interface{}{})
	}

	client := api2captcha.NewClient(cfg.Scraper.Captcha.APIKey)
	client.DefaultTimeout = int(cfg.Scraper.Captcha.Timeout.Seconds())
	client.RecaptchaTimeout = int(cfg.Scraper.Captcha.Timeout.Seconds())
	client.PollingInterval = 5

	return &Solver{
		config: cfg,
		client: client,
		logger: logger,
	}
}

// SolveRecaptcha solves a reCAPTCHA v2 challenge and returns the response token
func (s *Solver) SolveRecaptcha(ctx context.Context, siteKey, pageURL string) (string, error) {
	if !s.config.Scraper.Captcha.EnableAutoSolve {
		return "", fmt.Errorf("captcha auto-solve is disabled")
	}
	if s.config.Scraper.Captcha.APIKey == "" {
		return "", fmt.Errorf("2CAPTCHA API key not configured")
	}

	s.logger.Info("Starting reCAPTCHA solving with 2CAPTCHA", map[string]interface{}{
		"site_key": siteKey,
		"page_url": pageURL,
	})

	startTime := time.Now()

	captcha := api2captcha.ReCaptcha{
		SiteKey: siteKey,
		Url:     pageURL,
	}

	code, _, err := s.client.Solve(captcha.ToRequest())
	if err != nil {
		s.logger.Error("Failed to solve reCAPTCHA", map[string]interface{}{
			"site_key": siteKey,
			"page_url": pageURL,
			"error":    err.Error(),
		})
		return "", fmt.Errorf("failed to solve reCAPTCHA: %w", err)
	}

	s.logger.Info("Successfully solved reCAPTCHA", map[string]interface{}{
		"site_key":     siteKey,
		"solving_time": time.Since(startTime).String(),
	})

	return code, nil
}

// IsHealthy reports whether the solver can reach the 2CAPTCHA service
func (s *Solver) IsHealthy() bool {
	if s.config.Scraper.Captcha.APIKey == "" {
		return false
	}

	balance, err := s.client.GetBalance()
	if err != nil {
		s.logger.Warn("2CAPTCHA health check failed", map[string]interface{}{
			"error": err.Error(),
		})
		return false
	}

	return balance > 0
}

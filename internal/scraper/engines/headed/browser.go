package headed

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/lkl2050/ecommerce-llm-pipeline/internal/config"
	"github.com/lkl2050/ecommerce-llm-pipeline/internal/logging"
	"github.com/lkl2050/ecommerce-llm-pipeline/internal/logging/types"
	"github.com/lkl2050/ecommerce-llm-pipeline/internal/scraper/antibot"
)

// BrowserManager manages stealth browser instances for catalog runs
type BrowserManager struct {
	config   *config.Config
	launcher *launcher.Launcher
	browsers []*rod.Browser
	mu       sync.RWMutex
	logger   types.Logger
}

// BrowserInstance represents a managed browser page carrying one fingerprint
type BrowserInstance struct {
	Browser   *rod.Browser
	Page      *rod.Page
	Profile   antibot.Profile
	manager   *BrowserManager
	createdAt time.Time
}

// NewBrowserManager creates a new browser manager
func NewBrowserManager(cfg *config.Config) *BrowserManager {
	logger := logging.GetGlobalLogger()

	// Setup launcher with stealth mode and critical Docker flags
	l := launcher.New().
		Headless(cfg.Scraper.HeadlessMode).
		NoSandbox(true).
		Set("disable-blink-features", "AutomationControlled").
		Set("disable-web-security").
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-gpu").          // prevents GPU context failures in Docker
		Set("disable-dev-shm-usage") // overcomes Docker shared memory limitations

	// Use system-installed Chrome/Chromium instead of downloading
	if chromePath := getSystemChromePath(); chromePath != "" {
		l = l.Bin(chromePath)
		logger.Info("Using system Chrome browser", map[string]interface{}{
			"chrome_path": chromePath,
		})
	} else {
		logger.Warn("System Chrome not found, Rod will download browser", map[string]interface{}{})
	}

	return &BrowserManager{
		config:   cfg,
		launcher: l,
		browsers: make([]*rod.Browser, 0),
		logger:   logger,
	}
}

// GetBrowser returns a browser instance with the given fingerprint applied
func (bm *BrowserManager) GetBrowser(ctx context.Context, profile antibot.Profile) (*BrowserInstance, error) {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	// Reuse a healthy browser when one exists
	for _, browser := range bm.browsers {
		if bm.isBrowserHealthy(browser) {
			page, err := bm.createStealthPage(browser, profile)
			if err != nil {
				bm.logger.Warn("Failed to create page from existing browser", map[string]interface{}{
					"error": err.Error(),
				})
				continue
			}

			return &BrowserInstance{
				Browser:   browser,
				Page:      page,
				Profile:   profile,
				manager:   bm,
				createdAt: time.Now(),
			}, nil
		}
	}

	browser, err := bm.createBrowser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create browser: %w", err)
	}

	page, err := bm.createStealthPage(browser, profile)
	if err != nil {
		browser.MustClose()
		return nil, fmt.Errorf("failed to create stealth page: %w", err)
	}

	bm.browsers = append(bm.browsers, browser)

	return &BrowserInstance{
		Browser:   browser,
		Page:      page,
		Profile:   profile,
		manager:   bm,
		createdAt: time.Now(),
	}, nil
}

// createBrowser launches and connects a new browser instance
func (bm *BrowserManager) createBrowser(ctx context.Context) (*rod.Browser, error) {
	url, err := bm.launcher.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	bm.logger.Info("New browser instance created", map[string]interface{}{})
	return browser, nil
}

// createStealthPage creates a page with the fingerprint applied. Stealth
// patches are skipped when the scraper config disables stealth mode.
func (bm *BrowserManager) createStealthPage(browser *rod.Browser, profile antibot.Profile) (*rod.Page, error) {
	var page *rod.Page
	var err error
	if bm.config.Scraper.StealthMode {
		page, err = stealth.Page(browser)
		if err != nil {
			return nil, fmt.Errorf("failed to create stealth page: %w", err)
		}
	} else {
		page, err = browser.Page(proto.TargetCreateTarget{})
		if err != nil {
			return nil, fmt.Errorf("failed to create page: %w", err)
		}
	}

	err = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             profile.ViewportWidth,
		Height:            profile.ViewportHeight,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		bm.logger.Warn("Failed to set viewport", map[string]interface{}{
			"error": err.Error(),
		})
	}

	err = page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      profile.UserAgent,
		AcceptLanguage: profile.Headers["Accept-Language"],
	})
	if err != nil {
		bm.logger.Warn("Failed to set user agent", map[string]interface{}{
			"error": err.Error(),
		})
	}

	err = rod.Try(func() {
		_ = proto.EmulationSetTimezoneOverride{TimezoneID: profile.Timezone}.Call(page)
	})
	if err != nil {
		bm.logger.Debug("Failed to set timezone override", map[string]interface{}{
			"error": err.Error(),
		})
	}

	for name, value := range profile.Headers {
		if _, err := page.SetExtraHeaders([]string{name, value}); err != nil {
			bm.logger.Debug("Failed to set header", map[string]interface{}{
				"error":  err.Error(),
				"header": name,
			})
		}
	}

	if !bm.config.Scraper.StealthMode {
		return page, nil
	}

	// Inject additional stealth JavaScript to mask automation
	err = rod.Try(func() {
		page.MustEval(fmt.Sprintf(`() => {
			Object.defineProperty(navigator, 'webdriver', {
				get: () => undefined,
			});

			Object.defineProperty(navigator, 'plugins', {
				get: () => [1, 2, 3, 4, 5],
			});

			Object.defineProperty(navigator, 'languages', {
				get: () => ['en-CA', 'en'],
			});

			window.chrome = {
				runtime: {},
			};

			const originalQuery = window.navigator.permissions.query;
			window.navigator.permissions.query = (parameters) => (
				parameters.name === 'notifications' ?
					Promise.resolve({ state: Notification.permission }) :
					originalQuery(parameters)
			);

			Object.defineProperty(screen, 'width', {
				get: () => %d,
			});
			Object.defineProperty(screen, 'height', {
				get: () => %d,
			});
		}`, profile.ViewportWidth, profile.ViewportHeight))
	})
	if err != nil {
		bm.logger.Warn("Failed to inject stealth JavaScript", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return page, nil
}

// Release closes the instance's page. The underlying browser stays pooled.
func (bi *BrowserInstance) Release() {
	if bi.Page != nil {
		_ = rod.Try(func() {
			bi.Page.MustClose()
		})
	}
	bi.manager.logger.Debug("Browser instance released")
}

// Navigate navigates the page to the specified URL with timeout
func (bi *BrowserInstance) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	navCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := rod.Try(func() {
		bi.Page.Context(navCtx).MustNavigate(url).MustWaitLoad()
	})
	if err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}

	bi.manager.logger.Debug("Successfully navigated to URL", map[string]interface{}{
		"url": url,
	})
	return nil
}

// GetPageHTML returns the full HTML content of the current page
func (bi *BrowserInstance) GetPageHTML() (string, error) {
	html, err := bi.Page.HTML()
	if err != nil {
		return "", fmt.Errorf("failed to get page HTML: %w", err)
	}
	return html, nil
}

// GetPageTitle returns the document title of the current page
func (bi *BrowserInstance) GetPageTitle() (string, error) {
	var title string
	err := rod.Try(func() {
		title = bi.Page.MustInfo().Title
	})
	if err != nil {
		return "", fmt.Errorf("failed to get page title: %w", err)
	}
	return title, nil
}

// perSelectorWait splits a total timeout evenly across n selector
// candidates, clamped to at least one second and at most limit (when
// limit is positive). Returns zero when there are no candidates.
func perSelectorWait(total, limit time.Duration, n int) time.Duration {
	if n <= 0 {
		return 0
	}
	per := total / time.Duration(n)
	if per < time.Second {
		per = time.Second
	}
	if limit > 0 && per > limit {
		per = limit
	}
	return per
}

// WaitForAnySelector waits until one of the selector candidates appears,
// returning the one that matched first.
func (bi *BrowserInstance) WaitForAnySelector(selectors []string, timeout time.Duration) (string, error) {
	if len(selectors) == 0 {
		return "", fmt.Errorf("no selector candidates to wait for")
	}

	perSelector := perSelectorWait(timeout, bi.manager.config.Scraper.SelectorTimeout, len(selectors))

	for _, selector := range selectors {
		ctx, cancel := context.WithTimeout(context.Background(), perSelector)
		err := rod.Try(func() {
			bi.Page.Context(ctx).MustElement(selector)
		})
		cancel()
		if err == nil {
			return selector, nil
		}
	}

	return "", fmt.Errorf("none of %d selector candidates appeared within timeout", len(selectors))
}

// ScrollToBottom scrolls the window to the bottom of the document
func (bi *BrowserInstance) ScrollToBottom() error {
	err := rod.Try(func() {
		bi.Page.MustEval(`() => window.scrollTo(0, document.body.scrollHeight)`)
	})
	if err != nil {
		return fmt.Errorf("failed to scroll to bottom: %w", err)
	}
	return nil
}

// ContentHeight returns the current document scroll height
func (bi *BrowserInstance) ContentHeight() (float64, error) {
	var height float64
	err := rod.Try(func() {
		height = bi.Page.MustEval(`() => document.body.scrollHeight`).Num()
	})
	if err != nil {
		return 0, fmt.Errorf("failed to read content height: %w", err)
	}
	return height, nil
}

// ClickLoadMore clicks the first visible element among the load-more selector
// candidates. It reports whether anything was clicked.
func (bi *BrowserInstance) ClickLoadMore(selectors []string) (bool, error) {
	for _, selector := range selectors {
		clicked := false
		err := rod.Try(func() {
			elements := bi.Page.MustElements(selector)
			for _, el := range elements {
				if visible, _ := el.Visible(); visible {
					el.MustClick()
					clicked = true
					return
				}
			}
		})
		if err == nil && clicked {
			return true, nil
		}
	}
	return false, nil
}

// OpenDetailPage opens a product detail page in a new tab on the same browser,
// inheriting the session fingerprint.
func (bi *BrowserInstance) OpenDetailPage(ctx context.Context, url string, timeout time.Duration) (*rod.Page, error) {
	var page *rod.Page
	err := rod.Try(func() {
		page = bi.Browser.MustPage()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open detail page: %w", err)
	}

	navCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err = rod.Try(func() {
		page.Context(navCtx).MustNavigate(url).MustWaitLoad()
	})
	if err != nil {
		_ = rod.Try(func() { page.MustClose() })
		return nil, fmt.Errorf("failed to navigate detail page to %s: %w", url, err)
	}

	return page, nil
}

// InjectCaptchaSolution injects a solved reCAPTCHA token into the page and
// triggers the widget callback so the challenge form proceeds.
func (bi *BrowserInstance) InjectCaptchaSolution(solution string) error {
	js := fmt.Sprintf(`
		if (window.grecaptcha && typeof window.grecaptcha.getResponse === 'function') {
			document.getElementById('g-recaptcha-response').innerHTML = '%s';

			let recaptchaElement = document.querySelector('.g-recaptcha');
			if (recaptchaElement) {
				let callback = recaptchaElement.getAttribute('data-callback');
				if (callback && typeof window[callback] === 'function') {
					window[callback]('%s');
				}
			}
		}

		let responseElements = document.querySelectorAll('[name="g-recaptcha-response"]');
		for (let element of responseElements) {
			element.value = '%s';
			element.innerHTML = '%s';
		}

		let forms = document.querySelectorAll('form');
		for (let form of forms) {
			if (form.querySelector('.g-recaptcha') || form.querySelector('[name="g-recaptcha-response"]')) {
				form.submit();
				break;
			}
		}
	`, solution, solution, solution, solution)

	err := rod.Try(func() {
		bi.Page.MustEval(js)
	})
	if err != nil {
		return fmt.Errorf("failed to inject captcha solution: %w", err)
	}

	bi.manager.logger.Debug("Captcha solution injected successfully")
	return nil
}

// SimulateHumanBehavior performs mouse movement, wheel scrolls and reading
// pauses between automation steps.
func (bi *BrowserInstance) SimulateHumanBehavior(sampler *antibot.Sampler) error {
	err := rod.Try(func() {
		bi.Page.Mouse.MustMoveTo(
			float64(100+sampler.Intn(700)),
			float64(100+sampler.Intn(500)),
		)

		scrolls := 2 + sampler.Intn(3)
		for i := 0; i < scrolls; i++ {
			bi.Page.Mouse.MustScroll(0, float64(100+sampler.Intn(200)))
			time.Sleep(sampler.ReadingPause())
		}
	})
	if err != nil {
		return fmt.Errorf("failed to simulate human behavior: %w", err)
	}

	bi.manager.logger.Debug("Human behavior simulation completed")
	return nil
}

// isBrowserHealthy checks if a browser instance is still connected
func (bm *BrowserManager) isBrowserHealthy(browser *rod.Browser) bool {
	err := rod.Try(func() {
		browser.MustPages()
	})
	return err == nil
}

// Cleanup closes all browser instances and launchers
func (bm *BrowserManager) Cleanup() {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	for _, browser := range bm.browsers {
		if bm.isBrowserHealthy(browser) {
			browser.MustClose()
		}
	}

	bm.browsers = nil
	bm.launcher.Cleanup()
	bm.logger.Info("Browser manager cleanup completed")
}

// IsHealthy checks if the browser manager is healthy
func (bm *BrowserManager) IsHealthy() bool {
	bm.mu.RLock()
	defer bm.mu.RUnlock()

	for _, browser := range bm.browsers {
		if !bm.isBrowserHealthy(browser) {
			return false
		}
	}
	return true
}

// getSystemChromePath finds the system-installed Chrome/Chromium browser
func getSystemChromePath() string {
	if chromeBin := os.Getenv("CHROME_BIN"); chromeBin != "" {
		if _, err := os.Stat(chromeBin); err == nil {
			return chromeBin
		}
	}

	if chromePath := os.Getenv("CHROME_PATH"); chromePath != "" {
		if _, err := os.Stat(chromePath); err == nil {
			return chromePath
		}
	}

	commonPaths := []string{
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/opt/google/chrome/chrome",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	}

	for _, path := range commonPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

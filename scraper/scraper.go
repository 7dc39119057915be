// Package scraper drives a headless browser to load pages while evading
// common bot-detection and challenge barriers, and hands the rendered HTML
// to the extraction layer.
package scraper

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"

	"github.com/clipvault/webclip/config"
	"github.com/clipvault/webclip/extract"
	"github.com/clipvault/webclip/fetch"
	"github.com/clipvault/webclip/models"
	"github.com/clipvault/webclip/resolver"
)

// Scraper owns the process-wide browser instance. The browser is created at
// construction and reused across Scrape calls; only pages are per-call.
// It is safe for concurrent use.
type Scraper struct {
	mu      sync.Mutex
	browser *rod.Browser

	cfg         config.ScrapingConfig
	resolver    *resolver.Resolver
	extractor   *extract.Extractor
	activePages atomic.Int32
}

// NewScraper launches a headless browser with anti-automation flags and
// wires up the resolver and extractor against a shared probe client.
func NewScraper(cfg config.ScrapingConfig) (*Scraper, error) {
	if len(cfg.UserAgents) == 0 {
		cfg.UserAgents = config.Default().UserAgents
	}

	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox)

	if cfg.BrowserBin != "" {
		l = l.Bin(cfg.BrowserBin)
	}

	// ── Stealth flags ────────────────────────────────────────────────
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-accelerated-2d-canvas"))
	l.Set(flags.Flag("disable-gpu"))
	l.Set(flags.Flag("disable-notifications"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("disable-infobars"))
	l.Set(flags.Flag("ignore-certificate-errors"))
	l.Set(flags.Flag("no-first-run"))
	l.Set(flags.Flag("window-size"), fmt.Sprintf("%d,%d", cfg.Viewport.Width, cfg.Viewport.Height))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to launch browser", "", err)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to connect to browser", "", err)
	}

	client := fetch.NewClient(cfg.MaxRedirects, cfg.ProbeRate, cfg.ProbeBurst)

	return &Scraper{
		browser:   browser,
		cfg:       cfg,
		resolver:  resolver.New(cfg, client),
		extractor: extract.New(cfg, client),
	}, nil
}

// ActivePages returns the number of pages currently open for in-flight
// Scrape calls. It returns to its pre-call value after every call, success
// or failure.
func (s *Scraper) ActivePages() int {
	return int(s.activePages.Load())
}

// Close kills the browser process and clears the handle. Scrape calls made
// after Close fail until a new Scraper is constructed.
func (s *Scraper) Close() {
	s.mu.Lock()
	browser := s.browser
	s.browser = nil
	s.mu.Unlock()

	if browser == nil {
		return
	}
	slog.Info("scraper shutting down: closing browser")
	browser.MustClose()
	slog.Info("scraper shutdown complete")
}

// currentBrowser returns the shared browser handle, or an error when the
// scraper has been closed.
func (s *Scraper) currentBrowser() (*rod.Browser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.browser == nil {
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "scraper is closed", "", nil)
	}
	return s.browser, nil
}

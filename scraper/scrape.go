package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/clipvault/webclip/config"
	"github.com/clipvault/webclip/models"
)

// readyJS is polled until the document is fully loaded and no
// loading-indicator class remains on the body.
const readyJS = `() => document.readyState === "complete" && !document.querySelector("body.loading")`

// Scrape resolves the input to a live URL, loads it in a fresh stealth page
// and extracts a WebContent record.
//
// Lifecycle:
//
//  1. Resolve      – always succeeds, falls back to a best-effort URL
//  2. Open page    – per-call resource, closed on every exit path
//  3. Session      – UA, viewport, headers, overrides (before navigation!)
//  4. Navigate     – with the configured timeout; alternative root paths
//     (/index.html, /home, /main) are tried only when the
//     resolved URL has an empty or root path and navigation
//     yielded no response at all
//  5. Gate         – readiness wait, scroll simulation, cookie dismissal,
//     challenge detection (CAPTCHA/interstitial is fatal)
//  6. Extract      – metadata, body, images, links, screenshots
func (s *Scraper) Scrape(ctx context.Context, input string) (*models.WebContent, error) {
	target := s.resolver.Normalize(ctx, input)
	slog.Info("scraping", "input", input, "url", target)

	browser, err := s.currentBrowser()
	if err != nil {
		return nil, err
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to open page", target, err)
	}
	s.activePages.Add(1)
	defer func() {
		// The original page reference closes fine even when the request
		// context has already expired.
		if closeErr := page.Close(); closeErr != nil {
			slog.Warn("page close failed", "url", target, "error", closeErr)
		}
		s.activePages.Add(-1)
	}()

	if err := s.setupSession(page); err != nil {
		return nil, err
	}

	navCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	p := page.Context(navCtx)

	// Registered before Navigate so no in-flight request is missed.
	waitIdle := p.WaitRequestIdle(500*time.Millisecond, nil, nil, nil)

	if err := s.navigate(p, target); err != nil {
		return nil, err
	}
	waitIdle()

	// waitIdle unblocks silently when the navigation deadline expires on a
	// page that never goes idle; that is a load timeout, not a later
	// extraction failure.
	if errors.Is(navCtx.Err(), context.DeadlineExceeded) {
		return nil, models.NewScrapeError(models.ErrCodeTimeout, "Page load timeout", target, navCtx.Err())
	}

	if status := pageStatus(p); status >= 400 {
		return nil, models.NewHTTPError(target, status)
	}

	if err := s.passAntiBot(ctx, page, target); err != nil {
		return nil, err
	}

	rawHTML, err := p.HTML()
	if err != nil {
		return nil, categorizeError(err, models.ErrCodeExtraction, "failed to read page HTML", target)
	}
	finalURL := evalStringOrEmpty(p, `() => window.location.href`)
	if finalURL == "" {
		finalURL = target
	}

	content := s.extractor.Extract(ctx, rawHTML, finalURL)
	if s.cfg.ScreenshotEnabled {
		content.Screenshots = captureScreenshots(p, s.cfg.Viewport)
	}
	content.FetchedAt = time.Now()

	slog.Info("scrape complete", "url", finalURL,
		"links", len(content.Links), "images", len(content.Images))
	return content, nil
}

// navigate loads the target, retrying the documented alternative root paths
// in order when the primary navigation yields no response. A timeout is
// never retried; an HTTP error status is handled by the caller, not here.
func (s *Scraper) navigate(p *rod.Page, target string) error {
	navErr := p.Navigate(target)
	if navErr == nil {
		return nil
	}
	if errors.Is(navErr, context.DeadlineExceeded) {
		return models.NewScrapeError(models.ErrCodeTimeout, "Page load timeout", target, navErr)
	}

	for _, alt := range alternativePaths(target) {
		slog.Debug("trying alternative path", "url", alt)
		altErr := p.Navigate(alt)
		if altErr == nil {
			return nil
		}
		if errors.Is(altErr, context.DeadlineExceeded) {
			return models.NewScrapeError(models.ErrCodeTimeout, "Page load timeout", target, altErr)
		}
	}

	return models.NewScrapeError(models.ErrCodeNavigation, "Failed to load page", target, navErr)
}

// alternativePaths generates the root-relative fallback paths, only for
// URLs with an empty or root path.
func alternativePaths(target string) []string {
	u, err := url.Parse(target)
	if err != nil {
		return nil
	}
	if u.Path != "" && u.Path != "/" {
		return nil
	}
	base := u.Scheme + "://" + u.Host
	return []string{
		base + "/index.html",
		base + "/home",
		base + "/main",
	}
}

// passAntiBot waits for the page to be truly ready, simulates human
// scrolling, dismisses cookie popups and gates on challenge detection.
func (s *Scraper) passAntiBot(ctx context.Context, page *rod.Page, target string) error {
	waitCtx, cancel := context.WithTimeout(ctx, s.cfg.MaxWaitTime)
	defer cancel()
	p := page.Context(waitCtx)

	if err := p.Wait(rod.Eval(readyJS)); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return models.NewScrapeError(models.ErrCodeTimeout, "Page never became ready", target, err)
		}
		slog.Debug("readiness wait did not converge, proceeding", "url", target, "error", err)
	}

	s.simulateScrolling(waitCtx, p)
	dismissCookiePopups(p)

	// The challenge gate fails closed: if the page cannot be inspected we
	// do not know it is clear, so the scrape fails rather than proceeding.
	outcome, err := detectChallenge(p)
	if err != nil {
		return categorizeError(err, models.ErrCodeBrowserCrash, "challenge check failed", target)
	}
	switch outcome {
	case CaptchaDetected:
		return models.NewScrapeError(models.ErrCodeChallengeBlocked, "CAPTCHA detected", currentURL(p, target), nil)
	case ChallengeDetected:
		return models.NewScrapeError(models.ErrCodeChallengeBlocked, "bot-mitigation challenge detected", currentURL(p, target), nil)
	}
	return nil
}

// categorizeError wraps a raw page error, reclassifying an expired or
// canceled deadline as a timeout so late failures do not masquerade as
// extraction or browser problems.
func categorizeError(err error, code, message, target string) *models.ScrapeError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return models.NewScrapeError(models.ErrCodeTimeout, "Page load timeout", target, err)
	}
	return models.NewScrapeError(code, message, target, err)
}

// pageStatus reads the navigation HTTP status via the performance API,
// which is available without any CDP event listeners. Returns 0 when it
// cannot be determined.
func pageStatus(p *rod.Page) int {
	res, err := p.Eval(`() => {
		try {
			const entries = performance.getEntriesByType("navigation");
			if (entries.length > 0) return entries[0].responseStatus || 0;
		} catch(e) {}
		return 0;
	}`)
	if err != nil {
		return 0
	}
	return res.Value.Int()
}

// captureScreenshots takes a viewport capture and a full-page capture.
// Either may be skipped on error; screenshots are best-effort.
func captureScreenshots(p *rod.Page, vp config.Viewport) []models.Screenshot {
	var shots []models.Screenshot

	if data, err := p.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	}); err == nil {
		shots = append(shots, models.Screenshot{
			Data:     data,
			Viewport: fmt.Sprintf("%dx%d", vp.Width, vp.Height),
		})
	} else {
		slog.Debug("viewport screenshot failed", "error", err)
	}

	if data, err := p.Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	}); err == nil {
		shots = append(shots, models.Screenshot{Data: data, Viewport: "full"})
	} else {
		slog.Debug("full-page screenshot failed", "error", err)
	}

	return shots
}

// evalStringOrEmpty evaluates a JS expression and returns the string
// result, swallowing any errors.
func evalStringOrEmpty(p *rod.Page, js string) string {
	res, err := p.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// currentURL returns the page's current URL, falling back to the
// navigation target when it cannot be read.
func currentURL(p *rod.Page, fallback string) string {
	if u := evalStringOrEmpty(p, `() => window.location.href`); u != "" {
		return u
	}
	return fallback
}

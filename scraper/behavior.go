package scraper

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
)

// scrollDurationMs is the in-page smooth-scroll animation length.
const scrollDurationMs = 10000

// scrollSettle is the fixed pause after starting the scroll, giving
// lazy-loaded content time to appear before extraction.
const scrollSettle = 2 * time.Second

// scrollJS animates a smooth scroll from top to full document height over
// a fixed duration using requestAnimationFrame. The animation runs inside
// the page and is bounded by its own duration, independent of page
// responsiveness.
const scrollJS = `(duration) => {
	const height = document.body.scrollHeight;
	const start = performance.now();
	const step = (timestamp) => {
		const elapsed = timestamp - start;
		const progress = Math.min(elapsed / duration, 1);
		window.scrollTo(0, height * progress);
		if (progress < 1) {
			requestAnimationFrame(step);
		}
	};
	requestAnimationFrame(step);
}`

// simulateScrolling mimics human interaction before extraction: it starts
// the smooth scroll and pauses briefly. Failures are non-fatal; a page
// that rejects the scroll script still gets extracted.
func (s *Scraper) simulateScrolling(ctx context.Context, p *rod.Page) {
	if !s.cfg.JSEnabled {
		return
	}
	if _, err := p.Eval(scrollJS, scrollDurationMs); err != nil {
		slog.Debug("scroll simulation failed", "error", err)
		return
	}

	select {
	case <-time.After(scrollSettle):
	case <-ctx.Done():
	}
}

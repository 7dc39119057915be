package scraper

import (
	"log/slog"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Outcome is the result of a challenge check on a loaded page.
type Outcome int

const (
	// Clear means no CAPTCHA or interstitial was found.
	Clear Outcome = iota

	// CaptchaDetected means a known CAPTCHA container or iframe is present.
	CaptchaDetected

	// ChallengeDetected means a bot-mitigation interstitial wrapper is
	// present (e.g. a Cloudflare challenge page).
	ChallengeDetected
)

// captchaSelectors are structural probes for common CAPTCHA services.
var captchaSelectors = []string{
	".g-recaptcha",
	"#captcha",
	`[class*="captcha"]`,
	`iframe[src*="captcha"]`,
}

// challengeSelectors mark bot-mitigation interstitial pages.
var challengeSelectors = []string{
	"#cf-wrapper",
}

// consentSelectors are clickable accept buttons of common cookie-consent
// dialogs, tried in order for a single best-effort dismissal.
var consentSelectors = []string{
	"#onetrust-accept-btn-handler",
	`button[id*="cookie-accept"]`,
	`button[id*="accept-cookie"]`,
	`[class*="cookie"] button[class*="accept"]`,
	`[aria-label="Accept cookies"]`,
}

// detectChallenge runs the structural DOM probes. Detection only; no
// bypass is ever attempted. A probe that cannot be evaluated is an error,
// never a clear verdict.
func detectChallenge(p *rod.Page) (Outcome, error) {
	captcha, err := probeSelectors(p, captchaSelectors)
	if err != nil {
		return Clear, err
	}
	challenge, err := probeSelectors(p, challengeSelectors)
	if err != nil {
		return Clear, err
	}
	return outcomeFromProbes(captcha, challenge), nil
}

// outcomeFromProbes maps the two probe results to an Outcome. CAPTCHA
// presence wins over a plain interstitial.
func outcomeFromProbes(captcha, challenge bool) Outcome {
	switch {
	case captcha:
		return CaptchaDetected
	case challenge:
		return ChallengeDetected
	default:
		return Clear
	}
}

// probeSelectors evaluates the presence of any of the selectors in a
// single page round-trip.
func probeSelectors(p *rod.Page, selectors []string) (bool, error) {
	res, err := p.Eval(buildProbeJS(selectors))
	if err != nil {
		return false, err
	}
	return res.Value.Bool(), nil
}

// buildProbeJS produces a () => !!(querySelector || ...) expression from
// the selector list.
func buildProbeJS(selectors []string) string {
	var b strings.Builder
	b.WriteString("() => !!(")
	for i, sel := range selectors {
		if i > 0 {
			b.WriteString(" || ")
		}
		b.WriteString("document.querySelector('")
		b.WriteString(sel)
		b.WriteString("')")
	}
	b.WriteString(")")
	return b.String()
}

// dismissCookiePopups attempts one dismissal interaction on the first
// matching consent dialog and continues regardless of outcome. Consent
// popups are a nuisance, never a failure condition.
func dismissCookiePopups(p *rod.Page) {
	for _, sel := range consentSelectors {
		has, el, err := p.Has(sel)
		if err != nil || !has {
			continue
		}
		if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
			slog.Debug("cookie dismissal click failed", "selector", sel, "error", err)
		}
		return
	}
}

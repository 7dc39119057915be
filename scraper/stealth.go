package scraper

import (
	"log/slog"
	"math/rand/v2"

	"github.com/clipvault/webclip/models"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"
)

// OverrideScript is one named page-load script that masks an
// automation-detectable property. The set is data, not inline literals, so
// it can be tested and extended independently of the orchestrator.
type OverrideScript struct {
	Name string
	JS   string
}

// overrideScripts are installed via EvalOnNewDocument on every page, on top
// of the stealth.JS baseline, before any site script executes.
var overrideScripts = []OverrideScript{
	{
		Name: "webdriver-flag",
		JS: `Object.defineProperty(navigator, 'webdriver', {
			get: () => false,
		});`,
	},
	{
		Name: "chrome-runtime",
		JS: `window.chrome = window.chrome || {
			runtime: {},
		};`,
	},
	{
		Name: "permissions-query",
		JS: `const originalQuery = window.navigator.permissions.query;
		window.navigator.permissions.query = (parameters) => (
			parameters.name === 'notifications' ?
			Promise.resolve({ state: Notification.permission }) :
			originalQuery(parameters)
		);`,
	},
	{
		Name: "plugin-list",
		JS: `Object.defineProperty(navigator, 'plugins', {
			get: () => [
				{
					0: {type: "application/x-google-chrome-pdf"},
					description: "Portable Document Format",
					filename: "internal-pdf-viewer",
					length: 1,
					name: "Chrome PDF Plugin"
				}
			],
		});`,
	},
	{
		Name: "language-list",
		JS: `Object.defineProperty(navigator, 'languages', {
			get: () => ['en-US', 'en'],
		});`,
	},
}

// sessionHeaders are sent with every request from a configured page.
var sessionHeaders = map[string]string{
	"Accept-Language":           "en-US,en;q=0.9",
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"DNT":                       "1",
	"Upgrade-Insecure-Requests": "1",
}

// setupSession configures a fresh page before any navigation: user agent,
// viewport, fixed headers and the stealth overrides. Script injection
// failures are logged and skipped; identity setup failures are fatal since
// the session would be trivially fingerprintable without them.
func (s *Scraper) setupSession(page *rod.Page) error {
	ua := s.cfg.UserAgents[rand.IntN(len(s.cfg.UserAgents))]
	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: ua}); err != nil {
		return models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to set user agent", "", err)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             s.cfg.Viewport.Width,
		Height:            s.cfg.Viewport.Height,
		DeviceScaleFactor: 1,
		Mobile:            false,
	}); err != nil {
		return models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to set viewport", "", err)
	}

	if err := (proto.NetworkSetExtraHTTPHeaders{Headers: toHeadersMap(sessionHeaders)}).Call(page); err != nil {
		return models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to set headers", "", err)
	}

	if !s.cfg.JSEnabled {
		if err := (proto.EmulationSetScriptExecutionDisabled{Value: true}).Call(page); err != nil {
			return models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to disable JS", "", err)
		}
		// Without JS there is nothing for the override scripts to mask.
		return nil
	}

	if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
		slog.Warn("stealth baseline injection failed, proceeding without it", "error", err)
	}
	for _, script := range overrideScripts {
		if _, err := page.EvalOnNewDocument(script.JS); err != nil {
			slog.Warn("override script injection failed", "script", script.Name, "error", err)
		}
	}
	return nil
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}

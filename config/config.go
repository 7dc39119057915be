package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ImageHandling controls what happens to page images during extraction.
type ImageHandling string

const (
	// ImageIgnore skips image extraction entirely.
	ImageIgnore ImageHandling = "ignore"

	// ImageDownload fetches each image to local disk and records its path.
	ImageDownload ImageHandling = "download"

	// ImageLinkOnly records absolute image URLs without downloading.
	ImageLinkOnly ImageHandling = "link_only"
)

// ContentPriority orders the body selector groups: when several groups
// match, the first selector of the chosen ordering wins.
type ContentPriority string

const (
	// PriorityArticle prefers semantic article containers ("article" first).
	PriorityArticle ContentPriority = "article"

	// PriorityMain prefers the page's main landmark ("main" first).
	PriorityMain ContentPriority = "main"
)

// Viewport is the emulated browser window size.
type Viewport struct {
	Width  int
	Height int
}

// ScrapingConfig controls a Scraper instance. It is copied at construction
// and never mutated once a page has been opened.
type ScrapingConfig struct {
	// MaxWaitTime caps the post-navigation readiness/challenge wait.
	MaxWaitTime time.Duration // default: 30s

	// ScreenshotEnabled toggles screenshot capture during extraction.
	ScreenshotEnabled bool // default: true

	// JSEnabled toggles JavaScript execution on pages.
	JSEnabled bool // default: true

	// Timeout is the navigation deadline.
	Timeout time.Duration // default: 60s

	// MaxRedirects bounds redirect following during URL probing.
	MaxRedirects int // default: 5

	// Viewport is the emulated window size.
	Viewport Viewport // default: 1920x1080

	// UserAgents is a non-empty ordered list; one is drawn uniformly at
	// random per page session.
	UserAgents []string

	// ImageHandling selects the image extraction policy.
	ImageHandling ImageHandling // default: link_only

	// ContentPriority orders the body selector groups.
	ContentPriority ContentPriority // default: article

	// ImageDir is where downloaded images are written (ImageDownload mode).
	ImageDir string // default: "images"

	// ProbeTimeout is the per-candidate deadline for URL existence checks.
	ProbeTimeout time.Duration // default: 5s

	// ProbeRate is the sustained per-host probe/download rate.
	ProbeRate float64 // default: 4

	// ProbeBurst is the per-host burst size.
	ProbeBurst int // default: 4

	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Default returns the documented default configuration.
func Default() ScrapingConfig {
	return ScrapingConfig{
		MaxWaitTime:       30 * time.Second,
		ScreenshotEnabled: true,
		JSEnabled:         true,
		Timeout:           60 * time.Second,
		MaxRedirects:      5,
		Viewport:          Viewport{Width: 1920, Height: 1080},
		UserAgents: []string{
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0",
		},
		ImageHandling:   ImageLinkOnly,
		ContentPriority: PriorityArticle,
		ImageDir:        "images",
		ProbeTimeout:    5 * time.Second,
		ProbeRate:       4,
		ProbeBurst:      4,
		Headless:        true,
	}
}

// Merge overlays the set fields of override onto base and returns the
// result. Zero-valued fields of override never drop the base value, so an
// unspecified key always retains its default. Boolean switches
// (ScreenshotEnabled, JSEnabled, Headless, NoSandbox) cannot distinguish
// "unset" from false, so they are flipped directly on the merged value
// instead of being merged here.
func Merge(base, override ScrapingConfig) ScrapingConfig {
	out := base
	if override.MaxWaitTime > 0 {
		out.MaxWaitTime = override.MaxWaitTime
	}
	if override.Timeout > 0 {
		out.Timeout = override.Timeout
	}
	if override.MaxRedirects > 0 {
		out.MaxRedirects = override.MaxRedirects
	}
	if override.Viewport.Width > 0 && override.Viewport.Height > 0 {
		out.Viewport = override.Viewport
	}
	if len(override.UserAgents) > 0 {
		out.UserAgents = override.UserAgents
	}
	if override.ImageHandling != "" {
		out.ImageHandling = override.ImageHandling
	}
	if override.ContentPriority != "" {
		out.ContentPriority = override.ContentPriority
	}
	if override.ImageDir != "" {
		out.ImageDir = override.ImageDir
	}
	if override.ProbeTimeout > 0 {
		out.ProbeTimeout = override.ProbeTimeout
	}
	if override.ProbeRate > 0 {
		out.ProbeRate = override.ProbeRate
	}
	if override.ProbeBurst > 0 {
		out.ProbeBurst = override.ProbeBurst
	}
	if override.BrowserBin != "" {
		out.BrowserBin = override.BrowserBin
	}
	return out
}

// Load reads configuration from environment variables over the defaults.
func Load() ScrapingConfig {
	cfg := Default()
	cfg.MaxWaitTime = envDurationOr("WEBCLIP_MAX_WAIT", cfg.MaxWaitTime)
	cfg.ScreenshotEnabled = envBoolOr("WEBCLIP_SCREENSHOTS", cfg.ScreenshotEnabled)
	cfg.JSEnabled = envBoolOr("WEBCLIP_JS", cfg.JSEnabled)
	cfg.Timeout = envDurationOr("WEBCLIP_TIMEOUT", cfg.Timeout)
	cfg.MaxRedirects = envIntOr("WEBCLIP_MAX_REDIRECTS", cfg.MaxRedirects)
	cfg.Viewport.Width = envIntOr("WEBCLIP_VIEWPORT_WIDTH", cfg.Viewport.Width)
	cfg.Viewport.Height = envIntOr("WEBCLIP_VIEWPORT_HEIGHT", cfg.Viewport.Height)
	cfg.UserAgents = envSliceOr("WEBCLIP_USER_AGENTS", cfg.UserAgents)
	cfg.ImageHandling = ImageHandling(envOr("WEBCLIP_IMAGE_HANDLING", string(cfg.ImageHandling)))
	cfg.ContentPriority = ContentPriority(envOr("WEBCLIP_CONTENT_PRIORITY", string(cfg.ContentPriority)))
	cfg.ImageDir = envOr("WEBCLIP_IMAGE_DIR", cfg.ImageDir)
	cfg.ProbeTimeout = envDurationOr("WEBCLIP_PROBE_TIMEOUT", cfg.ProbeTimeout)
	cfg.ProbeRate = envFloatOr("WEBCLIP_PROBE_RATE", cfg.ProbeRate)
	cfg.ProbeBurst = envIntOr("WEBCLIP_PROBE_BURST", cfg.ProbeBurst)
	cfg.Headless = envBoolOr("WEBCLIP_HEADLESS", cfg.Headless)
	cfg.NoSandbox = envBoolOr("WEBCLIP_NO_SANDBOX", cfg.NoSandbox)
	cfg.BrowserBin = os.Getenv("WEBCLIP_BROWSER_BIN")
	return cfg
}

// LoadLog reads logging configuration from environment variables.
func LoadLog() LogConfig {
	return LogConfig{
		Level:  envOr("WEBCLIP_LOG_LEVEL", "info"),
		Format: envOr("WEBCLIP_LOG_FORMAT", "json"),
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/clipvault/webclip/cache"
	"github.com/clipvault/webclip/config"
	"github.com/clipvault/webclip/scraper"
)

func main() {
	urlFlag := flag.String("url", "", "URL or partial host name to scrape (required)")
	timeoutFlag := flag.Duration("timeout", 0, "navigation timeout override")
	screenshotsFlag := flag.Bool("screenshots", true, "capture screenshots")
	imagesFlag := flag.String("images", "", "image handling: ignore, download or link_only")
	outFlag := flag.String("out", "", "write the JSON record to this file instead of stdout")
	cacheTTLFlag := flag.Duration("cache-ttl", 0, "serve a cached record if younger than this")
	flag.Parse()

	if *urlFlag == "" {
		fmt.Fprintln(os.Stderr, "usage: webclip -url <url>")
		os.Exit(2)
	}

	initLogger(config.LoadLog())

	// ── Configuration: env over defaults, flags over env ────────────
	cfg := config.Load()
	cfg = config.Merge(cfg, config.ScrapingConfig{
		Timeout:       *timeoutFlag,
		ImageHandling: config.ImageHandling(*imagesFlag),
	})
	applyScreenshotFlag(&cfg, passedFlags(), *screenshotsFlag)

	sc, err := scraper.NewScraper(cfg)
	if err != nil {
		slog.Error("failed to initialise scraper", "error", err)
		os.Exit(1)
	}
	defer sc.Close()

	// A signal cancels the in-flight scrape; the deferred Close still
	// tears the browser down.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cc := cache.New(256)
	defer cc.Close()

	content, hit := cc.Get(cache.Key(*urlFlag), *cacheTTLFlag)
	if !hit {
		var scrapeErr error
		content, scrapeErr = sc.Scrape(ctx, *urlFlag)
		if scrapeErr != nil {
			slog.Error("scrape failed", "url", *urlFlag, "error", scrapeErr)
			os.Exit(1)
		}
		cc.Set(cache.Key(*urlFlag), content)
	}

	out, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		slog.Error("failed to encode record", "error", err)
		os.Exit(1)
	}

	if *outFlag != "" {
		if err := os.WriteFile(*outFlag, out, 0o644); err != nil {
			slog.Error("failed to write record", "path", *outFlag, "error", err)
			os.Exit(1)
		}
		slog.Info("record written", "path", *outFlag)
		return
	}
	fmt.Println(string(out))
}

// passedFlags returns the names of flags explicitly given on the command
// line, so a flag default never shadows an env-configured value.
func passedFlags() map[string]bool {
	seen := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { seen[f.Name] = true })
	return seen
}

// applyScreenshotFlag overrides the screenshot toggle only when the flag
// was actually passed. Booleans cannot go through Merge: an unset flag is
// indistinguishable from an explicit false.
func applyScreenshotFlag(cfg *config.ScrapingConfig, passed map[string]bool, value bool) {
	if passed["screenshots"] {
		cfg.ScreenshotEnabled = value
	}
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// Package resolver turns partial or ambiguous user input into a verified,
// live, fully-qualified URL by generating and probing candidate forms.
package resolver

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/clipvault/webclip/config"
	"github.com/clipvault/webclip/fetch"
)

// Candidate ordering building blocks. Earlier entries are preferred:
// the probe loop is a greedy, first-success, ordered search.
var (
	protocols = []string{"https://", "http://"}
	prefixes  = []string{"www.", ""}
	suffixes  = []string{
		".com", ".ai", ".org", ".net", ".io", ".co",
		".edu", ".gov", ".uk", ".de", ".cn", ".jp",
	}
)

var (
	reScheme = regexp.MustCompile(`^.*://`)
	reIPv4   = regexp.MustCompile(`^\d{1,3}(\.\d{1,3}){3}$`)
)

// Resolver probes candidate URLs with lightweight HEAD requests.
type Resolver struct {
	client *fetch.Client
	cfg    config.ScrapingConfig
}

// New creates a Resolver using the given config's probe settings.
func New(cfg config.ScrapingConfig, client *fetch.Client) *Resolver {
	return &Resolver{client: client, cfg: cfg}
}

// Normalize infers a complete, live URL from partial input.
//
// Input that already carries an http(s) scheme is returned unchanged with no
// probing. Otherwise candidates are generated (see Candidates) and probed
// strictly in order; the first one answering with status < 400 wins and its
// final post-redirect URL is returned. Per-candidate failures are swallowed,
// so resolution always terminates: if every probe fails, the deterministic
// fallback form is returned unverified.
func (r *Resolver) Normalize(ctx context.Context, input string) string {
	url := strings.ToLower(strings.TrimSpace(input))

	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return url
	}

	url = reScheme.ReplaceAllString(url, "")

	for _, candidate := range Candidates(url) {
		probeCtx, cancel := context.WithTimeout(ctx, r.cfg.ProbeTimeout)
		finalURL, status, err := r.client.Head(probeCtx, candidate)
		cancel()
		if err != nil {
			slog.Debug("candidate probe failed", "candidate", candidate, "error", err)
			continue
		}
		if status < 400 {
			slog.Debug("candidate resolved", "candidate", candidate, "finalURL", finalURL, "status", status)
			return finalURL
		}
	}

	return Fallback(url)
}

// Candidates generates the ordered candidate list for a schemeless input.
//
// A dotted-quad IPv4 input gets only protocol variants. Otherwise the input
// is expanded per suffix (when it lacks a known one), and within each suffix
// group per protocol then per prefix, so every form of an earlier suffix is
// tried before any form of a later one.
func Candidates(input string) []string {
	if reIPv4.MatchString(input) {
		candidates := make([]string, 0, len(protocols))
		for _, protocol := range protocols {
			candidates = append(candidates, protocol+input)
		}
		return candidates
	}

	var bases []string
	if hasKnownSuffix(input) {
		bases = []string{input}
	} else {
		bases = make([]string, 0, len(suffixes))
		for _, suffix := range suffixes {
			bases = append(bases, input+suffix)
		}
	}

	var candidates []string
	for _, base := range bases {
		if hasKnownPrefix(base) {
			for _, protocol := range protocols {
				candidates = append(candidates, protocol+base)
			}
			continue
		}
		for _, protocol := range protocols {
			for _, prefix := range prefixes {
				candidates = append(candidates, protocol+prefix+base)
			}
		}
	}
	return candidates
}

// Fallback is the deterministic unverified form used when every probe fails.
func Fallback(input string) string {
	if reIPv4.MatchString(input) {
		return "https://" + input
	}
	return "https://www." + input
}

func hasKnownSuffix(s string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}

func hasKnownPrefix(s string) bool {
	return strings.HasPrefix(s, "www.")
}

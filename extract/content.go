package extract

import (
	"bytes"
	"log/slog"
	nurl "net/url"
	"strings"

	"github.com/andybalholm/cascadia"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// minContentLength is the minimum plain-text length (in characters) for
// readability output to be considered valid. Below this we assume the
// algorithm failed to locate the main content.
const minContentLength = 50

// extractBody returns the page's main content HTML. The configured
// content-priority selector group is tried first (first matching selector
// wins); when nothing matches, the Mozilla Readability algorithm runs as a
// fallback, and as a last resort the <body> HTML is returned whole.
func (e *Extractor) extractBody(rawHTML, finalURL string) string {
	root, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}

	for _, selector := range contentSelectorsFor(e.cfg.ContentPriority) {
		sel, err := cascadia.Parse(selector)
		if err != nil {
			slog.Warn("extract: bad content selector", "selector", selector, "error", err)
			continue
		}
		matches := cascadia.QueryAll(root, sel)
		if len(matches) == 0 {
			continue
		}
		var buf bytes.Buffer
		for _, node := range matches {
			if err := html.Render(&buf, node); err != nil {
				return ""
			}
		}
		return buf.String()
	}

	if body := readabilityContent(rawHTML, finalURL); body != "" {
		return body
	}

	return renderBody(root)
}

// readabilityContent runs go-readability and returns its clean HTML, or ""
// when extraction fails or yields too little text to be real content.
func readabilityContent(rawHTML, finalURL string) string {
	parsedURL, err := nurl.Parse(finalURL)
	if err != nil {
		return ""
	}
	article, err := readability.FromReader(strings.NewReader(rawHTML), parsedURL)
	if err != nil {
		slog.Warn("extract: readability failed", "url", finalURL, "error", err)
		return ""
	}
	if len(strings.TrimSpace(article.TextContent)) < minContentLength {
		return ""
	}
	return article.Content
}

// renderBody renders the document's <body> element, or the whole document
// if no body node is present.
func renderBody(root *html.Node) string {
	sel, err := cascadia.Parse("body")
	if err != nil {
		return ""
	}
	node := cascadia.Query(root, sel)
	if node == nil {
		node = root
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, node); err != nil {
		return ""
	}
	return buf.String()
}

// Package extract reads metadata, body content, images and links out of
// rendered page HTML into a normalized record.
package extract

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
	"github.com/clipvault/webclip/config"
	"github.com/clipvault/webclip/fetch"
	"github.com/clipvault/webclip/models"
)

// Extractor turns rendered HTML into a WebContent record. It is safe for
// concurrent use; the markdown converter it holds is goroutine-safe.
type Extractor struct {
	cfg    config.ScrapingConfig
	conv   *converter.Converter
	client *fetch.Client
}

// New creates an Extractor. client is used only for image downloads and may
// be nil when ImageHandling is not download.
func New(cfg config.ScrapingConfig, client *fetch.Client) *Extractor {
	return &Extractor{
		cfg:    cfg,
		conv:   newMarkdownConverter(),
		client: client,
	}
}

// Extract populates a WebContent record from the rendered HTML of finalURL.
// Screenshots and the fetch timestamp are the orchestrator's concern; every
// other field is filled here. Individual field failures degrade to empty
// values rather than failing the whole extraction.
func (e *Extractor) Extract(ctx context.Context, rawHTML, finalURL string) *models.WebContent {
	content := &models.WebContent{URL: finalURL}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		slog.Warn("extract: HTML parse failed", "url", finalURL, "error", err)
		return content
	}

	content.Metadata = extractMetadata(doc)
	content.Content = e.extractBody(rawHTML, finalURL)
	content.Markdown = e.toMarkdown(content.Content, finalURL)
	content.Links = ExtractLinks(doc, finalURL)

	if e.cfg.ImageHandling != config.ImageIgnore {
		content.Images = e.extractImages(ctx, doc, finalURL)
	}

	return content
}

// extractMetadata runs the title/date/author selector groups; within each
// group, the first matching selector wins.
func extractMetadata(doc *goquery.Document) models.Metadata {
	md := models.Metadata{
		Title:     firstMatch(doc, titleSelectors),
		Published: firstMatch(doc, dateSelectors),
		Author:    firstMatch(doc, authorSelectors),
	}
	if md.Title == "" {
		md.Title = strings.TrimSpace(doc.Find("head title").First().Text())
	}
	return md
}

// firstMatch tries the selectors in order and returns the value of the
// first element found. Meta tags yield their content attribute, elements
// with a datetime attribute yield that, everything else yields its text.
func firstMatch(doc *goquery.Document, selectors []string) string {
	for _, selector := range selectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		if v := elementValue(sel); v != "" {
			return v
		}
	}
	return ""
}

func elementValue(sel *goquery.Selection) string {
	if goquery.NodeName(sel) == "meta" {
		content, _ := sel.Attr("content")
		return strings.TrimSpace(content)
	}
	if dt, ok := sel.Attr("datetime"); ok && strings.TrimSpace(dt) != "" {
		return strings.TrimSpace(dt)
	}
	return strings.TrimSpace(sel.Text())
}

// toMarkdown renders the extracted body as Markdown, resolving relative
// links against the page's host.
func (e *Extractor) toMarkdown(bodyHTML, finalURL string) string {
	if bodyHTML == "" {
		return ""
	}
	domain := ""
	if u, err := url.Parse(finalURL); err == nil {
		domain = u.Host
	}
	md, err := e.conv.ConvertString(bodyHTML, converter.WithDomain(domain))
	if err != nil {
		slog.Warn("extract: markdown conversion failed", "url", finalURL, "error", err)
		return ""
	}
	return strings.TrimSpace(md)
}

// newMarkdownConverter builds the reusable converter: the base plugin strips
// script/style/head noise, commonmark renders standard Markdown, and the
// table plugin keeps tabular structure with minimal cell padding.
func newMarkdownConverter() *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(
				table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
			),
		),
	)
}

package extract

import (
	"net/url"

	"github.com/PuerkitoBio/goquery"
)

// ExtractLinks returns the page's hyperlinks resolved to absolute form
// against the source URL, deduplicated, in document order. Only http(s)
// links are kept (fragments, javascript:, mailto: etc. are dropped).
func ExtractLinks(doc *goquery.Document, sourceURL string) []string {
	base, err := url.Parse(sourceURL)
	if err != nil {
		return nil
	}

	var links []string
	seen := make(map[string]struct{})
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists || href == "" {
			return
		}

		resolved, err := base.Parse(href)
		if err != nil {
			return
		}
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}

		absURL := resolved.String()
		if _, ok := seen[absURL]; ok {
			return
		}
		seen[absURL] = struct{}{}
		links = append(links, absURL)
	})

	return links
}

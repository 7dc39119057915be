package models

import "time"

// WebContent is the normalized record produced by a single scrape.
// It is created once per successful scrape and never mutated afterwards;
// ownership passes entirely to the caller.
type WebContent struct {
	// URL is the final URL after resolution and all redirects.
	URL string `json:"url"`

	// Metadata holds page-level fields; each is optional and empty when
	// no selector in its group matched.
	Metadata Metadata `json:"metadata"`

	// Content is the extracted main body HTML.
	Content string `json:"content"`

	// Markdown is the Markdown rendition of Content.
	Markdown string `json:"markdown,omitempty"`

	// Images are the page images, in document order.
	Images []Image `json:"images,omitempty"`

	// Links are the page's hyperlinks resolved to absolute form,
	// deduplicated, in document order.
	Links []string `json:"links,omitempty"`

	// Screenshots are captured only when screenshots are enabled.
	Screenshots []Screenshot `json:"screenshots,omitempty"`

	// FetchedAt records when the scrape completed.
	FetchedAt time.Time `json:"fetched_at"`
}

// Metadata holds the optional page metadata extracted via selector groups.
type Metadata struct {
	Title     string `json:"title,omitempty"`
	Author    string `json:"author,omitempty"`
	Published string `json:"published,omitempty"`
}

// Image describes one page image.
type Image struct {
	// Src is the absolute source URL.
	Src string `json:"src"`

	// LocalPath is set only when the image was downloaded to disk.
	LocalPath string `json:"local_path,omitempty"`

	// Alt is the image's alt text, trimmed.
	Alt string `json:"alt,omitempty"`
}

// Screenshot is a captured page image plus the viewport it was taken at.
type Screenshot struct {
	// Data is the PNG bytes.
	Data []byte `json:"data"`

	// Viewport tags the capture, e.g. "1920x1080" or "full".
	Viewport string `json:"viewport"`
}

package extract

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/clipvault/webclip/config"
	"github.com/clipvault/webclip/models"
)

// extractImages collects the page's images with absolute URLs, in document
// order, deduplicated. In download mode each image is additionally fetched
// to disk; a failed download degrades that image to link-only rather than
// failing the extraction.
func (e *Extractor) extractImages(ctx context.Context, doc *goquery.Document, sourceURL string) []models.Image {
	base, err := url.Parse(sourceURL)
	if err != nil {
		return nil
	}

	var images []models.Image
	seen := make(map[string]struct{})
	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		src, exists := s.Attr("src")
		if !exists || src == "" {
			return
		}

		resolved, err := base.Parse(src)
		if err != nil {
			return
		}
		if resolved.Scheme == "data" {
			return
		}

		absURL := resolved.String()
		if _, ok := seen[absURL]; ok {
			return
		}
		seen[absURL] = struct{}{}

		alt, _ := s.Attr("alt")
		images = append(images, models.Image{
			Src: absURL,
			Alt: strings.TrimSpace(alt),
		})
	})

	if e.cfg.ImageHandling == config.ImageDownload && e.client != nil {
		e.downloadImages(ctx, images)
	}

	return images
}

// downloadImages fetches each image into ImageDir, naming files by a hash
// of the source URL to avoid collisions.
func (e *Extractor) downloadImages(ctx context.Context, images []models.Image) {
	if err := os.MkdirAll(e.cfg.ImageDir, 0o755); err != nil {
		slog.Warn("extract: cannot create image dir", "dir", e.cfg.ImageDir, "error", err)
		return
	}

	for i := range images {
		data, err := e.client.Get(ctx, images[i].Src)
		if err != nil {
			slog.Debug("extract: image download failed", "src", images[i].Src, "error", err)
			continue
		}
		dest := filepath.Join(e.cfg.ImageDir, imageFilename(images[i].Src))
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			slog.Warn("extract: image write failed", "dest", dest, "error", err)
			continue
		}
		images[i].LocalPath = dest
	}
}

// imageFilename derives a stable local filename from the image source URL,
// keeping the original extension when there is one.
func imageFilename(src string) string {
	sum := sha256.Sum256([]byte(src))
	name := hex.EncodeToString(sum[:8])

	ext := ""
	if u, err := url.Parse(src); err == nil {
		ext = path.Ext(u.Path)
	}
	if len(ext) > 5 {
		ext = ""
	}
	return name + ext
}

package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/clipvault/webclip/config"
	"github.com/clipvault/webclip/fetch"
)

const articleHTML = `<html>
<head><title>Head Title</title><meta name="author" content="Meta Person"></head>
<body>
<article>
<h1>Article Heading</h1>
<time datetime="2024-01-02T10:00:00Z">Jan 2, 2024</time>
<p>Body paragraph with the actual article text.</p>
<a href="/rel">relative</a>
<a href="/rel">duplicate</a>
<a href="mailto:someone@example.com">mail</a>
<a href="https://other.net/p">external</a>
<img src="/img/pic.png" alt="A picture">
</article>
<footer>footer chrome</footer>
</body></html>`

func newTestExtractor(cfg config.ScrapingConfig) *Extractor {
	return New(cfg, nil)
}

func TestExtract_Metadata(t *testing.T) {
	e := newTestExtractor(config.Default())
	content := e.Extract(context.Background(), articleHTML, "https://site.com/post")

	if content.Metadata.Title != "Article Heading" {
		t.Errorf("Title = %q, want the h1 match", content.Metadata.Title)
	}
	if content.Metadata.Published != "2024-01-02T10:00:00Z" {
		t.Errorf("Published = %q, want the datetime attribute", content.Metadata.Published)
	}
	if content.Metadata.Author != "Meta Person" {
		t.Errorf("Author = %q, want the meta tag content", content.Metadata.Author)
	}
}

func TestExtract_TitleFallsBackToHeadTitle(t *testing.T) {
	e := newTestExtractor(config.Default())
	html := `<html><head><title>Only Head</title></head><body><p>text</p></body></html>`
	content := e.Extract(context.Background(), html, "https://site.com")

	if content.Metadata.Title != "Only Head" {
		t.Errorf("Title = %q, want head title fallback", content.Metadata.Title)
	}
}

func TestExtract_ContentFirstSelectorWins(t *testing.T) {
	e := newTestExtractor(config.Default())
	content := e.Extract(context.Background(), articleHTML, "https://site.com/post")

	if !strings.Contains(content.Content, "Body paragraph with the actual article text.") {
		t.Errorf("Content missing article body: %q", content.Content)
	}
	if strings.Contains(content.Content, "footer chrome") {
		t.Errorf("Content leaked page chrome: %q", content.Content)
	}
}

func TestExtract_ContentPriorityOrdersGroups(t *testing.T) {
	html := `<html><body>
<main><p>main landmark text</p></main>
<article><p>article container text</p></article>
</body></html>`

	cfgArticle := config.Default()
	gotArticle := newTestExtractor(cfgArticle).Extract(context.Background(), html, "https://site.com")
	if !strings.Contains(gotArticle.Content, "article container text") {
		t.Errorf("article priority picked %q", gotArticle.Content)
	}

	cfgMain := config.Default()
	cfgMain.ContentPriority = config.PriorityMain
	gotMain := newTestExtractor(cfgMain).Extract(context.Background(), html, "https://site.com")
	if !strings.Contains(gotMain.Content, "main landmark text") {
		t.Errorf("main priority picked %q", gotMain.Content)
	}
}

func TestExtract_BodyFallbackWhenNothingMatches(t *testing.T) {
	e := newTestExtractor(config.Default())
	html := `<html><body><div class="misc">tiny</div></body></html>`
	content := e.Extract(context.Background(), html, "https://site.com")

	if !strings.Contains(content.Content, "tiny") {
		t.Errorf("Content = %q, want the body fallback", content.Content)
	}
}

func TestExtract_Links(t *testing.T) {
	e := newTestExtractor(config.Default())
	content := e.Extract(context.Background(), articleHTML, "https://site.com/post")

	want := []string{"https://site.com/rel", "https://other.net/p"}
	if len(content.Links) != len(want) {
		t.Fatalf("Links = %v, want %v", content.Links, want)
	}
	for i := range want {
		if content.Links[i] != want[i] {
			t.Errorf("Links[%d] = %q, want %q", i, content.Links[i], want[i])
		}
	}
}

func TestExtract_ImagesLinkOnly(t *testing.T) {
	e := newTestExtractor(config.Default())
	content := e.Extract(context.Background(), articleHTML, "https://site.com/post")

	if len(content.Images) != 1 {
		t.Fatalf("Images = %v, want 1 entry", content.Images)
	}
	img := content.Images[0]
	if img.Src != "https://site.com/img/pic.png" {
		t.Errorf("Src = %q, want absolute form", img.Src)
	}
	if img.Alt != "A picture" {
		t.Errorf("Alt = %q", img.Alt)
	}
	if img.LocalPath != "" {
		t.Errorf("LocalPath = %q, want empty in link-only mode", img.LocalPath)
	}
}

func TestExtract_ImagesIgnored(t *testing.T) {
	cfg := config.Default()
	cfg.ImageHandling = config.ImageIgnore
	content := newTestExtractor(cfg).Extract(context.Background(), articleHTML, "https://site.com/post")

	if len(content.Images) != 0 {
		t.Errorf("Images = %v, want none in ignore mode", content.Images)
	}
}

func TestExtract_ImagesDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("png-bytes"))
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.ImageHandling = config.ImageDownload
	cfg.ImageDir = t.TempDir()
	e := New(cfg, fetch.NewClient(5, 1000, 1000))

	html := `<html><body><article><img src="/pic.png" alt="p"></article></body></html>`
	content := e.Extract(context.Background(), html, srv.URL+"/post")

	if len(content.Images) != 1 {
		t.Fatalf("Images = %v, want 1 entry", content.Images)
	}
	if content.Images[0].LocalPath == "" {
		t.Fatal("LocalPath empty, want a downloaded file")
	}
	data, err := os.ReadFile(content.Images[0].LocalPath)
	if err != nil {
		t.Fatalf("reading downloaded image: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Errorf("downloaded bytes = %q", data)
	}
	if filepath.Ext(content.Images[0].LocalPath) != ".png" {
		t.Errorf("LocalPath = %q, want the .png extension kept", content.Images[0].LocalPath)
	}
}

func TestExtract_Markdown(t *testing.T) {
	e := newTestExtractor(config.Default())
	content := e.Extract(context.Background(), articleHTML, "https://site.com/post")

	if !strings.Contains(content.Markdown, "Article Heading") {
		t.Errorf("Markdown missing heading: %q", content.Markdown)
	}
	if !strings.Contains(content.Markdown, "Body paragraph with the actual article text.") {
		t.Errorf("Markdown missing body: %q", content.Markdown)
	}
	if strings.Contains(content.Markdown, "<p>") {
		t.Errorf("Markdown still contains HTML: %q", content.Markdown)
	}
}

func TestImageFilename(t *testing.T) {
	a := imageFilename("https://site.com/a/pic.png")
	b := imageFilename("https://site.com/a/other.png")
	if a == b {
		t.Error("different URLs produced the same filename")
	}
	if filepath.Ext(a) != ".png" {
		t.Errorf("filename = %q, want .png extension", a)
	}
	if got := imageFilename("https://site.com/noext"); filepath.Ext(got) != "" {
		t.Errorf("filename = %q, want no extension", got)
	}
}

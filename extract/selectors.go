package extract

import "github.com/clipvault/webclip/config"

// Selector groups for metadata extraction. Each group is a prioritized
// list: selectors are tried in order and the first match wins. The groups
// are fixed per extractor instance, not per call.
var (
	titleSelectors = []string{
		"h1",
		".title",
		".post-title",
		"article h1",
	}

	dateSelectors = []string{
		"time",
		"[datetime]",
		".date",
		".post-date",
		`meta[property="article:published_time"]`,
	}

	authorSelectors = []string{
		`[rel="author"]`,
		".author",
		".byline",
		`meta[name="author"]`,
	}
)

// contentSelectorsArticle is the default body selector ordering.
var contentSelectorsArticle = []string{
	"article", "main", ".article", ".post", ".content", "#content",
}

// contentSelectorsMain puts the main landmark ahead of article containers.
var contentSelectorsMain = []string{
	"main", "article", ".article", ".post", ".content", "#content",
}

// contentSelectorsFor returns the body selector ordering for the configured
// content priority.
func contentSelectorsFor(p config.ContentPriority) []string {
	if p == config.PriorityMain {
		return contentSelectorsMain
	}
	return contentSelectorsArticle
}

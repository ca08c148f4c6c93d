// Package gate holds the pre-store filters: the two-stage article-likelihood
// classifier and the freshness window.
package gate

import (
	"encoding/json"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// skipHosts are platforms whose links are never articles worth storing.
var skipHosts = []string{
	"facebook.com", "twitter.com", "x.com", "instagram.com",
	"pinterest.com", "vimeo.com", "tiktok.com",
}

// videoHosts are the allow-list exception: recognized video hosts whose
// watch pages carry scoreable metadata.
var videoHosts = []string{"youtube.com", "youtu.be"}

var skipSubstrings = []string{
	"/login", "/signup", "/contact", "/advertise", "/privacy", "/terms",
	"/imprint", "/jobs", "/search", "/tag/", "/category/", "/videos", "/images",
	"/products", "/professionals", "/events", "/competitions", "/publications",
	"/subscribe", "/feed", "utm_", "ad_source=", "ad_name=",
}

var stopTails = map[string]struct{}{
	"about": {}, "about-us": {}, "contact": {}, "privacy-policy": {}, "privacy": {},
	"terms": {}, "imprint": {}, "jobs": {}, "advertise": {}, "subscribe": {},
	"cookies": {}, "cookie-policy": {}, "sitemap": {},
}

var nonHTMLExtensions = []string{".xml", ".rss", ".atom", ".json", ".pdf", ".jpg", ".jpeg", ".png", ".gif", ".zip"}

var articleishTokens = []string{"/news", "/article", "/articles", "/architecture-news", "/stories", "/story/"}

var yearSegment = regexp.MustCompile(`/20\d{2}/`)

var articleOGTypes = map[string]struct{}{
	"article": {}, "news": {}, "news:article": {}, "blog": {},
	"blogposting": {}, "blogpost": {}, "video": {}, "video.other": {},
}

var articleLDTypes = map[string]struct{}{
	"article": {}, "newsarticle": {}, "blogposting": {},
}

// LikelyArticleURL is the Stage A gate: a URL-only check run before any
// fetch. It rejects social platforms, denylisted path shapes, terminal
// boilerplate segments, too-shallow paths, and non-HTML resources.
func LikelyArticleURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())

	for _, h := range skipHosts {
		if strings.Contains(host, h) {
			return false
		}
	}
	if strings.Contains(host, "youtube.com") {
		return strings.Contains(u.Path, "/watch")
	}
	if strings.Contains(host, "youtu.be") {
		return true
	}

	lowerURL := strings.ToLower(raw)
	for _, s := range skipSubstrings {
		if strings.Contains(lowerURL, s) {
			return false
		}
	}

	p := strings.ToLower(u.Path)
	segs := pathSegments(p)
	if len(segs) < 2 {
		return false
	}
	if _, stop := stopTails[segs[len(segs)-1]]; stop {
		return false
	}
	ext := strings.ToLower(path.Ext(p))
	for _, e := range nonHTMLExtensions {
		if ext == e {
			return false
		}
	}
	return true
}

// ArticleByMetadata is the Stage B gate: given the fetched document, accept
// when structured metadata declares an article (OpenGraph type, article:*
// properties, or JSON-LD @type), or when the path shape looks articleish.
// A 200 response with neither is rejected.
func ArticleByMetadata(doc *goquery.Document, rawURL string) bool {
	if doc != nil && metaDeclaresArticle(doc) {
		return true
	}
	return PathArticleish(rawURL)
}

func metaDeclaresArticle(doc *goquery.Document) bool {
	if og, ok := doc.Find(`meta[property="og:type"]`).Attr("content"); ok {
		if _, yes := articleOGTypes[strings.ToLower(strings.TrimSpace(og))]; yes {
			return true
		}
	}
	if doc.Find(`meta[property="article:author"]`).Length() > 0 ||
		doc.Find(`meta[property="article:published_time"]`).Length() > 0 {
		return true
	}

	found := false
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var data any
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			return true
		}
		if ldHasArticleType(data) {
			found = true
			return false
		}
		return true
	})
	return found
}

func ldHasArticleType(node any) bool {
	switch v := node.(type) {
	case map[string]any:
		switch t := v["@type"].(type) {
		case string:
			if _, ok := articleLDTypes[strings.ToLower(t)]; ok {
				return true
			}
		case []any:
			for _, x := range t {
				if s, ok := x.(string); ok {
					if _, yes := articleLDTypes[strings.ToLower(s)]; yes {
						return true
					}
				}
			}
		}
		for _, child := range v {
			if ldHasArticleType(child) {
				return true
			}
		}
	case []any:
		for _, child := range v {
			if ldHasArticleType(child) {
				return true
			}
		}
	}
	return false
}

// PathArticleish reports whether the URL path alone looks like an article:
// a news/article/story token, a year segment, or at least three segments
// ending in a hyphenated slug.
func PathArticleish(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	p := strings.ToLower(u.Path)
	segs := pathSegments(p)
	if len(segs) == 0 {
		return false
	}
	if _, stop := stopTails[segs[len(segs)-1]]; stop {
		return false
	}
	for _, token := range articleishTokens {
		if strings.Contains(p, token) {
			return true
		}
	}
	if yearSegment.MatchString(p) {
		return true
	}
	return len(segs) >= 3 && strings.Contains(segs[len(segs)-1], "-")
}

// MinTitleLength and related minimums are applied after extraction: pages
// that pass both URL gates but yield a trivial title or body are rejected.
const MinTitleLength = 10

// SubstantialExtraction reports whether extracted title and body clear the
// post-extraction minimums.
func SubstantialExtraction(title, body string, minWords int) bool {
	if len(strings.TrimSpace(title)) < MinTitleLength {
		return false
	}
	return len(strings.Fields(body)) >= minWords
}

func pathSegments(p string) []string {
	var segs []string
	for _, s := range strings.Split(strings.Trim(p, "/"), "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

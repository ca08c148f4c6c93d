// Package extract turns a fetched HTML document into title, body text and,
// when the page declares one, a publish timestamp.
package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// Extraction is the main content of one page.
type Extraction struct {
	Title       string
	Body        string
	Summary     string
	SiteName    string
	PublishedAt *time.Time
}

type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

// Extract runs readability over the document and falls back to joining
// paragraph text when readability yields nothing usable. Publish time comes
// from meta tags or JSON-LD, in that order.
func (e *Extractor) Extract(html []byte, pageURL string) (*Extraction, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	out := &Extraction{
		PublishedAt: DetectPublished(doc),
	}
	if v, ok := doc.Find(`meta[property="og:site_name"]`).Attr("content"); ok {
		out.SiteName = strings.TrimSpace(v)
	}
	if v, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		out.Summary = strings.TrimSpace(v)
	}

	parsed, _ := url.Parse(pageURL)
	article, err := readability.FromReader(bytes.NewReader(html), parsed)
	if err == nil {
		out.Title = strings.TrimSpace(article.Title)
		out.Body = strings.TrimSpace(article.TextContent)
	}

	if out.Body == "" {
		if out.Title == "" {
			out.Title = strings.TrimSpace(doc.Find("title").First().Text())
		}
		var paras []string
		doc.Find("p").Each(func(_ int, s *goquery.Selection) {
			if t := strings.TrimSpace(s.Text()); t != "" {
				paras = append(paras, t)
			}
		})
		out.Body = strings.Join(paras, "\n")
	}

	if out.Body == "" {
		return nil, fmt.Errorf("no extractable content at %s", pageURL)
	}
	return out, nil
}

// publishedMetaKeys are checked as both property and name attributes.
var publishedMetaKeys = []string{
	"article:published_time", "og:pubdate", "pubdate", "date", "timestamp",
}

var ldDateKeys = []string{"datePublished", "dateModified", "uploadDate", "dateCreated"}

// DetectPublished finds a publish timestamp in page metadata. Returns nil
// when the page declares none; the freshness gate decides what that means.
func DetectPublished(doc *goquery.Document) *time.Time {
	for _, key := range publishedMetaKeys {
		sel := doc.Find(fmt.Sprintf(`meta[property=%q]`, key))
		if sel.Length() == 0 {
			sel = doc.Find(fmt.Sprintf(`meta[name=%q]`, key))
		}
		if content, ok := sel.Attr("content"); ok {
			if ts := parseTime(content); ts != nil {
				return ts
			}
		}
	}

	var found *time.Time
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var data any
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			return true
		}
		if ts := scanLDDates(data); ts != nil {
			found = ts
			return false
		}
		return true
	})
	return found
}

func scanLDDates(node any) *time.Time {
	switch v := node.(type) {
	case map[string]any:
		for _, key := range ldDateKeys {
			if s, ok := v[key].(string); ok {
				if ts := parseTime(s); ts != nil {
					return ts
				}
			}
		}
		for _, child := range v {
			if ts := scanLDDates(child); ts != nil {
				return ts
			}
		}
	case []any:
		for _, child := range v {
			if ts := scanLDDates(child); ts != nil {
				return ts
			}
		}
	}
	return nil
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

func parseTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

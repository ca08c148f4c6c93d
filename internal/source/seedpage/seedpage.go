// Package seedpage harvests article links from a publisher's landing page.
package seedpage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"curator/internal/domain"
	"curator/internal/fetch"
	"curator/internal/gate"
	"curator/internal/urlnorm"
)

// siteLinkPatterns captures the article-URL shapes of seed sites whose
// landing pages mix article links with navigation. Sites not listed fall
// back to the generic path-shape heuristic.
var siteLinkPatterns = map[string]*regexp.Regexp{
	"archdaily.com":        regexp.MustCompile(`/\d{6,}/`),
	"dezeen.com":           regexp.MustCompile(`/20\d{2}/\d{2}/`),
	"constructiondive.com": regexp.MustCompile(`/news/`),
	"smartcitiesdive.com":  regexp.MustCompile(`/news/`),
	"bdcnetwork.com":       regexp.MustCompile(`/(news|architecture|building|blog)/`),
	"therealdeal.com":      regexp.MustCompile(`/20\d{2}/\d{2}/\d{2}/`),
	"brookings.edu":        regexp.MustCompile(`/\d{4}/\d{2}/\d{2}/`),
	"urban.org":            regexp.MustCompile(`/\d{4}/\d{2}/\d{2}/`),
	"rmi.org":              regexp.MustCompile(`/(insight|blog)/`),
}

// Fetcher is the subset of the HTTP client the source needs.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.Result, error)
}

type Source struct {
	id      string
	pageURL string
	fetcher Fetcher
}

func New(id, pageURL string, fetcher Fetcher) *Source {
	return &Source{id: id, pageURL: pageURL, fetcher: fetcher}
}

func (s *Source) ID() string   { return "seed:" + s.id }
func (s *Source) Name() string { return s.pageURL }

// Candidates fetches the seed page and returns links that stay on the
// seed's registrable domain and look like articles. Link discovery never
// crosses domains; cross-domain stories arrive through feeds or search.
func (s *Source) Candidates(ctx context.Context) ([]domain.Candidate, error) {
	res, err := s.fetcher.Fetch(ctx, s.pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch seed page %s: %w", s.pageURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body))
	if err != nil {
		return nil, fmt.Errorf("parse seed page %s: %w", s.pageURL, err)
	}

	base, err := url.Parse(s.pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse seed url: %w", err)
	}
	baseDomain := urlnorm.RegistrableDomain(base.Hostname())
	pattern := siteLinkPatterns[baseDomain]

	var out []domain.Candidate
	seen := make(map[string]struct{})

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if href == "" {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := urlnorm.Normalize(base.ResolveReference(ref).String())
		if _, dup := seen[abs]; dup {
			return
		}

		parsed, err := url.Parse(abs)
		if err != nil {
			return
		}
		if urlnorm.RegistrableDomain(parsed.Hostname()) != baseDomain {
			return
		}
		if !gate.LikelyArticleURL(abs) {
			return
		}
		if pattern != nil {
			if !pattern.MatchString(parsed.Path) {
				return
			}
		} else if !gate.PathArticleish(abs) {
			return
		}

		seen[abs] = struct{}{}
		out = append(out, domain.Candidate{URL: abs, Title: a.Text()})
	})

	return out, nil
}

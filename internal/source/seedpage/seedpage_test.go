package seedpage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"curator/internal/fetch"
)

type stubFetcher struct {
	body []byte
	err  error
}

func (f *stubFetcher) Fetch(_ context.Context, _ string) (*fetch.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &fetch.Result{StatusCode: 200, Body: f.body}, nil
}

func TestCandidates_HarvestsSameDomainArticleLinks(t *testing.T) {
	page := []byte(`<html><body>
		<a href="/2026/08/25/tower-tops-out">Tower tops out</a>
		<a href="https://www.dezeen.com/2026/08/24/adaptive-reuse-project/">Adaptive reuse</a>
		<a href="https://other-site.com/2026/08/25/cross-domain-story">Elsewhere</a>
		<a href="/about">About</a>
	</body></html>`)

	src := New("dezeen", "https://www.dezeen.com/architecture/", &stubFetcher{body: page})

	cands, err := src.Candidates(context.Background())
	require.NoError(t, err)

	urls := make([]string, 0, len(cands))
	for _, c := range cands {
		urls = append(urls, c.URL)
	}
	assert.Contains(t, urls, "https://www.dezeen.com/2026/08/25/tower-tops-out")
	assert.Contains(t, urls, "https://www.dezeen.com/2026/08/24/adaptive-reuse-project")
	for _, u := range urls {
		assert.NotContains(t, u, "other-site.com")
		assert.NotContains(t, u, "/about")
	}
}

func TestCandidates_SitePatternFilters(t *testing.T) {
	// dezeen's pattern requires /20xx/xx/ paths; a shallow section link on
	// the same domain is navigation, not an article.
	page := []byte(`<html><body>
		<a href="https://www.dezeen.com/2026/07/30/mass-timber-pavilion/">Article</a>
		<a href="https://www.dezeen.com/architecture/interviews-page">Section</a>
	</body></html>`)

	src := New("dezeen", "https://www.dezeen.com/", &stubFetcher{body: page})

	cands, err := src.Candidates(context.Background())
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, "https://www.dezeen.com/2026/07/30/mass-timber-pavilion", cands[0].URL)
}

func TestCandidates_GenericFallbackUsesPathShape(t *testing.T) {
	page := []byte(`<html><body>
		<a href="/2026/08/25/housing-pipeline-grows">Dated article</a>
		<a href="/team">Team</a>
	</body></html>`)

	src := New("local", "https://citybuildreport.example/", &stubFetcher{body: page})

	cands, err := src.Candidates(context.Background())
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, "https://citybuildreport.example/2026/08/25/housing-pipeline-grows", cands[0].URL)
}

func TestCandidates_DeduplicatesLinks(t *testing.T) {
	page := []byte(`<html><body>
		<a href="/2026/08/25/tower-tops-out">Tower</a>
		<a href="/2026/08/25/tower-tops-out?utm_source=home">Tower again</a>
	</body></html>`)

	src := New("dezeen", "https://www.dezeen.com/", &stubFetcher{body: page})

	cands, err := src.Candidates(context.Background())
	require.NoError(t, err)
	assert.Len(t, cands, 1)
}

func TestCandidates_FetchError(t *testing.T) {
	src := New("dezeen", "https://www.dezeen.com/", &stubFetcher{err: errors.New("boom")})

	_, err := src.Candidates(context.Background())
	assert.Error(t, err)
}

func TestID(t *testing.T) {
	src := New("dezeen", "https://www.dezeen.com/", &stubFetcher{})
	assert.Equal(t, "seed:dezeen", src.ID())
}

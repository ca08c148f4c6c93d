package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
	<title>Example Construction News</title>
	<item>
		<title>Mass timber tower tops out</title>
		<link>https://example.com/2026/08/tower</link>
		<pubDate>Mon, 24 Aug 2026 10:00:00 GMT</pubDate>
	</item>
	<item>
		<title>No link entry</title>
	</item>
	<item>
		<title>Zoning reform passes</title>
		<link>https://example.com/2026/08/zoning</link>
	</item>
</channel>
</rss>`

func TestCandidates_ParsesFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(rssFixture))
	}))
	defer srv.Close()

	src := New("example", srv.URL)

	cands, err := src.Candidates(context.Background())
	require.NoError(t, err)
	require.Len(t, cands, 2)

	assert.Equal(t, "https://example.com/2026/08/tower", cands[0].URL)
	assert.Equal(t, "Mass timber tower tops out", cands[0].Title)
	require.NotNil(t, cands[0].PublishedAt)
	assert.Equal(t, 2026, cands[0].PublishedAt.Year())

	// Entries without a feed timestamp still surface; the metadata gate
	// decides their fate later.
	assert.Nil(t, cands[1].PublishedAt)
}

func TestCandidates_BadFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("not a feed"))
	}))
	defer srv.Close()

	src := New("broken", srv.URL)
	_, err := src.Candidates(context.Background())
	assert.Error(t, err)
}

func TestID(t *testing.T) {
	src := New("example", "https://example.com/feed.xml")
	assert.Equal(t, "feed:example", src.ID())
}

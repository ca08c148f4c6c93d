// Package feed turns an RSS/Atom feed into ingestion candidates.
package feed

import (
	"context"
	"fmt"

	"github.com/mmcdole/gofeed"

	"curator/internal/domain"
)

type Source struct {
	id     string
	url    string
	parser *gofeed.Parser
}

func New(id, feedURL string) *Source {
	return &Source{
		id:     id,
		url:    feedURL,
		parser: gofeed.NewParser(),
	}
}

func (s *Source) ID() string   { return "feed:" + s.id }
func (s *Source) Name() string { return s.url }

// Candidates parses the feed and returns entries with their links and any
// publish timestamps the feed supplies. Those timestamps act as the
// freshness-gate fallback when the page itself declares none.
func (s *Source) Candidates(ctx context.Context) ([]domain.Candidate, error) {
	f, err := s.parser.ParseURLWithContext(s.url, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", s.url, err)
	}

	out := make([]domain.Candidate, 0, len(f.Items))
	for _, item := range f.Items {
		if item.Link == "" {
			continue
		}
		c := domain.Candidate{
			URL:   item.Link,
			Title: item.Title,
		}
		if item.PublishedParsed != nil {
			c.PublishedAt = item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			c.PublishedAt = item.UpdatedParsed
		}
		out = append(out, c)
	}
	return out, nil
}

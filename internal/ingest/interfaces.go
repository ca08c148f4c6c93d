package ingest

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"curator/internal/domain"
	"curator/internal/extract"
	"curator/internal/fetch"
)

// Source produces candidate URLs for one run. Feeds, HTML seed pages, and
// search-API results all satisfy this.
type Source interface {
	ID() string
	Name() string
	Candidates(ctx context.Context) ([]domain.Candidate, error)
}

type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.Result, error)
}

type Extractor interface {
	Extract(html []byte, url string) (*extract.Extraction, error)
}

type LanguageDetector interface {
	Detect(text string) string
}

// ContentStore inserts items with at-most-once semantics per canonical
// URL: inserted is false on a canonical_url conflict, which is expected
// and not an error.
type ContentStore interface {
	Insert(ctx context.Context, item *domain.ContentItem) (id int64, inserted bool, err error)
}

// RunLogStore records run history; optional.
type RunLogStore interface {
	Record(ctx context.Context, rec *domain.RunRecord) error
}

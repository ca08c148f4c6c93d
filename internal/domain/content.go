package domain

import "time"

// Status is the lifecycle state of a content item. Statuses only move
// forward; discarded is terminal.
type Status string

const (
	StatusNew       Status = "new"
	StatusFetched   Status = "fetched"
	StatusScored    Status = "scored"
	StatusDiscarded Status = "discarded"
	StatusFeatured  Status = "featured"
)

// CanAdvanceTo reports whether a transition from s to next is allowed.
func (s Status) CanAdvanceTo(next Status) bool {
	if s == StatusDiscarded {
		return false
	}
	if next == StatusDiscarded {
		return true
	}
	order := map[Status]int{
		StatusNew:      0,
		StatusFetched:  1,
		StatusScored:   2,
		StatusFeatured: 3,
	}
	a, ok1 := order[s]
	b, ok2 := order[next]
	return ok1 && ok2 && b > a
}

// ContentItem is one ingested piece of content. CanonicalURL is unique
// across the store and is the sole dedup key.
type ContentItem struct {
	ID           int64      `db:"id"`
	CanonicalURL string     `db:"canonical_url"`
	SourceDomain string     `db:"source_domain"`
	SourceName   string     `db:"source_name"`
	Title        string     `db:"title"`
	RawText      string     `db:"raw_text"`
	Summary      string     `db:"summary"`
	PublishedAt  *time.Time `db:"published_at"`
	FetchedAt    time.Time  `db:"fetched_at"`
	Language     string     `db:"language"`
	Status       Status     `db:"status"`
}

// SourceProfile describes the credibility of a publishing domain. It is a
// weak reference: items carry the domain string, never a foreign key.
type SourceProfile struct {
	Domain     string
	Tier       SourceTier
	Multiplier float64
}

type SourceTier string

const (
	TierOne      SourceTier = "1"
	TierTwo      SourceTier = "2"
	TierThree    SourceTier = "3"
	TierResearch SourceTier = "research"
	TierUnknown  SourceTier = "unknown"
)

// Candidate is a URL discovered by a source, possibly with metadata the
// source already knows (feed entries carry publish times).
type Candidate struct {
	URL         string
	Title       string
	PublishedAt *time.Time
}

package domain

import "time"

// RejectReason says why a candidate never became a stored item. Rejections
// are counted, not retried; transient fetch failures are the exception and
// stay eligible for the next run because nothing was persisted.
type RejectReason string

const (
	RejectNotArticleURL  RejectReason = "not_article_url"
	RejectNotArticleMeta RejectReason = "not_article_meta"
	RejectStale          RejectReason = "stale"
	RejectUndated        RejectReason = "undated"
	RejectTooShort       RejectReason = "too_short"
	RejectShortTitle     RejectReason = "short_title"
	RejectLanguage       RejectReason = "language"
	RejectFetchFailed    RejectReason = "fetch_failed"
	RejectExtractFailed  RejectReason = "extract_failed"
	RejectDuplicate      RejectReason = "duplicate"
	RejectDomainQuota    RejectReason = "domain_quota"
	RejectRunQuota       RejectReason = "run_quota"
)

// IngestStats summarizes one ingestion run.
type IngestStats struct {
	Sources   int
	Attempted int
	Inserted  int
	Errors    int
	Rejected  map[RejectReason]int
	PerDomain map[string]int
	Duration  time.Duration
}

func NewIngestStats() *IngestStats {
	return &IngestStats{
		Rejected:  make(map[RejectReason]int),
		PerDomain: make(map[string]int),
	}
}

// RejectedTotal sums rejections across all reasons.
func (s *IngestStats) RejectedTotal() int {
	total := 0
	for _, n := range s.Rejected {
		total += n
	}
	return total
}

// ScoreStats summarizes one scoring run.
type ScoreStats struct {
	Batch     int
	Scored    int
	Discarded int
	Insights  int
	Errors    int
	Published int
	Duration  time.Duration
}

// RunRecord is one row of run history.
type RunRecord struct {
	ID         int64     `db:"id"`
	Kind       string    `db:"kind"` // "ingest" or "scoring"
	StartedAt  time.Time `db:"started_at"`
	FinishedAt time.Time `db:"finished_at"`
	Attempted  int       `db:"attempted"`
	Succeeded  int       `db:"succeeded"`
	Rejected   int       `db:"rejected"`
	Errors     int       `db:"errors"`
}

package domain

import "time"

// ScoreRecord is the 1:1 scoring result for a content item. The composite
// score is a pure function of (text, source, multiplier tables) and can be
// recomputed from the stored item at any time.
type ScoreRecord struct {
	ItemID int64

	ThemeScores      map[string]float64
	NarrativeSignals map[string]NarrativeSignal

	ROIDataPresent            bool
	PerformanceMetricsPresent bool
	MethodologyPresent        bool
	CaseStudyPresent          bool

	// MultipliersApplied keeps every factor that entered the composite,
	// keyed by name, so a score can be audited after the fact.
	MultipliersApplied map[string]float64

	CompositeScore float64
	Confidence     float64
	PrimaryTheme   string

	ScoredAt time.Time
}

// NarrativeSignal is one detected language-pattern family.
type NarrativeSignal struct {
	Matches    int     `json:"matches"`
	Multiplier float64 `json:"multiplier"`
}

// InsightType classifies a structured extraction.
type InsightType string

const (
	InsightROIData      InsightType = "roi_data"
	InsightMethodology  InsightType = "methodology"
	InsightCaseStudy    InsightType = "case_study"
	InsightPolicyChange InsightType = "policy_change"
)

// Insight is a typed extraction from an item's text. Insights are created
// only during scoring, are immutable, and are deleted with their item.
type Insight struct {
	ID             int64       `db:"id"`
	ItemID         int64       `db:"item_id"`
	Type           InsightType `db:"type"`
	Title          string      `db:"title"`
	Body           string      `db:"body"`
	ExtractedValue string      `db:"extracted_value"`
	IsActionable   bool        `db:"is_actionable"`
	Confidence     float64     `db:"confidence"`
}

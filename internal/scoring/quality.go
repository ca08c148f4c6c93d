package scoring

import "strings"

// QualityResult carries the independent indicator booleans plus the
// continuous insight-quality weight used in the composite.
type QualityResult struct {
	ROIDataPresent            bool
	PerformanceMetricsPresent bool
	MethodologyPresent        bool
	CaseStudyPresent          bool

	// Weight multiplies the composite. It floors at 0.1 so promotional
	// phrasing can never zero out a theme-positive item.
	Weight float64

	Level QualityLevel
}

type QualityLevel string

const (
	QualityHigh    QualityLevel = "high"
	QualityMedium  QualityLevel = "medium"
	QualityLow     QualityLevel = "low"
	QualityNeutral QualityLevel = "neutral"
)

const minQualityWeight = 0.1

// AnalyzeQuality computes the indicator booleans and the tiered weight.
func (t *Tables) AnalyzeQuality(text string) QualityResult {
	lower := strings.ToLower(text)
	q := t.Quality

	res := QualityResult{
		ROIDataPresent:            anyPhrase(lower, q.ROIIndicators),
		PerformanceMetricsPresent: anyPhrase(lower, q.PerformanceIndicators),
		MethodologyPresent:        anyPhrase(lower, q.MethodologyIndicators),
		CaseStudyPresent:          anyPhrase(lower, q.CaseStudyIndicators),
		Weight:                    1.0,
	}

	high := anyPhrase(lower, q.HighValue.Phrases)
	medium := anyPhrase(lower, q.MediumValue.Phrases)
	low := anyPhrase(lower, q.LowValue.Phrases)

	if high {
		res.Weight *= q.HighValue.Weight
	}
	if medium {
		res.Weight *= q.MediumValue.Weight
	}
	if low {
		res.Weight *= q.LowValue.Weight
	}
	if res.Weight < minQualityWeight {
		res.Weight = minQualityWeight
	}

	switch {
	case high || res.ROIDataPresent:
		res.Level = QualityHigh
	case medium || res.MethodologyPresent:
		res.Level = QualityMedium
	case low:
		res.Level = QualityLow
	default:
		res.Level = QualityNeutral
	}

	return res
}

// Confidence maps a quality level to the base confidence the composer
// blends with insight and narrative counts.
func (l QualityLevel) Confidence() float64 {
	switch l {
	case QualityHigh:
		return 0.8
	case QualityMedium:
		return 0.6
	case QualityLow:
		return 0.3
	default:
		return 0.4
	}
}

func anyPhrase(lowerText string, phrases []string) bool {
	for _, p := range phrases {
		if containsPhrase(lowerText, p) {
			return true
		}
	}
	return false
}

package scoring

import (
	"regexp"
	"strings"

	"curator/internal/domain"
)

// insightPattern is one typed extraction rule. Each pattern carries a fixed
// confidence; values come from the first capture group when present.
type insightPattern struct {
	re           *regexp.Regexp
	itype        domain.InsightType
	title        string
	confidence   float64
	isActionable bool
}

var roiPatterns = []insightPattern{
	{regexp.MustCompile(`roi of (\d+(?:\.\d+)?%)`), domain.InsightROIData, "ROI figure", 0.85, true},
	{regexp.MustCompile(`return on investment[^.]*?(\d+(?:\.\d+)?%)`), domain.InsightROIData, "Return on investment", 0.85, true},
	{regexp.MustCompile(`(\d+(?:\.\d+)?%)\s*(?:increase|improvement|gain|boost)`), domain.InsightROIData, "Performance gain", 0.8, true},
	{regexp.MustCompile(`reduced[^.]*? by (\d+(?:\.\d+)?%)`), domain.InsightROIData, "Reduction metric", 0.8, true},
	{regexp.MustCompile(`efficiency[^.]*?improved by (\d+(?:\.\d+)?%)`), domain.InsightROIData, "Efficiency gain", 0.8, true},
}

var methodologyPattern = insightPattern{
	re:           regexp.MustCompile(`(?:methodology|process|framework|approach)[:,]?\s+([^.]{20,100})`),
	itype:        domain.InsightMethodology,
	title:        "Implementation methodology",
	confidence:   0.75,
	isActionable: true,
}

var caseStudyPhrases = []string{"case study", "success story", "before and after"}

var policyPhrases = []string{"policy change", "zoning reform", "new legislation", "regulatory update"}

const maxInsightsPerType = 5

// ExtractInsights pulls typed, structured facts out of the text. Extraction
// is independent of theme detection and deterministic: the same text always
// yields the same insights in the same order.
func ExtractInsights(text string) []domain.Insight {
	lower := strings.ToLower(text)
	if lower == "" {
		return nil
	}

	var out []domain.Insight

	roiSeen := 0
	for _, p := range roiPatterns {
		for _, m := range p.re.FindAllStringSubmatch(lower, -1) {
			if roiSeen >= maxInsightsPerType {
				break
			}
			out = append(out, domain.Insight{
				Type:           p.itype,
				Title:          p.title,
				Body:           strings.TrimSpace(m[0]),
				ExtractedValue: m[1],
				IsActionable:   p.isActionable,
				Confidence:     p.confidence,
			})
			roiSeen++
		}
	}

	methSeen := 0
	for _, m := range methodologyPattern.re.FindAllStringSubmatch(lower, -1) {
		clause := strings.TrimSpace(m[1])
		if len(clause) < 20 || methSeen >= maxInsightsPerType {
			continue
		}
		out = append(out, domain.Insight{
			Type:           methodologyPattern.itype,
			Title:          methodologyPattern.title,
			Body:           clause,
			ExtractedValue: "methodology identified",
			IsActionable:   true,
			Confidence:     methodologyPattern.confidence,
		})
		methSeen++
	}

	for _, phrase := range caseStudyPhrases {
		if strings.Contains(lower, phrase) {
			out = append(out, domain.Insight{
				Type:           domain.InsightCaseStudy,
				Title:          "Case study",
				Body:           "article contains case study or success story elements",
				ExtractedValue: phrase,
				IsActionable:   true,
				Confidence:     0.8,
			})
			break
		}
	}

	for _, phrase := range policyPhrases {
		if strings.Contains(lower, phrase) {
			out = append(out, domain.Insight{
				Type:           domain.InsightPolicyChange,
				Title:          "Policy change",
				Body:           "article references a policy or regulatory shift",
				ExtractedValue: phrase,
				IsActionable:   false,
				Confidence:     0.7,
			})
			break
		}
	}

	return out
}

package scoring

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"curator/internal/domain"
)

var dollarAmount = regexp.MustCompile(`(?i)\$\s?([0-9]+(?:\.[0-9]+)?)\s*(billion|million|b|m)\b`)

// MaxDollarMillions returns the single largest currency amount in the text,
// normalized to millions. Multiple amounts are never summed; only the
// maximum drives the tier multiplier.
func MaxDollarMillions(text string) float64 {
	max := 0.0
	for _, m := range dollarAmount.FindAllStringSubmatch(text, -1) {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		unit := strings.ToLower(m[2])
		if unit == "billion" || unit == "b" {
			v *= 1000
		}
		if v > max {
			max = v
		}
	}
	return max
}

// DollarMultiplier maps the largest amount onto the configured tiers.
func (t *Tables) DollarMultiplier(millions float64) float64 {
	tiers := append([]DollarTier(nil), t.DollarTiers...)
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].MinMillions > tiers[j].MinMillions })
	for _, tier := range tiers {
		if millions >= tier.MinMillions {
			return tier.Multiplier
		}
	}
	return 1.0
}

// Credibility resolves a source name or domain to its tier multiplier.
// Unknown sources score 1.0; the lookup is substring-based and weak by
// design, never a join against stored items.
func (t *Tables) Credibility(source string) (domain.SourceTier, float64) {
	lower := strings.ToLower(source)
	if lower != "" {
		for _, tier := range []domain.SourceTier{domain.TierOne, domain.TierTwo, domain.TierThree, domain.TierResearch} {
			for _, name := range t.SourceTiers[tier] {
				if strings.Contains(lower, name) {
					return tier, t.TierMultipliers[tier]
				}
			}
		}
	}
	return domain.TierUnknown, t.TierMultipliers[domain.TierUnknown]
}

// Compose runs every analyzer over the item's text and combines the
// results into one ScoreRecord plus its insights. The output is a pure,
// deterministic function of (text, source, tables).
func (t *Tables) Compose(title, body, source string) (*domain.ScoreRecord, []domain.Insight) {
	text := title + " " + body

	themes := t.DetectThemes(text)
	signals := t.DetectNarrativeSignals(text)
	quality := t.AnalyzeQuality(text)
	insights := ExtractInsights(text)

	multipliers := make(map[string]float64)

	narrativeProduct := 1.0
	narrativeMatches := 0
	for family, sig := range signals {
		c := t.NarrativeContribution(sig)
		multipliers["narrative_"+family] = c
		narrativeProduct *= c
		narrativeMatches += sig.Matches
	}

	_, credibility := t.Credibility(source)
	multipliers["source_credibility"] = credibility

	dollarMult := t.DollarMultiplier(MaxDollarMillions(text))
	multipliers["dollar_tier"] = dollarMult

	multipliers["insight_quality"] = quality.Weight

	rawSum := 0.0
	for _, s := range themes {
		rawSum += s
	}
	composite := rawSum * narrativeProduct * quality.Weight * credibility * dollarMult

	confidence := quality.Level.Confidence() +
		0.05*float64(min(len(insights), 4)) +
		0.05*float64(min(narrativeMatches, 4))
	if confidence > 1.0 {
		confidence = 1.0
	}

	rec := &domain.ScoreRecord{
		ThemeScores:               themes,
		NarrativeSignals:          signals,
		ROIDataPresent:            quality.ROIDataPresent,
		PerformanceMetricsPresent: quality.PerformanceMetricsPresent,
		MethodologyPresent:        quality.MethodologyPresent,
		CaseStudyPresent:          quality.CaseStudyPresent,
		MultipliersApplied:        multipliers,
		CompositeScore:            composite,
		Confidence:                confidence,
		PrimaryTheme:              primaryTheme(themes),
	}
	return rec, insights
}

// primaryTheme is the arg-max of the theme map with a lexicographic
// tie-break so repeated runs agree. Empty map means "exclude item"; the
// orchestrator handles that, it is never an error here.
func primaryTheme(themes map[string]float64) string {
	best := ""
	bestScore := 0.0
	names := make([]string, 0, len(themes))
	for n := range themes {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		if s := themes[n]; s > bestScore {
			best, bestScore = n, s
		}
	}
	return best
}

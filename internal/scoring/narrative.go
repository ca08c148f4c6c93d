package scoring

import (
	"math"
	"strings"

	"curator/internal/domain"
)

// DetectNarrativeSignals counts occurrences of each pattern family's
// phrases. A family appears in the result only when it matched at all; the
// composer turns matches into multiplier^min(matches, cap), which rewards
// presence but bounds keyword-stuffing inflation.
func (t *Tables) DetectNarrativeSignals(text string) map[string]domain.NarrativeSignal {
	lower := strings.ToLower(text)
	signals := make(map[string]domain.NarrativeSignal)
	if lower == "" {
		return signals
	}

	for family, def := range t.Narrative {
		matches := 0
		for _, p := range def.Phrases {
			matches += countPhrase(lower, p)
		}
		if matches > 0 {
			signals[family] = domain.NarrativeSignal{
				Matches:    matches,
				Multiplier: def.Multiplier,
			}
		}
	}
	return signals
}

// NarrativeContribution is one family's factor in the composite.
func (t *Tables) NarrativeContribution(sig domain.NarrativeSignal) float64 {
	capped := sig.Matches
	if capped > t.NarrativeCap {
		capped = t.NarrativeCap
	}
	return math.Pow(sig.Multiplier, float64(capped))
}

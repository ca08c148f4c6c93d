// Package scoring is the theme/narrative/quality analysis pipeline and the
// batch orchestrator that persists its results. Every score here is a pure
// function of (text, tables) and can be recomputed at any time.
package scoring

import (
	"regexp"
	"strings"
	"sync"
)

const pointsPerMatch = 10

// DetectThemes scores each configured theme against text. A theme appears
// in the result only when its score clears the activation threshold, so a
// weak signal is distinguishable from an absent one. Content matching an
// exclusion category yields an empty map.
func (t *Tables) DetectThemes(text string) map[string]float64 {
	lower := strings.ToLower(text)
	if lower == "" || t.excluded(lower) {
		return map[string]float64{}
	}

	scores := make(map[string]float64)
	for name, def := range t.Themes {
		score := 0.0
		for _, phrases := range def.Groups {
			matches := 0
			for _, p := range phrases {
				if containsPhrase(lower, p) {
					matches++
				}
			}
			if matches > t.GroupMatchCap {
				matches = t.GroupMatchCap
			}
			score += float64(matches * pointsPerMatch)
		}
		if score >= t.ActivationThreshold {
			scores[name] = score
		}
	}
	return scores
}

// Exclusions use word-boundary matching: "art" must not fire on "article".
func (t *Tables) excluded(lower string) bool {
	t.compileOnce.Do(func() {
		for _, phrases := range t.Exclusions {
			for _, p := range phrases {
				t.exclusionRes = append(t.exclusionRes,
					regexp.MustCompile(`\b`+regexp.QuoteMeta(strings.ToLower(p))+`\b`))
			}
		}
	})
	for _, re := range t.exclusionRes {
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}

// compiled state lives on Tables so independently loaded tables don't
// share pattern caches.
type compiledPatterns struct {
	compileOnce  sync.Once
	exclusionRes []*regexp.Regexp
}

// containsPhrase does a plain substring check, matching how the keyword
// tables were tuned. Phrases are stored lower-case.
func containsPhrase(lowerText, phrase string) bool {
	return strings.Contains(lowerText, strings.ToLower(phrase))
}

// countPhrase counts non-overlapping occurrences.
func countPhrase(lowerText, phrase string) int {
	return strings.Count(lowerText, strings.ToLower(phrase))
}

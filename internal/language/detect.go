// Package language wraps best-effort language detection for the
// English-only-by-default ingestion policy.
package language

import (
	"strings"

	"github.com/abadojack/whatlanggo"
)

// Unknown is returned when detection fails or confidence is too low.
// Under the default accepted-language policy it rejects the item.
const Unknown = "unknown"

const minConfidence = 0.5

// Detect returns the ISO-639-1 code of text, or Unknown. Only a prefix of
// the text is examined; detection quality plateaus quickly.
func Detect(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return Unknown
	}
	if len(text) > 1000 {
		text = text[:1000]
	}

	info := whatlanggo.Detect(text)
	if !info.IsReliable() || info.Confidence < minConfidence {
		return Unknown
	}
	code := info.Lang.Iso6391()
	if code == "" {
		return Unknown
	}
	return code
}

// Detector adapts Detect to the ingestion pipeline's interface.
type Detector struct{}

func (Detector) Detect(text string) string {
	return Detect(text)
}

// Accepted reports whether code is in the configured allow-list.
func Accepted(code string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(code, a) {
			return true
		}
	}
	return false
}

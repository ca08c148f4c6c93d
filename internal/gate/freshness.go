package gate

import "time"

// DefaultFreshnessWindow is intentionally loose; operators tighten it via
// config once a deployment has enough source volume.
const (
	DefaultFreshnessWindow = 72 * time.Hour
	clockSkewTolerance     = 5 * time.Minute
)

// Freshness decides whether a publish timestamp admits an item. A missing
// timestamp rejects; the caller supplies any source-provided fallback
// before calling. Timestamps beyond a small skew into the future reject.
type Freshness struct {
	Window time.Duration
}

func NewFreshness(window time.Duration) Freshness {
	if window <= 0 {
		window = DefaultFreshnessWindow
	}
	return Freshness{Window: window}
}

// Fresh reports whether published falls inside the window relative to now.
func (f Freshness) Fresh(published *time.Time, now time.Time) bool {
	if published == nil || published.IsZero() {
		return false
	}
	if published.After(now.Add(clockSkewTolerance)) {
		return false
	}
	return now.Sub(*published) <= f.Window
}

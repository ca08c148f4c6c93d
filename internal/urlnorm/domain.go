package urlnorm

import (
	"strings"

	"golang.org/x/net/publicsuffix"
)

// noisePrefixes are crawler-facing host prefixes that hide the real
// publisher (AMP mirrors, mobile subdomains, and so on).
var noisePrefixes = []string{"www.", "amp.", "m.", "mobile.", "news.", "beta."}

// RegistrableDomain reduces host to its eTLD+1, lower-cased, with noise
// prefixes stripped. Falls back to the last two dot-labels when the public
// suffix list can't resolve the host. The result is only ever used as a
// quota key.
func RegistrableDomain(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, ok := strings.Cut(host, ":"); ok {
		host = h
	}
	for _, pfx := range noisePrefixes {
		if strings.HasPrefix(host, pfx) {
			host = host[len(pfx):]
			break
		}
	}

	if d, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil && d != "" {
		return strings.ToLower(d)
	}

	parts := strings.Split(host, ".")
	if len(parts) >= 2 {
		return strings.Join(parts[len(parts)-2:], ".")
	}
	return host
}

// Package urlnorm produces the canonical form of a URL used as the dedup
// key, and resolves hosts to their registrable domain for quota accounting.
package urlnorm

import (
	"net/url"
	"sort"
	"strings"
)

// trackingParams are removed from query strings during canonicalization.
// Matching is case-insensitive, and any utm_* parameter is dropped.
var trackingParams = map[string]struct{}{
	"utm_source": {}, "utm_medium": {}, "utm_campaign": {}, "utm_term": {}, "utm_content": {},
	"fbclid": {}, "gclid": {}, "mc_cid": {}, "mc_eid": {}, "igshid": {},
	"ref": {}, "ref_src": {}, "ref_url": {},
}

// Normalize returns the canonical form of u: no fragment, no trailing
// slash, AMP suffixes collapsed, tracking parameters removed, remaining
// query parameters sorted. Normalize is idempotent and never touches the
// network. Unparseable input is returned unchanged.
func Normalize(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Fragment = ""

	path := strings.TrimRight(u.Path, "/")
	if strings.HasSuffix(path, "/amp") || strings.HasSuffix(path, ".amp") {
		path = path[:len(path)-4]
	}
	u.Path = path
	u.RawPath = ""

	type param struct{ key, value string }
	var kept []param
	for _, pair := range strings.Split(u.RawQuery, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			key = k
		}
		lower := strings.ToLower(key)
		if _, drop := trackingParams[lower]; drop || strings.HasPrefix(lower, "utm_") {
			continue
		}
		value, err := url.QueryUnescape(v)
		if err != nil {
			value = v
		}
		kept = append(kept, param{key, value})
	}
	sort.Slice(kept, func(i, j int) bool {
		if kept[i].key != kept[j].key {
			return kept[i].key < kept[j].key
		}
		return kept[i].value < kept[j].value
	})

	q := make(url.Values, len(kept))
	for _, p := range kept {
		q.Add(p.key, p.value)
	}
	u.RawQuery = q.Encode()

	return strings.TrimRight(u.String(), "/")
}

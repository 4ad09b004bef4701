package rdfhttp

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
)

// AcceptSpec is one entry of an Accept-like header.
type AcceptSpec struct {
	Value string
	Q     float64
}

// ParseAccept parses Accept-like headers. Entries are ordered by quality,
// keeping the header order for equal values. Entries with q=0 are dropped.
func ParseAccept(h http.Header, key string) []AcceptSpec {
	var specs []AcceptSpec
	for _, line := range h[http.CanonicalHeaderKey(key)] {
		for _, part := range strings.Split(line, ",") {
			fields := strings.Split(part, ";")
			spec := AcceptSpec{Value: strings.ToLower(strings.TrimSpace(fields[0])), Q: 1}
			if spec.Value == "" {
				continue
			}
			for _, param := range fields[1:] {
				name, val, ok := strings.Cut(strings.TrimSpace(param), "=")
				if !ok || strings.TrimSpace(name) != "q" {
					continue
				}
				if q, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
					spec.Q = q
				}
			}
			if spec.Q <= 0 {
				continue
			}
			specs = append(specs, spec)
		}
	}
	sort.SliceStable(specs, func(i, j int) bool { return specs[i].Q > specs[j].Q })
	return specs
}

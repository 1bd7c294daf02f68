package transform

import (
	"regexp"
	"strings"

	"github.com/matzehuels/rivergraph/pkg/river"
)

// Filter keeps the features whose name contains any of patterns, ignoring
// case. Patterns are literal substrings. An empty pattern list keeps every
// feature.
func Filter(features []river.Feature, patterns []string) []river.Feature {
	re := namePattern(patterns)
	if re == nil {
		return features
	}
	var out []river.Feature
	for _, f := range features {
		if f.Name != "" && re.MatchString(f.Name) {
			out = append(out, f)
		}
	}
	return out
}

func namePattern(patterns []string) *regexp.Regexp {
	var quoted []string
	for _, p := range patterns {
		if p = strings.TrimSpace(p); p != "" {
			quoted = append(quoted, regexp.QuoteMeta(p))
		}
	}
	if len(quoted) == 0 {
		return nil
	}
	return regexp.MustCompile(`(?i)` + strings.Join(quoted, "|"))
}

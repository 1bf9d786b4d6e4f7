// Package suggest matches a partially typed query against a list of known
// popular search terms.
package suggest

import (
	"strings"
)

// MaxSuggestions caps the number of suggestions returned by Match.
const MaxSuggestions = 5

// Match returns up to MaxSuggestions terms that contain query, ignoring case,
// in the order they appear in terms. An empty query yields no suggestions.
func Match(query string, terms []string) []string {
	out := make([]string, 0, MaxSuggestions)
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return out
	}
	for _, term := range terms {
		if strings.Contains(strings.ToLower(term), q) {
			out = append(out, term)
			if len(out) == MaxSuggestions {
				break
			}
		}
	}
	return out
}

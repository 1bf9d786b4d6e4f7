package suggest

import (
	"strings"
	"unicode"
)

// maxPopularWords bounds how long a popular query may be to be suggested.
const maxPopularWords = 4

// Extend returns static followed by the popular terms that are not already
// listed (ignoring case) and pass Admissible. static keeps its order.
func Extend(static, popular []string) []string {
	out := make([]string, 0, len(static)+len(popular))
	seen := make(map[string]struct{}, len(static)+len(popular))
	for _, term := range static {
		key := strings.ToLower(strings.TrimSpace(term))
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, term)
	}

	vocab := Vocabulary(static)
	for _, term := range popular {
		key := strings.ToLower(strings.TrimSpace(term))
		if _, dup := seen[key]; dup {
			continue
		}
		if !Admissible(key, vocab) {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

// Vocabulary returns the lowercased words of terms.
func Vocabulary(terms []string) map[string]struct{} {
	vocab := make(map[string]struct{})
	for _, term := range terms {
		for _, w := range strings.Fields(strings.ToLower(term)) {
			vocab[w] = struct{}{}
		}
	}
	return vocab
}

// Admissible reports whether a query typed by some user may be shown to
// others: at most maxPopularWords words, letters and hyphens only, every
// word drawn from vocab.
func Admissible(term string, vocab map[string]struct{}) bool {
	words := strings.Fields(strings.ToLower(term))
	if len(words) == 0 || len(words) > maxPopularWords {
		return false
	}
	for _, w := range words {
		for _, r := range w {
			if !unicode.IsLetter(r) && r != '-' {
				return false
			}
		}
		if _, ok := vocab[w]; !ok {
			return false
		}
	}
	return true
}

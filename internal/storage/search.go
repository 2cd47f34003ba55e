package storage

import (
	"strings"

	"golang.org/x/text/cases"
)

// Matcher performs case-insensitive substring matching against a fixed query.
type Matcher struct {
	folded string
}

// NewMatcher folds query once for repeated matching.
func NewMatcher(query string) Matcher {
	return Matcher{folded: fold(query)}
}

// Match reports whether any field contains the query.
func (m Matcher) Match(fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(fold(f), m.folded) {
			return true
		}
	}
	return false
}

func fold(s string) string {
	// cases.Caser is stateful and not safe for concurrent use.
	return cases.Fold().String(s)
}

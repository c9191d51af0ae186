package types

import (
	"fmt"
	"unicode/utf8"
)

// Pattern is a non-empty, case-sensitive substring used to decide line
// retention. Patterns are compared byte-exact; they are not regular
// expressions.
type Pattern string

// InvalidPatternError reports a pattern rejected at contribution time.
// It indicates an authoring mistake in the contributing component and is
// always surfaced to the caller.
type InvalidPatternError struct {
	Pattern string
	Reason  string
}

// Error implements the error interface.
func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid filter pattern %q: %s", e.Pattern, e.Reason)
}

// NewPattern validates s as a filter pattern.
// Returns *InvalidPatternError if s is empty or not valid UTF-8.
func NewPattern(s string) (Pattern, error) {
	if s == "" {
		return "", &InvalidPatternError{Pattern: s, Reason: "pattern is empty"}
	}
	if !utf8.ValidString(s) {
		return "", &InvalidPatternError{Pattern: s, Reason: "pattern is not valid UTF-8"}
	}
	return Pattern(s), nil
}

// NewPatterns validates every element of ss. All-or-nothing: the first
// invalid element fails the whole call and nothing is returned.
func NewPatterns(ss ...string) ([]Pattern, error) {
	patterns := make([]Pattern, 0, len(ss))
	for _, s := range ss {
		p, err := NewPattern(s)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}

// String implements Stringer.
func (p Pattern) String() string {
	return string(p)
}

package classpath

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Wildcard is the trailing marker that turns a [Pattern] into a prefix match.
const Wildcard = "*"

// ErrInvalidPattern indicates an exclusion pattern is malformed.
var ErrInvalidPattern = errors.New("invalid exclusion pattern")

// Pattern is an exclusion rule matched against an artifact's group.
//
// A pattern matches a group that is exactly equal to it. A pattern ending in
// [Wildcard] additionally matches any group starting with the text before the
// wildcard. Matching is case-sensitive; there are no other special characters.
type Pattern string

// ParsePattern validates s and returns it as a [Pattern].
func ParsePattern(s string) (Pattern, error) {
	p := Pattern(s)

	err := p.Validate()
	if err != nil {
		return "", err
	}

	return p, nil
}

// ParsePatterns parses each string with [ParsePattern].
func ParsePatterns(ss ...string) (Patterns, error) {
	ps := make(Patterns, 0, len(ss))

	for _, s := range ss {
		p, err := ParsePattern(s)
		if err != nil {
			return nil, err
		}

		ps = append(ps, p)
	}

	return ps, nil
}

// Validate returns [ErrInvalidPattern] if p is empty, is only a wildcard, or
// contains a wildcard anywhere but at the end.
func (p Pattern) Validate() error {
	s := string(p)

	switch {
	case s == "":
		return fmt.Errorf("%w: empty", ErrInvalidPattern)
	case s == Wildcard:
		return fmt.Errorf("%w %q: pattern would exclude every artifact", ErrInvalidPattern, s)
	case strings.Contains(strings.TrimSuffix(s, Wildcard), Wildcard):
		return fmt.Errorf("%w %q: wildcard is only allowed at the end", ErrInvalidPattern, s)
	}

	return nil
}

// Matches reports whether group is excluded by p.
func (p Pattern) Matches(group string) bool {
	s := string(p)
	if group == s {
		return true
	}

	prefix, ok := strings.CutSuffix(s, Wildcard)

	return ok && strings.HasPrefix(group, prefix)
}

// Patterns is a set of exclusion patterns.
type Patterns []Pattern

// Match returns the first pattern that matches group.
func (ps Patterns) Match(group string) (Pattern, bool) {
	for _, p := range ps {
		if p.Matches(group) {
			return p, true
		}
	}

	return "", false
}

// Strings returns the patterns as plain strings.
func (ps Patterns) Strings() []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = string(p)
	}

	return out
}

// Filter splits artifacts into those kept and those excluded by ps. Both
// returned slices are sorted with [Compare] and free of duplicates; the input
// is not modified.
func Filter(artifacts []Artifact, ps Patterns) ([]Artifact, []Artifact) {
	var kept, excluded []Artifact

	for _, a := range artifacts {
		if _, ok := ps.Match(a.Group); ok {
			excluded = append(excluded, a)

			continue
		}

		kept = append(kept, a)
	}

	return sortUnique(kept), sortUnique(excluded)
}

func sortUnique(artifacts []Artifact) []Artifact {
	Sort(artifacts)

	return slices.CompactFunc(artifacts, func(a, b Artifact) bool {
		return Compare(a, b) == 0
	})
}

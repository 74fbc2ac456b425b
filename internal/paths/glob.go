package paths

import (
	"path"
	"strings"
)

// MatchGlob checks if a unit name matches a shell-style pattern.
// Supports *, ? and [...] classes. A malformed pattern matches nothing.
func MatchGlob(pattern, name string) bool {
	matched, err := path.Match(pattern, name)
	if err != nil {
		return false
	}
	return matched
}

// IsGlobPattern checks if a string contains glob characters
func IsGlobPattern(s string) bool {
	return strings.ContainsAny(s, "*?[")
}

// ExpandGlobs resolves selectors against the available names. Plain
// selectors pass through unchanged, even when absent from names, so a later
// lookup can report them. Glob selectors expand to every matching name in
// the order of names; a glob with no match is returned in unmatched.
// Duplicates are dropped, keeping the first occurrence.
func ExpandGlobs(selectors, names []string) (expanded, unmatched []string) {
	seen := make(map[string]bool)
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			expanded = append(expanded, name)
		}
	}

	for _, sel := range selectors {
		if !IsGlobPattern(sel) {
			add(sel)
			continue
		}

		found := false
		for _, name := range names {
			if MatchGlob(sel, name) {
				add(name)
				found = true
			}
		}
		if !found {
			unmatched = append(unmatched, sel)
		}
	}

	return expanded, unmatched
}

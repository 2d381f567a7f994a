package docck

import (
	"regexp"
	"strings"
)

// Match reports whether candidate satisfies pattern. The empty pattern
// always matches, it is a pure existence check. In regex mode the pattern
// is compiled as a regular expression and searched unanchored over the
// unmodified candidate; inline flags like (?i) or (?m) and the \A and \z
// anchors work as usual. In literal mode candidate and pattern are both
// whitespace-normalized, every run of whitespace including newlines
// becomes a single space, and the normalized pattern must be a substring
// of the normalized candidate.
func Match(candidate, pattern string, regex bool) (bool, error) {
	if pattern == "" {
		return true, nil
	}
	if regex {
		rgx, err := regexp.Compile(pattern)
		if err != nil {
			return false, err
		}
		return rgx.MatchString(candidate), nil
	}
	return strings.Contains(
		normalizeSpace(candidate),
		normalizeSpace(pattern),
	), nil
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

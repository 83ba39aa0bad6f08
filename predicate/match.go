package predicate

import "strings"

// TypeMatches reports whether eventType matches pattern. Patterns are split
// on dots and a "*" segment stands for exactly one segment, so "page.*"
// matches "page.created" but not "page". A lone "*" matches every type.
func TypeMatches(pattern, eventType string) bool {
	if pattern == "*" || pattern == eventType {
		return true
	}

	for {
		want, pattern2, wantMore := strings.Cut(pattern, ".")
		got, eventType2, gotMore := strings.Cut(eventType, ".")
		if wantMore != gotMore {
			return false
		}
		if want != "*" && want != got {
			return false
		}
		if !wantMore {
			return true
		}
		pattern, eventType = pattern2, eventType2
	}
}

// ValidPattern reports whether pattern is usable with TypeMatches: non-empty
// and without empty segments.
func ValidPattern(pattern string) bool {
	if pattern == "" {
		return false
	}
	for _, seg := range strings.Split(pattern, ".") {
		if seg == "" {
			return false
		}
	}
	return true
}

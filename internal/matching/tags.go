// internal/matching/tags.go
package matching

import "strings"

// TagMatcher decides whether two free-text tags refer to the same thing.
type TagMatcher func(a, b string) bool

// TagsMatch reports whether either tag contains the other, ignoring case.
// "Screen Printing" matches both "Printing" and "Screen".
func TagsMatch(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	return strings.Contains(la, lb) || strings.Contains(lb, la)
}

func anyTagMatches(match TagMatcher, tag string, candidates []string) bool {
	for _, c := range candidates {
		if match(c, tag) {
			return true
		}
	}
	return false
}

// countMatching counts entries of tags that match at least one of against.
func countMatching(match TagMatcher, tags, against []string) int {
	n := 0
	for _, t := range tags {
		if anyTagMatches(match, t, against) {
			n++
		}
	}
	return n
}

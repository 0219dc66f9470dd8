package extractor

import "strings"

// substituteTokens replaces every ${NAME} placeholder in s with its
// resolved value, leaving unresolved placeholders untouched — the same
// substitution idiom internal/crawler uses for manual URLs and memento
// URL templates,
// reimplemented here since the two packages share no common dependency
// to hang a single copy off of.
func substituteTokens(s string, values map[string]string) string {
	if len(values) == 0 {
		return s
	}

	for name, value := range values {
		s = strings.ReplaceAll(s, "${"+name+"}", value)
	}

	return s
}

package core

import "strings"

// CleanString trims surrounding whitespace from `s`, lowercasing the result
// when asked to.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

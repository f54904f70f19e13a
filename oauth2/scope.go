package oauth2

import "strings"

// SplitScope breaks a scope string into individual values. Separators are
// tried in priority order and only the first separator that actually splits
// the string is used, which lets a server favor spaces while tolerating
// clients that join scopes with commas. A string no separator splits is
// returned as a single-element slice; an empty string yields nil.
func SplitScope(scope string, separators []string) []string {
	if scope == "" {
		return nil
	}
	if len(separators) == 0 {
		separators = []string{" "}
	}
	for _, sep := range separators {
		if parts := strings.Split(scope, sep); len(parts) > 1 {
			return parts
		}
	}
	return []string{scope}
}

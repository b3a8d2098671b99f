// Package library contains helper functions shared across modules.
package library

import "strings"

// StripBearerPrefix removes any leading "Bearer " prefix (case-insensitive,
// repeated) from an authorization header value and trims surrounding
// whitespace, returning the bare credential.
func StripBearerPrefix(value string) string {
	trimmed := strings.TrimSpace(value)
	for {
		if len(trimmed) < 7 || !strings.EqualFold(trimmed[:7], "bearer ") {
			return trimmed
		}
		trimmed = strings.TrimSpace(trimmed[7:])
	}
}

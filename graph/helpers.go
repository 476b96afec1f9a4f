package graph

import "strings"

// NormalizeID creates a safe, lowercase id for element keys and DOM ids.
// It replaces special characters with underscores and converts to lowercase.
// Example: "John@Company" becomes "john_company"
func NormalizeID(id string) string {
	normalized := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			return r
		}
		return '_'
	}, strings.TrimSpace(id))

	return strings.ToLower(normalized)
}

// EdgeID is the canonical id of an edge between two keys.
func EdgeID(from, to string) string { return from + "->" + to }

// Package inventory holds the admin stocking and catalog CSV helpers.
package inventory

import (
	"strings"
)

// minFields is the smallest number of colon-delimited fields a stocking
// entry needs (e.g. user:pass:email).
const minFields = 3

// ParseResult splits a pasted stocking blob into its usable subsets.
type ParseResult struct {
	Valid   []string
	Invalid []string
	Deduped []string
}

// ParseEntries scans a line-delimited credential blob. A line is valid when
// it has at least three non-empty colon-delimited fields; Deduped is the
// valid subset with case-insensitive duplicates removed, first occurrence
// winning. Blank lines are ignored entirely.
func ParseEntries(blob string) ParseResult {
	var result ParseResult
	seen := map[string]bool{}

	for _, line := range strings.Split(blob, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !validEntry(line) {
			result.Invalid = append(result.Invalid, line)
			continue
		}
		result.Valid = append(result.Valid, line)
		key := strings.ToLower(line)
		if !seen[key] {
			seen[key] = true
			result.Deduped = append(result.Deduped, line)
		}
	}
	return result
}

func validEntry(line string) bool {
	fields := strings.Split(line, ":")
	if len(fields) < minFields {
		return false
	}
	for _, field := range fields {
		if strings.TrimSpace(field) == "" {
			return false
		}
	}
	return true
}

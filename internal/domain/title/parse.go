// Package title splits recommendation strings such as "Heat (1995)" into
// the bare title and release year used for metadata queries.
package title

import (
	"regexp"
	"strings"
)

var yearSuffix = regexp.MustCompile(`^(.+)\s\((\d{4})\)$`)

// Parsed is a raw title split for lookup. Year is empty when absent.
type Parsed struct {
	QueryTitle string
	Year       string
}

// HasYear reports whether a release year was found.
func (p Parsed) HasYear() bool {
	return p.Year != ""
}

// Parse extracts a trailing " (YYYY)" suffix. A string without one is
// returned trimmed with no year.
func Parse(raw string) Parsed {
	if m := yearSuffix.FindStringSubmatch(raw); m != nil {
		return Parsed{QueryTitle: strings.TrimSpace(m[1]), Year: m[2]}
	}
	return Parsed{QueryTitle: strings.TrimSpace(raw)}
}

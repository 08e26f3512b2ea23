// Package certid encodes, decodes and orders PrismStudio certificate and student identifiers.
//
// An identifier is "PS" followed by a two-digit year, a two-digit month, a 2-4 letter
// program domain code and a three-digit sequence, e.g. PS2506DS148.
package certid

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	prefix = "PS"

	minYear     = 2020
	maxYear     = 2050
	minSequence = 1
	maxSequence = 999
)

var idPattern = regexp.MustCompile(`^PS(\d{2})(\d{2})([A-Z]{2,4})(\d{3})$`)

// Components are the decoded parts of an identifier.
type Components struct {
	Year     int // four-digit year
	Month    int
	Domain   string
	Sequence int
}

// Normalize trims whitespace and upper-cases an identifier.
func Normalize(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// IsValidFormat reports whether the normalized id has the identifier shape.
// It does not check ranges or the domain set.
func IsValidFormat(id string) bool {
	return idPattern.MatchString(Normalize(id))
}

// Parse decodes an identifier after normalizing it. It fails unless the normalized id
// matches the shape exactly.
func Parse(id string) (Components, bool) {
	m := idPattern.FindStringSubmatch(Normalize(id))
	if m == nil {
		return Components{}, false
	}

	yy, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	seq, _ := strconv.Atoi(m[4])

	return Components{
		Year:     2000 + yy,
		Month:    mm,
		Domain:   m[3],
		Sequence: seq,
	}, true
}

// Validate checks year, month, domain and sequence ranges.
func (c Components) Validate() error {
	if c.Year < minYear || c.Year > maxYear {
		return fmt.Errorf("year %d outside %d-%d", c.Year, minYear, maxYear)
	}
	if c.Month < 1 || c.Month > 12 {
		return fmt.Errorf("month %d outside 1-12", c.Month)
	}
	if !IsKnownDomain(c.Domain) {
		return fmt.Errorf("unknown domain code %q", c.Domain)
	}
	if c.Sequence < minSequence || c.Sequence > maxSequence {
		return fmt.Errorf("sequence %d outside %d-%d", c.Sequence, minSequence, maxSequence)
	}
	return nil
}

// Format encodes valid components into an identifier.
func Format(c Components) (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%02d%02d%s%03d", prefix, c.Year%100, c.Month, c.Domain, c.Sequence), nil
}

// IsValid reports whether id has the identifier shape and all components are in range.
func IsValid(id string) bool {
	c, ok := Parse(id)
	return ok && c.Validate() == nil
}

// CohortLabel renders the human-readable cohort, e.g. "June 2025 - Data Science".
func CohortLabel(id string) (string, bool) {
	c, ok := Parse(id)
	if !ok || c.Month < 1 || c.Month > 12 {
		return "", false
	}
	return fmt.Sprintf("%s %d - %s", time.Month(c.Month).String(), c.Year, DomainName(c.Domain)), true
}

// SortKey returns year||month||domain||sequence, which orders identifiers chronologically
// under plain string comparison. The id is normalized first; unparseable ids have an empty key.
func SortKey(id string) string {
	m := idPattern.FindStringSubmatch(Normalize(id))
	if m == nil {
		return ""
	}
	return m[1] + m[2] + m[3] + m[4]
}

// Sort returns the ids in ascending chronological order. The sort is stable, so equal
// keys keep their input order. Unparseable ids are placed last, in input order.
func Sort(ids []string) []string {
	sorted := make([]string, len(ids))
	copy(sorted, ids)

	sort.SliceStable(sorted, func(i, j int) bool {
		ki, kj := SortKey(sorted[i]), SortKey(sorted[j])
		if ki == "" || kj == "" {
			return ki != "" && kj == ""
		}
		return ki < kj
	})
	return sorted
}

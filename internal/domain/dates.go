package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// slashDateRe matches "YYYY/M" and "YYYY/M/D" with one or two digit parts.
	slashDateRe = regexp.MustCompile(`^(\d{4})/(\d{1,2})(?:/(\d{1,2}))?$`)

	// isoDateTimeRe matches an ISO date followed by a "T" time component,
	// e.g. "2024-03-05T14:30:00Z".
	isoDateTimeRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})T\S*$`)
)

// NormalizeDate applies lenient date cleanup:
//
//	"2024-03-05 14:30:00" -> "2024-03-05"
//	"2024-03-05T14:30:00Z" -> "2024-03-05"
//	"2024/3"              -> "2024-03"
//	"2024/3/5"            -> "2024-03-05"
//	""                    -> "" (absent)
//
// Anything else passes through unchanged; this is not date validation.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if m := slashDateRe.FindStringSubmatch(s); m != nil {
		if m[3] == "" {
			return fmt.Sprintf("%s-%s", m[1], pad2(m[2]))
		}
		return fmt.Sprintf("%s-%s-%s", m[1], pad2(m[2]), pad2(m[3]))
	}
	if date, _, ok := strings.Cut(s, " "); ok {
		return date
	}
	if m := isoDateTimeRe.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

func pad2(s string) string {
	n, err := strconv.Atoi(s)
	if err != nil {
		return s
	}
	return fmt.Sprintf("%02d", n)
}

// dateField reads and normalizes a date-valued field. Non-text values are
// treated as absent.
func dateField(m map[string]any, key string) string {
	s, ok := m[key].(string)
	if !ok {
		return ""
	}
	return NormalizeDate(s)
}

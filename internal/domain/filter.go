package domain

import (
	"slices"
	"sort"
	"strings"
)

// Filter narrows an event collection the way the explorer view does. Empty
// criteria match everything; non-empty criteria must all match.
type Filter struct {
	ImposingCountries []string // imposing country names
	MeasureTypes      []string
	RelevanceScores   []string
	Query             string // case-insensitive substring of the summary
}

// IsZero reports whether the filter has no criteria.
func (f Filter) IsZero() bool {
	return len(f.ImposingCountries) == 0 && len(f.MeasureTypes) == 0 &&
		len(f.RelevanceScores) == 0 && strings.TrimSpace(f.Query) == ""
}

// Apply returns the events matching f, preserving order.
func (f Filter) Apply(events []Event) []Event {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	return out
}

// Match reports whether a single event satisfies f.
func (f Filter) Match(e Event) bool {
	if len(f.ImposingCountries) > 0 && !slices.Contains(f.ImposingCountries, e.ImposingCountry.Name) {
		return false
	}
	if len(f.MeasureTypes) > 0 && !slices.Contains(f.MeasureTypes, e.MeasureType) {
		return false
	}
	if len(f.RelevanceScores) > 0 && !slices.Contains(f.RelevanceScores, e.RelevanceScore) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		return strings.Contains(strings.ToLower(e.Summary), q)
	}
	return true
}

// SortByAnnouncement returns a copy of events ordered by announcement date,
// newest first. Events without a date sort last; ties keep input order.
func SortByAnnouncement(events []Event) []Event {
	out := make([]Event, len(events))
	copy(out, events)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].AnnouncementDate, out[j].AnnouncementDate
		if a == "" || b == "" {
			return a != "" && b == ""
		}
		return a > b
	})
	return out
}

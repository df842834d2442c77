package domain

import "time"

// Report bundles everything a dashboard renders for one batch.
type Report struct {
	GeneratedAt time.Time  `json:"generated_at" yaml:"generated_at"`
	Count       int        `json:"count" yaml:"count"`
	Events      []Event    `json:"events" yaml:"events"`
	Statistics  Statistics `json:"statistics" yaml:"statistics"`
	ImposingGeo []GeoRow   `json:"imposing_geo" yaml:"imposing_geo"`
	TargetedGeo []GeoRow   `json:"targeted_geo" yaml:"targeted_geo"`
}

// BuildReport aggregates events normalized from batch. Count is the upstream
// total, which may exceed len(Events) when records were dropped or paged.
func BuildReport(batch RawBatch, events []Event, ref *CountryReference) Report {
	if events == nil {
		events = []Event{}
	}
	return Report{
		GeneratedAt: clock.Now().UTC(),
		Count:       batch.Total(),
		Events:      events,
		Statistics:  Aggregate(events),
		ImposingGeo: AggregateGeo(events, DirectionImposing, ref),
		TargetedGeo: AggregateGeo(events, DirectionTargeted, ref),
	}
}

// Table projects the report's events for display or CSV export.
func (r Report) Table() Table {
	return ToTable(r.Events)
}

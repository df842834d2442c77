package domain

import (
	"math"
	"sort"
)

// unknownMeasureType is the histogram key for events without a measure type.
// A blank measure_type counts here too, not only a missing one.
const unknownMeasureType = "unknown"

// Statistics summarizes a collection of canonical events.
type Statistics struct {
	TotalEvents        int            `json:"total_events" yaml:"total_events"`
	ImposingCountries  []string       `json:"imposing_countries" yaml:"imposing_countries"`
	TargetedCountries  []string       `json:"targeted_countries" yaml:"targeted_countries"`
	MeasureTypes       map[string]int `json:"measure_types" yaml:"measure_types"`
	AvgTariffRate      float64        `json:"avg_tariff_rate" yaml:"avg_tariff_rate"`
	AffectedIndustries map[string]int `json:"affected_industries" yaml:"affected_industries"`
	AffectedProducts   []string       `json:"affected_products" yaml:"affected_products"`
}

// Aggregate computes summary statistics. Absent tariff rates are excluded from
// the average rather than counted as zero; histograms count every occurrence,
// including repeats within one event.
func Aggregate(events []Event) Statistics {
	imposing := make(map[string]struct{})
	targeted := make(map[string]struct{})
	products := make(map[string]struct{})
	stats := Statistics{
		TotalEvents:        len(events),
		MeasureTypes:       make(map[string]int),
		AffectedIndustries: make(map[string]int),
	}

	var rateSum float64
	var rateCount int
	for _, e := range events {
		if e.ImposingCountry.Name != "" {
			imposing[e.ImposingCountry.Name] = struct{}{}
		}
		for _, c := range e.TargetedCountries {
			if c.Name != "" {
				targeted[c.Name] = struct{}{}
			}
		}

		measure := e.MeasureType
		if measure == "" {
			measure = unknownMeasureType
		}
		stats.MeasureTypes[measure]++

		if e.MainTariffRate != nil {
			rateSum += *e.MainTariffRate
			rateCount++
		}

		for _, industry := range e.AffectedIndustries {
			if industry != "" {
				stats.AffectedIndustries[industry]++
			}
		}
		for _, p := range e.AffectedProducts {
			if p != "" {
				products[p] = struct{}{}
			}
		}
	}

	if rateCount > 0 {
		stats.AvgTariffRate = round2(rateSum / float64(rateCount))
	}
	stats.ImposingCountries = sortedKeys(imposing)
	stats.TargetedCountries = sortedKeys(targeted)
	stats.AffectedProducts = sortedKeys(products)
	return stats
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package domain

import (
	"fmt"
	"sort"
)

// Direction selects which side of an event the geo aggregation counts.
type Direction string

const (
	DirectionImposing Direction = "imposing"
	DirectionTargeted Direction = "targeted"
)

// ParseDirection validates a direction name.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case DirectionImposing, DirectionTargeted:
		return d, nil
	default:
		return "", fmt.Errorf("unknown geo direction %q", s)
	}
}

// GeoRow is one territory's event count for choropleth rendering.
type GeoRow struct {
	TerritoryCode string `json:"territory_code" yaml:"territory_code"`
	Count         int    `json:"count" yaml:"count"`
}

// AggregateGeo counts events per alpha-3 territory.
//
// Imposing counts each event once at its imposing code; Targeted counts each
// event once per targeted code. Bloc codes are then expanded so every member
// inherits the bloc's full count, codes are translated to alpha-3, codes
// without an alpha-3 are dropped, and collisions are summed. Rows are ordered
// by count descending, then territory code.
func AggregateGeo(events []Event, dir Direction, ref *CountryReference) []GeoRow {
	raw := make(map[string]int)
	switch dir {
	case DirectionImposing:
		for _, e := range events {
			if code := e.ImposingCountry.Code; code != "" {
				raw[code]++
			}
		}
	case DirectionTargeted:
		for _, e := range events {
			for _, c := range e.TargetedCountries {
				if c.Code != "" {
					raw[c.Code]++
				}
			}
		}
	default:
		panic(fmt.Sprintf("domain: unknown geo direction %q", dir))
	}

	expanded := make(map[string]int, len(raw))
	for code, n := range raw {
		if members := ref.Members(code); members != nil {
			for _, m := range members {
				expanded[m] += n
			}
			continue
		}
		expanded[code] += n
	}

	territories := make(map[string]int, len(expanded))
	for code, n := range expanded {
		a3, ok := ref.ResolveAlpha3(code)
		if !ok {
			continue
		}
		territories[a3] += n
	}

	rows := make([]GeoRow, 0, len(territories))
	for code, n := range territories {
		rows = append(rows, GeoRow{TerritoryCode: code, Count: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].TerritoryCode < rows[j].TerritoryCode
	})
	return rows
}

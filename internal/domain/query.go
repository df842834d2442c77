package domain

// DefaultLookbackHours is the extraction window used when a query sets none.
const DefaultLookbackHours = 24

// Query describes which upstream events to fetch. Empty criteria are not
// sent; a zero Query asks for the last DefaultLookbackHours of tariff events.
type Query struct {
	Hours             int
	ImposingCountries []string // alpha-2 codes
	TargetedCountries []string // alpha-2 codes
	MeasureTypes      []string
	Industries        []string
	MinTariffRate     *float64
	Keywords          []string
}

// LookbackHours returns the extraction window, applying the default.
func (q Query) LookbackHours() int {
	if q.Hours <= 0 {
		return DefaultLookbackHours
	}
	return q.Hours
}

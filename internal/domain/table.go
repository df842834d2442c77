package domain

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Table is a flat, display-oriented projection of events: one row per event,
// one string cell per column. List values are comma-joined, so the projection
// is lossy; aggregation must use the events themselves.
type Table struct {
	Columns []string   `json:"columns" yaml:"columns"`
	Rows    [][]string `json:"rows" yaml:"rows"`
}

type tableColumn struct {
	name  string
	value func(Event) any
}

var tableColumns = []tableColumn{
	{"id", func(e Event) any { return e.ID }},
	{"extraction_date", func(e Event) any { return e.ExtractionDate }},
	{"event_type", func(e Event) any { return e.EventType }},
	{"global_event_type", func(e Event) any { return e.GlobalEventType }},
	{"imposing_country", func(e Event) any { return e.ImposingCountry.Name }},
	{"imposing_country_code", func(e Event) any { return e.ImposingCountry.Code }},
	{"targeted_countries", func(e Event) any { return e.TargetedCountries }},
	{"targeted_country_codes", func(e Event) any { return nonEmpty(e.TargetedCodes()) }},
	{"measure_type", func(e Event) any { return e.MeasureType }},
	{"affected_industries", func(e Event) any { return e.AffectedIndustries }},
	{"affected_products", func(e Event) any { return e.AffectedProducts }},
	{"hs_product_categories", func(e Event) any { return e.HSProductCategories }},
	{"main_tariff_rate", func(e Event) any { return e.MainTariffRate }},
	{"tariff_rates", func(e Event) any { return e.TariffRates }},
	{"announcement_date", func(e Event) any { return e.AnnouncementDate }},
	{"implementation_date", func(e Event) any { return e.ImplementationDate }},
	{"expiration_date", func(e Event) any { return e.ExpirationDate }},
	{"policy_objective", func(e Event) any { return e.PolicyObjective }},
	{"legal_basis", func(e Event) any { return e.LegalBasis }},
	{"relevance_score", func(e Event) any { return e.RelevanceScore }},
	{"summary", func(e Event) any { return e.Summary }},
	{"articles", func(e Event) any { return e.Articles }},
}

// ToTable projects events into a Table. An empty input yields a Table with no
// columns.
func ToTable(events []Event) Table {
	if len(events) == 0 {
		return Table{}
	}
	t := Table{
		Columns: make([]string, len(tableColumns)),
		Rows:    make([][]string, 0, len(events)),
	}
	for i, c := range tableColumns {
		t.Columns[i] = c.name
	}
	for _, e := range events {
		row := make([]string, len(tableColumns))
		for i, c := range tableColumns {
			row[i] = formatCell(c.value(e))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// formatCell renders a column value. Reaching the default case means a column
// was added without teaching the projector its type.
func formatCell(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case *float64:
		if t == nil {
			return ""
		}
		return strconv.FormatFloat(*t, 'f', -1, 64)
	case []string:
		return strings.Join(t, ", ")
	case []Country:
		return joinStrings(t)
	case []Article:
		return joinStrings(t)
	default:
		panic(fmt.Sprintf("domain: table column of unsupported type %T", v))
	}
}

func joinStrings[T fmt.Stringer](items []T) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = item.String()
	}
	return strings.Join(parts, ", ")
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// Column returns the values of the named column. Callers must check ok: an
// empty table has no columns at all.
func (t Table) Column(name string) ([]string, bool) {
	idx := -1
	for i, c := range t.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}
	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		if idx < len(row) {
			values[i] = row[idx]
		}
	}
	return values, true
}

// WriteCSV writes the table with a header row. An empty table writes nothing.
func (t Table) WriteCSV(w io.Writer) error {
	if len(t.Columns) == 0 {
		return nil
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}

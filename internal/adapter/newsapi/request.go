package newsapi

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/tariff-events-etl/internal/domain"
)

// Request is the events search request body.
type Request struct {
	EventType               string         `json:"event_type"`
	AttachArticlesData      bool           `json:"attach_articles_data"`
	AdditionalFilters       map[string]any `json:"additional_filters"`
	AdditionalArticleFields []string       `json:"additional_article_fields,omitempty"`
}

// dateRange is an Elasticsearch-style relative range, e.g. {"gte":"now-24h","lte":"now"}.
type dateRange struct {
	GTE string `json:"gte"`
	LTE string `json:"lte"`
}

type minRange struct {
	GTE float64 `json:"gte"`
}

// BuildRequest translates a query into a request body. Filters with a single
// value are sent as a scalar and filters with several as a list; empty
// filters are omitted.
func BuildRequest(q domain.Query) Request {
	filters := map[string]any{
		"extraction_date": dateRange{GTE: fmt.Sprintf("now-%dh", q.LookbackHours()), LTE: "now"},
	}

	setFilter(filters, "imposing_country_code", q.ImposingCountries)
	setFilter(filters, "targeted_country_codes", q.TargetedCountries)
	setFilter(filters, "measure_type", q.MeasureTypes)
	setFilter(filters, "affected_industries", q.Industries)

	if q.MinTariffRate != nil {
		filters[detailField("main_tariff_rate")] = minRange{GTE: *q.MinTariffRate}
	}
	if keywords := compact(q.Keywords); len(keywords) > 0 {
		filters[detailField("summary")] = strings.Join(keywords, " ")
	}

	return Request{
		EventType:          domain.TariffDetailKey,
		AttachArticlesData: true,
		AdditionalFilters:  filters,
	}
}

func setFilter(filters map[string]any, field string, values []string) {
	values = compact(values)
	switch len(values) {
	case 0:
	case 1:
		filters[detailField(field)] = values[0]
	default:
		filters[detailField(field)] = values
	}
}

func detailField(name string) string {
	return domain.TariffDetailKey + "." + name
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

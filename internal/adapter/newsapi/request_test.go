package newsapi

import (
	"encoding/json"
	"testing"

	"github.com/couchcryptid/tariff-events-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRequest_Defaults(t *testing.T) {
	req := BuildRequest(domain.Query{})

	data, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"event_type": "tariffs_v2",
		"attach_articles_data": true,
		"additional_filters": {"extraction_date": {"gte": "now-24h", "lte": "now"}}
	}`, string(data))
}

func TestBuildRequest_Filters(t *testing.T) {
	minRate := 10.5
	req := BuildRequest(domain.Query{
		Hours:             72,
		ImposingCountries: []string{"US"},
		TargetedCountries: []string{"CN", " ", "EU"},
		MeasureTypes:      []string{"new tariff", "quota"},
		Industries:        []string{"steel"},
		MinTariffRate:     &minRate,
		Keywords:          []string{"steel", "dumping"},
	})

	data, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"event_type": "tariffs_v2",
		"attach_articles_data": true,
		"additional_filters": {
			"extraction_date": {"gte": "now-72h", "lte": "now"},
			"tariffs_v2.imposing_country_code": "US",
			"tariffs_v2.targeted_country_codes": ["CN", "EU"],
			"tariffs_v2.measure_type": ["new tariff", "quota"],
			"tariffs_v2.affected_industries": "steel",
			"tariffs_v2.main_tariff_rate": {"gte": 10.5},
			"tariffs_v2.summary": "steel dumping"
		}
	}`, string(data))
}

func TestBuildRequest_BlankValuesOmitted(t *testing.T) {
	req := BuildRequest(domain.Query{ImposingCountries: []string{""}, Keywords: []string{"  "}})
	assert.NotContains(t, req.AdditionalFilters, "tariffs_v2.imposing_country_code")
	assert.NotContains(t, req.AdditionalFilters, "tariffs_v2.summary")
}

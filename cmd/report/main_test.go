package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var sampleInput = filepath.Join("..", "..", "data", "sample_tariff_events.json")

func runReport(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(append([]string{"-input", sampleInput, "-fixed-clock"}, args...), &stdout, &stderr)
	return stdout.String(), err
}

func TestRun_JSON(t *testing.T) {
	out, err := runReport(t)
	require.NoError(t, err)

	var report struct {
		GeneratedAt string           `json:"generated_at"`
		Count       int              `json:"count"`
		Events      []map[string]any `json:"events"`
		Statistics  struct {
			AvgTariffRate float64 `json:"avg_tariff_rate"`
		} `json:"statistics"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "2024-03-06T00:00:00Z", report.GeneratedAt)
	assert.Equal(t, 6, report.Count)
	assert.Len(t, report.Events, 5)
	assert.InDelta(t, 46.67, report.Statistics.AvgTariffRate, 1e-9)
}

func TestRun_YAML(t *testing.T) {
	out, err := runReport(t, "-format", "yaml")
	require.NoError(t, err)

	var report map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &report))
	assert.Equal(t, 6, report["count"])
	events, ok := report["events"].([]any)
	require.True(t, ok)
	assert.Len(t, events, 5)
}

func TestRun_CSVWithFilter(t *testing.T) {
	out, err := runReport(t, "-format", "csv", "-relevance", "high")
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewBufferString(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "id", records[0][0])
}

func TestRun_Deterministic(t *testing.T) {
	first, err := runReport(t, "-format", "yaml")
	require.NoError(t, err)
	second, err := runReport(t, "-format", "yaml")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown format", []string{"-input", sampleInput, "-format", "xml"}},
		{"missing input", []string{"-input", filepath.Join(t.TempDir(), "absent.json")}},
		{"unknown flag", []string{"-bogus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			assert.Error(t, run(tt.args, &stdout, &stderr))
		})
	}
}

func TestRun_MissingCountryCodesFallsBack(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run([]string{"-input", sampleInput, "-country-codes", filepath.Join(t.TempDir(), "none.csv")}, &stdout, &stderr)
	require.NoError(t, err)
	assert.Contains(t, stderr.String(), "warning")
	assert.Contains(t, stdout.String(), `"count": 6`)
}

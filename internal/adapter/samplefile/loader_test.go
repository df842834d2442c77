package samplefile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/tariff-events-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_BundledSample(t *testing.T) {
	l := NewLoader(filepath.Join("..", "..", "..", "data", "sample_tariff_events.json"))

	batch, err := l.FetchBatch(context.Background(), domain.Query{})
	require.NoError(t, err)
	assert.Len(t, batch.Events, 6)
	assert.Equal(t, 6, batch.Total())
}

func TestLoader_MissingFile(t *testing.T) {
	l := NewLoader(filepath.Join(t.TempDir(), "missing.json"))

	_, err := l.FetchBatch(context.Background(), domain.Query{})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoader_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"events": [`), 0o600))

	_, err := NewLoader(path).FetchBatch(context.Background(), domain.Query{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse sample data")
}

func TestLoader_RereadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"events":[]}`), 0o600))
	l := NewLoader(path)

	batch, err := l.FetchBatch(context.Background(), domain.Query{})
	require.NoError(t, err)
	assert.Empty(t, batch.Events)

	require.NoError(t, os.WriteFile(path, []byte(`{"events":[{"id":"e1"}]}`), 0o600))
	batch, err = l.FetchBatch(context.Background(), domain.Query{})
	require.NoError(t, err)
	assert.Len(t, batch.Events, 1)
}

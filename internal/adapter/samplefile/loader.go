// Package samplefile serves a static batch envelope from disk, used when no
// live events API is configured or the API fails.
package samplefile

import (
	"context"
	"fmt"
	"os"

	"github.com/couchcryptid/tariff-events-etl/internal/domain"
)

// Loader reads a {"events": [...]} JSON file on every fetch, so edits to the
// file are picked up without a restart.
type Loader struct {
	path string
}

// NewLoader creates a Loader for path.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Path returns the file the loader reads.
func (l *Loader) Path() string { return l.path }

// FetchBatch ignores the query; the sample is served as is.
func (l *Loader) FetchBatch(_ context.Context, _ domain.Query) (domain.RawBatch, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return domain.RawBatch{}, fmt.Errorf("read sample data: %w", err)
	}
	batch, err := domain.DecodeBatch(data)
	if err != nil {
		return domain.RawBatch{}, fmt.Errorf("parse sample data %s: %w", l.path, err)
	}
	return batch, nil
}

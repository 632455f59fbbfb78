// Package multi tees classification records into several sinks, such as
// stdout plus an NDJSON file for `taxon classify --tee`.
package multi

import (
	"context"
	"errors"

	"github.com/crimson-sun/taxon/internal/model"
	"github.com/crimson-sun/taxon/internal/output"
)

// Multi hands every record to each sink in the order given.
type Multi struct {
	sinks []output.Output
}

// New returns a Multi over sinks.
func New(sinks ...output.Output) *Multi {
	return &Multi{sinks: sinks}
}

// Write passes rec to all sinks. A sink error is reported after the
// remaining sinks have seen the record.
func (m *Multi) Write(ctx context.Context, rec model.Record) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Write(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close flushes and closes every sink, joining their errors.
func (m *Multi) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

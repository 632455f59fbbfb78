package output

import (
	"context"

	"github.com/crimson-sun/taxon/internal/model"
)

// Output defines the interface for prediction record destinations.
type Output interface {
	Write(ctx context.Context, rec model.Record) error
	Close() error
}

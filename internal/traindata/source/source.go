// Package source reads raw stop rows from the supported extract formats.
package source

import (
	"context"

	"github.com/CO2mega/12306router/pkg/traindata/models"
)

// Reader streams raw stop rows in source order. Row order matters: the
// store resolves duplicates in favor of the earliest row it sees.
type Reader interface {
	ReadStops(ctx context.Context, fn func(models.RawStopRecord) error) error
}

// Slice is an in-memory Reader, used by tests and the enrichment pass.
type Slice []models.RawStopRecord

func (s Slice) ReadStops(ctx context.Context, fn func(models.RawStopRecord) error) error {
	for _, rec := range s {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return nil
}

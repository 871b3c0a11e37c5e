package fxrate

import "context"

// Repository defines persistence for the append-only fx_rates table.
type Repository interface {
	// Append stores a sample. Appending a bit-identical sample is a no-op,
	// enforced by the store's uniqueness constraint.
	Append(ctx context.Context, sample *Sample) error

	// ListAscending returns all samples ordered by observed_at then
	// insertion order, suitable for rebuilding an in-memory registry.
	ListAscending(ctx context.Context) ([]*Sample, error)
}

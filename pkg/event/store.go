package event

import (
	"context"
)

// Store persists Event records.
type Store interface {
	// Insert persists a new event. Zero-valued identifier and audit fields
	// are filled in (generated id, current timestamps, system actor) before
	// the row is written.
	Insert(ctx context.Context, e *Event) error

	// Get retrieves one event by id, or ErrNotFound.
	Get(ctx context.Context, id string) (*Event, error)

	// List returns every event matching the filter, in insertion order.
	List(ctx context.Context, f Filter) ([]*Event, error)

	// Truncate removes all events. Administrative use only; immediate and
	// non-cancelable.
	Truncate(ctx context.Context) error
}

package learning

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_store.go -package=mocks triage-kb/internal/learning Store

import "context"

// Store is the append-only record of feedback events.
//
// Appends are serialized relative to each other but must never block search,
// which does not touch the store. Iteration is restartable and yields events
// oldest first; implementations skip malformed records rather than aborting,
// favoring availability of the bulk of history over strict validation.
type Store interface {
	// Append writes one event. It fails only when the underlying medium is
	// unwritable; the caller decides whether to surface or swallow that.
	Append(ctx context.Context, ev Event) error
	// ForEach calls fn for every stored event in order. An error from fn
	// stops the iteration and is returned as is.
	ForEach(ctx context.Context, fn func(Event) error) error
	// Reset clears the whole log. Administrative, out of the normal flow.
	Reset(ctx context.Context) error
}

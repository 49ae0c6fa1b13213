package order

import "context"

// Store is the durable home of Order aggregates with optimistic
// concurrency control. Implementations must guarantee that of two Commit
// calls racing on the same expected version, exactly one persists and the
// other fails with *VersionConflictError.
type Store interface {
	// Get returns the aggregate and its current version (on the Order).
	// Returns ErrNotFound when absent.
	Get(ctx context.Context, id string) (*Order, error)

	// Create persists a new aggregate at version 0. The order must already
	// carry its id and pass Validate.
	Create(ctx context.Context, o *Order) error

	// Commit applies mutate to a copy of the stored aggregate, re-validates
	// it with ValidateMutation, and persists it with version
	// expectedVersion+1, provided the stored version still equals
	// expectedVersion. On a stale version it fails with
	// *VersionConflictError and applies nothing. Errors returned by mutate
	// pass through unwrapped so callers can match them with errors.As.
	Commit(ctx context.Context, id string, expectedVersion int64, mutate func(*Order) error) (*Order, error)

	// Delete removes an unpaid aggregate, subject to the same version
	// check. Fails with ErrPaidOrderImmutable when the order is paid.
	Delete(ctx context.Context, id string, expectedVersion int64) error
}

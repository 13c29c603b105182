package reconcile

import "context"

// Adapter connects the engine to a concrete membership model (e.g. book lists).
// It is both the read side (targets of a partition) and the write side (single-target
// membership updates) so a unit of work can bind both to the same transaction.
type Adapter interface {
	// Name returns the unique name of this adapter (e.g. "lists").
	Name() string

	// LoadTargets returns every target of partition owned by owner.
	LoadTargets(ctx context.Context, partition, owner string) ([]Target, error)

	// ApplyMembership adds and removes member keys on a single target owned by owner.
	// Implementations must be idempotent for repeated identical input.
	ApplyMembership(ctx context.Context, partition, owner, key string, add, remove []string) error
}

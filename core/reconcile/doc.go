// Package reconcile moves a single member (a book key) across many targets (lists)
// of one owner in a single logical operation.
//
// # Architecture
//
//  1. Engine: takes an ordered list of per-partition changes, each a pair of previous
//     and desired target keys, and for each partition plans then applies the minimal
//     set of single-target membership updates.
//
//  2. Adapter: model-specific implementation loading the targets of a partition and
//     applying an add/remove delta to one target. feature/lists provides the adapter
//     for book lists.
//
//  3. UnitOfWork: scopes the whole sequence. Sequential applies each target update on
//     its own (a failure part-way leaves earlier targets updated); Transactional wraps
//     the sequence in a GORM transaction.
//
// # Planning Rules
//
//   - Previous and desired keys are deduplicated independently.
//   - A partition whose previous and desired sets are equal is skipped: no target is
//     loaded and nothing is written.
//   - Removals: previous keys whose target currently holds the member.
//   - Additions: every desired key with an existing target.
//   - Removals are applied before additions; partitions run in the order supplied.
//
// # Usage Example
//
//	engine := reconcile.NewEngine(reconcile.NewSequential(adapter), logger)
//	result, err := engine.Reconcile(ctx, reconcile.Request{
//	    Owner:  "user_1",
//	    Member: "bk1",
//	    Changes: []reconcile.Change{
//	        {Partition: "core", Previous: []string{"reading"}, Desired: []string{"completed"}},
//	    },
//	}, reconcile.ReconcileOptions{})
//	changed := result.Changed()
package reconcile

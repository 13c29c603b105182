// Package lists implements per-user book lists and the membership engine behind them.
//
// Lists live in three partitions, each in its own table:
//
//   - core: the canonical set ("To Read", "Reading", "Completed", "DNF") provisioned
//     lazily on first read. Never deleted; only book keys can change.
//   - created: user-defined lists, fully mutable and deletable by their creator.
//   - following: read only.
//
// # Membership
//
// UpdateMembership applies an add/remove delta to one list. Book keys stay unique
// and booksCount always equals len(bookKeys). A key both added and removed is
// dropped from both sides.
//
// BulkUpdateMembership moves one book across many lists in one call. It runs the
// core/reconcile engine through ReconcileAdapter: per type, unchanged key sets are
// skipped without a store read, removals are applied before additions, and types
// are processed in the order given. Lists are written one at a time unless
// Config.TransactionalReconcile is set.
//
// # Access Errors
//
// A missing list, a list owned by someone else and a read-only partition all
// resolve to an empty result. AccessPolicy is the single place that decides this;
// Config.DistinguishAccessErrors turns them into 404, 403 and 422 responses.
//
// # HTTP Endpoints
//
//   - GET    /list/slugs?username=         : List keys of every type.
//   - POST   /list/book                    : Move a book across lists.
//   - POST   /list/create                  : Create a list.
//   - PUT    /list/:type/update/details    : Update name, description or book keys.
//   - PUT    /list/:type/update/books      : Add and remove book keys.
//   - DELETE /list/:type/delete            : Delete a created list.
//   - GET    /list/:type/all?username=     : All lists of a type.
//   - GET    /list/:type?username=&key=    : One list.
package lists

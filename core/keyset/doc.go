// Package keyset provides order-preserving set operations over key slices.
//
// Lists store their members as plain slices (book keys, list keys) rather than maps,
// because order is meaningful to clients. The helpers here give those slices set
// semantics without losing the first-occurrence order.
//
// # Operations
//
//   - UniqueOrdered: deduplicate while keeping first-occurrence order.
//   - SymmetricDifference: keys present in exactly one of two slices.
//   - PartitionByOverlap: cancel keys requested for both addition and removal.
//   - Without: filter out a set of keys.
//
// # Usage
//
//	adds, removes := keyset.PartitionByOverlap([]string{"b1", "b2"}, []string{"b2", "b3"})
//	// adds == ["b1"], removes == ["b3"]
package keyset

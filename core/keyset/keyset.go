package keyset

// UniqueOrdered returns each distinct element of seq exactly once, in the order of its
// first occurrence. The result is never nil.
func UniqueOrdered[K comparable](seq []K) []K {
	seen := make(map[K]struct{}, len(seq))
	out := make([]K, 0, len(seq))
	for _, k := range seq {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// SymmetricDifference returns the elements present in exactly one of a and b.
// Elements only in a come first (in a's order), followed by elements only in b.
// Duplicates within either input are collapsed.
func SymmetricDifference[K comparable](a, b []K) []K {
	inA := toSet(a)
	inB := toSet(b)

	out := make([]K, 0)
	for _, k := range UniqueOrdered(a) {
		if _, ok := inB[k]; !ok {
			out = append(out, k)
		}
	}
	for _, k := range UniqueOrdered(b) {
		if _, ok := inA[k]; !ok {
			out = append(out, k)
		}
	}
	return out
}

// PartitionByOverlap drops every key that appears in both add and remove, since a key
// requested for addition and removal at once is a no-op. Both outputs are deduplicated.
func PartitionByOverlap[K comparable](add, remove []K) (effectiveAdds, effectiveRemoves []K) {
	inAdd := toSet(add)
	inRemove := toSet(remove)

	effectiveAdds = make([]K, 0, len(add))
	for _, k := range UniqueOrdered(add) {
		if _, ok := inRemove[k]; !ok {
			effectiveAdds = append(effectiveAdds, k)
		}
	}

	effectiveRemoves = make([]K, 0, len(remove))
	for _, k := range UniqueOrdered(remove) {
		if _, ok := inAdd[k]; !ok {
			effectiveRemoves = append(effectiveRemoves, k)
		}
	}
	return effectiveAdds, effectiveRemoves
}

// Without returns seq with every element of remove filtered out, preserving order.
func Without[K comparable](seq, remove []K) []K {
	drop := toSet(remove)
	out := make([]K, 0, len(seq))
	for _, k := range seq {
		if _, ok := drop[k]; ok {
			continue
		}
		out = append(out, k)
	}
	return out
}

// Contains reports whether k is an element of seq.
func Contains[K comparable](seq []K, k K) bool {
	for _, v := range seq {
		if v == k {
			return true
		}
	}
	return false
}

// Equal reports whether a and b hold the same distinct elements, ignoring order.
func Equal[K comparable](a, b []K) bool {
	return len(SymmetricDifference(a, b)) == 0
}

func toSet[K comparable](seq []K) map[K]struct{} {
	set := make(map[K]struct{}, len(seq))
	for _, k := range seq {
		set[k] = struct{}{}
	}
	return set
}

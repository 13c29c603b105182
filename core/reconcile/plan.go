package reconcile

import (
	"context"
	"fmt"

	"list-manager/core/keyset"
)

// planPartition computes the minimal actions for one change.
//
// Removals target keys in Previous whose target currently holds the member; targets
// that do not hold it are skipped to avoid a wasted write. Additions target every key
// in Desired, relying on ApplyMembership being idempotent.
func planPartition(ctx context.Context, adapter Adapter, owner, member string, change Change) (PartitionPlan, error) {
	part := PartitionPlan{Partition: change.Partition, Actions: []Action{}}

	previous := keyset.UniqueOrdered(change.Previous)
	desired := keyset.UniqueOrdered(change.Desired)

	if len(keyset.SymmetricDifference(previous, desired)) == 0 {
		part.Skipped = true
		return part, nil
	}

	targets, err := adapter.LoadTargets(ctx, change.Partition, owner)
	if err != nil {
		return part, fmt.Errorf("failed to load %s targets for %s: %w", change.Partition, owner, err)
	}

	index := make(map[string]Target, len(targets))
	for _, t := range targets {
		index[t.Key] = t
	}

	for _, key := range previous {
		t, ok := index[key]
		if !ok {
			part.Missing = append(part.Missing, key)
			continue
		}
		if !keyset.Contains(t.Members, member) {
			continue
		}
		part.Actions = append(part.Actions, Action{
			Type:      ActionRemove,
			Partition: change.Partition,
			Key:       key,
			Reason:    removeReason(key, desired),
		})
	}

	for _, key := range desired {
		if _, ok := index[key]; !ok {
			if !keyset.Contains(part.Missing, key) {
				part.Missing = append(part.Missing, key)
			}
			continue
		}
		part.Actions = append(part.Actions, Action{
			Type:      ActionAdd,
			Partition: change.Partition,
			Key:       key,
			Reason:    "desired",
		})
	}

	return part, nil
}

// applyPartition executes a partition's actions one target at a time, in order.
// It returns how many actions completed.
func applyPartition(ctx context.Context, adapter Adapter, owner, member string, part PartitionPlan) (int, error) {
	executed := 0
	for _, action := range part.Actions {
		if err := ctx.Err(); err != nil {
			return executed, err
		}

		var add, remove []string
		switch action.Type {
		case ActionRemove:
			remove = []string{member}
		case ActionAdd:
			add = []string{member}
		default:
			return executed, fmt.Errorf("unknown action type %s", action.Type)
		}

		if err := adapter.ApplyMembership(ctx, action.Partition, owner, action.Key, add, remove); err != nil {
			return executed, fmt.Errorf("failed to %s %s on %s/%s: %w", action.Type, member, action.Partition, action.Key, err)
		}
		executed++
	}
	return executed, nil
}

func removeReason(key string, desired []string) string {
	if keyset.Contains(desired, key) {
		// Removed then re-added; the net membership is unchanged.
		return "previous (also desired)"
	}
	return "previous"
}

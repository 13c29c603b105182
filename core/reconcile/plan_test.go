package reconcile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPlan_DryRun tests that planning loads targets but never applies.
func TestPlan_DryRun(t *testing.T) {
	adapter := newMockAdapter().
		with("core", "u1", "to-read", "bk1").
		with("core", "u1", "reading").
		with("created", "u1", "favs")

	plan, err := newTestEngine(adapter).Plan(context.Background(), Request{
		Owner:  "u1",
		Member: "bk1",
		Changes: []Change{
			{Partition: "core", Previous: []string{"to-read"}, Desired: []string{"reading"}},
			{Partition: "created", Previous: []string{"favs"}, Desired: []string{"favs"}},
		},
	})

	require.NoError(t, err)
	assert.Empty(t, adapter.applies)
	assert.Equal(t, []string{"core"}, adapter.loads)

	assert.True(t, plan.Changed())
	assert.Equal(t, PlanSummary{
		PartitionsLoaded:  1,
		PartitionsSkipped: 1,
		RemoveActions:     1,
		AddActions:        1,
	}, plan.Summary)

	actions := plan.Actions()
	require.Len(t, actions, 2)
	assert.Equal(t, Action{Type: ActionRemove, Partition: "core", Key: "to-read", Reason: "previous"}, actions[0])
	assert.Equal(t, Action{Type: ActionAdd, Partition: "core", Key: "reading", Reason: "desired"}, actions[1])

	assert.Equal(t, "u1", plan.Owner)
	assert.Equal(t, "bk1", plan.Member)
	assert.True(t, plan.Partitions[1].Skipped)
}

func TestPlanPartition_DeduplicatesInputs(t *testing.T) {
	adapter := newMockAdapter().
		with("created", "u1", "A", "bk1").
		with("created", "u1", "B")

	part, err := planPartition(context.Background(), adapter, "u1", "bk1", Change{
		Partition: "created",
		Previous:  []string{"A", "A"},
		Desired:   []string{"B", "B", "B"},
	})

	require.NoError(t, err)
	require.Len(t, part.Actions, 2)
	assert.Equal(t, ActionRemove, part.Actions[0].Type)
	assert.Equal(t, ActionAdd, part.Actions[1].Type)
}

func TestPlanPartition_RemoveAndReAdd(t *testing.T) {
	adapter := newMockAdapter().
		with("created", "u1", "A", "bk1").
		with("created", "u1", "B")

	part, err := planPartition(context.Background(), adapter, "u1", "bk1", Change{
		Partition: "created",
		Previous:  []string{"A"},
		Desired:   []string{"A", "B"},
	})

	require.NoError(t, err)
	require.Len(t, part.Actions, 3)
	assert.Equal(t, "previous (also desired)", part.Actions[0].Reason)
	assert.Equal(t, "A", part.Actions[1].Key)
	assert.Equal(t, "B", part.Actions[2].Key)
}

func TestPlanPartition_EmptyInputsSkip(t *testing.T) {
	adapter := newMockAdapter()

	part, err := planPartition(context.Background(), adapter, "u1", "bk1", Change{Partition: "created"})

	require.NoError(t, err)
	assert.True(t, part.Skipped)
	assert.Empty(t, adapter.loads)
}

package reconcile

import (
	"context"
	"errors"
	"testing"

	"list-manager/core/keyset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockAdapter is an in-memory adapter keyed by partition, then owner.
type mockAdapter struct {
	targets  map[string]map[string][]*Target
	loads    []string
	applies  []string
	loadErr  error
	applyErr func(key string) error
}

func newMockAdapter() *mockAdapter {
	return &mockAdapter{targets: map[string]map[string][]*Target{}}
}

func (m *mockAdapter) with(partition, owner, key string, members ...string) *mockAdapter {
	if m.targets[partition] == nil {
		m.targets[partition] = map[string][]*Target{}
	}
	m.targets[partition][owner] = append(m.targets[partition][owner], &Target{Key: key, Members: members})
	return m
}

func (m *mockAdapter) members(partition, owner, key string) []string {
	for _, t := range m.targets[partition][owner] {
		if t.Key == key {
			return t.Members
		}
	}
	return nil
}

func (m *mockAdapter) Name() string {
	return "mock"
}

func (m *mockAdapter) LoadTargets(ctx context.Context, partition, owner string) ([]Target, error) {
	m.loads = append(m.loads, partition)
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	var out []Target
	for _, t := range m.targets[partition][owner] {
		out = append(out, Target{Key: t.Key, Members: append([]string(nil), t.Members...)})
	}
	return out, nil
}

func (m *mockAdapter) ApplyMembership(ctx context.Context, partition, owner, key string, add, remove []string) error {
	m.applies = append(m.applies, partition+"/"+key)
	if m.applyErr != nil {
		if err := m.applyErr(key); err != nil {
			return err
		}
	}
	for _, t := range m.targets[partition][owner] {
		if t.Key == key {
			t.Members = keyset.Without(keyset.UniqueOrdered(append(t.Members, add...)), remove)
		}
	}
	return nil
}

func newTestEngine(adapter Adapter) *Engine {
	return NewEngine(NewSequential(adapter), zap.NewNop())
}

func TestReconcile_Move(t *testing.T) {
	adapter := newMockAdapter().
		with("created", "u1", "A", "bk1").
		with("created", "u1", "B")

	result, err := newTestEngine(adapter).Reconcile(context.Background(), Request{
		Owner:  "u1",
		Member: "bk1",
		Changes: []Change{
			{Partition: "created", Previous: []string{"A"}, Desired: []string{"B"}},
		},
	}, ReconcileOptions{})

	require.NoError(t, err)
	assert.True(t, result.Changed())
	assert.Equal(t, 2, result.Executed)
	assert.Empty(t, adapter.members("created", "u1", "A"))
	assert.Equal(t, []string{"bk1"}, adapter.members("created", "u1", "B"))

	// Removal applied before addition.
	assert.Equal(t, []string{"created/A", "created/B"}, adapter.applies)
}

func TestReconcile_NoOpSkipsStore(t *testing.T) {
	adapter := newMockAdapter().with("created", "u1", "A", "bk1")

	result, err := newTestEngine(adapter).Reconcile(context.Background(), Request{
		Owner:  "u1",
		Member: "bk1",
		Changes: []Change{
			{Partition: "created", Previous: []string{"A", "B"}, Desired: []string{"B", "A", "A"}},
		},
	}, ReconcileOptions{})

	require.NoError(t, err)
	assert.False(t, result.Changed())
	assert.Equal(t, 0, result.Executed)
	assert.Empty(t, adapter.loads)
	assert.Empty(t, adapter.applies)
	assert.Equal(t, 1, result.Plan.Summary.PartitionsSkipped)
}

func TestReconcile_SkipsRemovalWhenNotMember(t *testing.T) {
	adapter := newMockAdapter().
		with("core", "u1", "reading").
		with("core", "u1", "completed")

	result, err := newTestEngine(adapter).Reconcile(context.Background(), Request{
		Owner:  "u1",
		Member: "bk1",
		Changes: []Change{
			{Partition: "core", Previous: []string{"reading"}, Desired: []string{"completed"}},
		},
	}, ReconcileOptions{})

	require.NoError(t, err)
	assert.True(t, result.Changed())
	assert.Equal(t, []string{"core/completed"}, adapter.applies)
	assert.Equal(t, 0, result.Plan.Summary.RemoveActions)
	assert.Equal(t, 1, result.Plan.Summary.AddActions)
}

func TestReconcile_PartitionsInOrder(t *testing.T) {
	adapter := newMockAdapter().
		with("core", "u1", "reading", "bk1").
		with("core", "u1", "completed").
		with("created", "u1", "favs").
		with("created", "u1", "scifi", "bk1")

	_, err := newTestEngine(adapter).Reconcile(context.Background(), Request{
		Owner:  "u1",
		Member: "bk1",
		Changes: []Change{
			{Partition: "created", Previous: []string{"scifi"}, Desired: []string{"scifi", "favs"}},
			{Partition: "core", Previous: []string{"reading"}, Desired: []string{"completed"}},
		},
	}, ReconcileOptions{})

	require.NoError(t, err)
	assert.Equal(t, []string{"created", "core"}, adapter.loads)
	assert.Equal(t, []string{
		"created/scifi", // removed (also desired)
		"created/scifi", // re-added
		"created/favs",
		"core/reading",
		"core/completed",
	}, adapter.applies)
	assert.Equal(t, []string{"bk1"}, adapter.members("created", "u1", "scifi"))
	assert.Equal(t, []string{"bk1"}, adapter.members("created", "u1", "favs"))
	assert.Empty(t, adapter.members("core", "u1", "reading"))
	assert.Equal(t, []string{"bk1"}, adapter.members("core", "u1", "completed"))
}

func TestReconcile_MissingTargets(t *testing.T) {
	adapter := newMockAdapter().with("created", "u1", "A")

	result, err := newTestEngine(adapter).Reconcile(context.Background(), Request{
		Owner:  "u1",
		Member: "bk1",
		Changes: []Change{
			{Partition: "created", Previous: []string{"gone"}, Desired: []string{"A", "other"}},
		},
	}, ReconcileOptions{})

	require.NoError(t, err)
	assert.True(t, result.Changed())
	assert.Equal(t, []string{"gone", "other"}, result.Plan.Partitions[0].Missing)
	assert.Equal(t, 2, result.Plan.Summary.MissingTargets)
	assert.Equal(t, []string{"created/A"}, adapter.applies)
}

func TestReconcile_LoadError(t *testing.T) {
	adapter := newMockAdapter()
	adapter.loadErr = errors.New("connection refused")

	result, err := newTestEngine(adapter).Reconcile(context.Background(), Request{
		Owner:   "u1",
		Member:  "bk1",
		Changes: []Change{{Partition: "created", Desired: []string{"A"}}},
	}, ReconcileOptions{})

	require.Error(t, err)
	assert.ErrorContains(t, err, "connection refused")
	assert.NotNil(t, result)
	assert.Equal(t, 0, result.Executed)
}

func TestReconcile_PartialApplication(t *testing.T) {
	adapter := newMockAdapter().
		with("created", "u1", "A", "bk1").
		with("created", "u1", "B").
		with("created", "u1", "C")
	adapter.applyErr = func(key string) error {
		if key == "C" {
			return errors.New("write failed")
		}
		return nil
	}

	result, err := newTestEngine(adapter).Reconcile(context.Background(), Request{
		Owner:   "u1",
		Member:  "bk1",
		Changes: []Change{{Partition: "created", Previous: []string{"A"}, Desired: []string{"B", "C"}}},
	}, ReconcileOptions{})

	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to add bk1 on created/C")
	// Earlier targets stay updated: no cross-target rollback in sequential mode.
	assert.Equal(t, 2, result.Executed)
	assert.Empty(t, adapter.members("created", "u1", "A"))
	assert.Equal(t, []string{"bk1"}, adapter.members("created", "u1", "B"))
}

func TestReconcile_CancelledContext(t *testing.T) {
	adapter := newMockAdapter().with("created", "u1", "A").with("created", "u1", "B")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := newTestEngine(adapter).Reconcile(ctx, Request{
		Owner:   "u1",
		Member:  "bk1",
		Changes: []Change{{Partition: "created", Desired: []string{"A", "B"}}},
	}, ReconcileOptions{})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, result.Executed)
	assert.Empty(t, adapter.applies)
}

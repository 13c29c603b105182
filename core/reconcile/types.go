package reconcile

// Change describes the previous and desired membership of one member (a book key)
// within a single partition (a list type). Keys on both sides are target (list) keys.
type Change struct {
	// Partition selects the group of targets the keys refer to (e.g. "core", "created").
	Partition string `json:"type"`

	// Previous holds the target keys the member was in, as known by the caller.
	Previous []string `json:"previousListKeys"`

	// Desired holds the target keys the member should be in.
	Desired []string `json:"desiredListKeys"`
}

// Request bundles a full reconciliation for one member of one owner.
// Changes are processed in order.
type Request struct {
	// Owner is the key of the user owning every target.
	Owner string

	// Member is the key being moved (a book key).
	Member string

	// Changes holds one entry per partition.
	Changes []Change
}

// Target is the reconciler's view of a single list: its key and current members.
type Target struct {
	Key     string
	Members []string
}

// ActionType represents the type of membership mutation.
type ActionType string

const (
	// ActionRemove removes the member from a target.
	ActionRemove ActionType = "remove"
	// ActionAdd adds the member to a target.
	ActionAdd ActionType = "add"
)

// Action represents a planned membership mutation on one target.
type Action struct {
	// Type specifies the action to perform.
	Type ActionType `json:"type"`

	// Partition is the partition of the target.
	Partition string `json:"partition"`

	// Key is the target key.
	Key string `json:"key"`

	// Reason explains why this action is needed.
	Reason string `json:"reason"`
}

// PartitionPlan holds the outcome of planning a single Change.
type PartitionPlan struct {
	// Partition is the partition this plan covers.
	Partition string `json:"partition"`

	// Skipped is true when previous and desired keys hold the same set,
	// in which case no target was loaded.
	Skipped bool `json:"skipped"`

	// Missing lists requested target keys the owner has no target for.
	Missing []string `json:"missing,omitempty"`

	// Actions contains removals first, then additions.
	Actions []Action `json:"actions"`
}

// ReconcilePlan contains per-partition plans and aggregate counts.
type ReconcilePlan struct {
	Owner      string          `json:"owner"`
	Member     string          `json:"member"`
	Partitions []PartitionPlan `json:"partitions"`
	Summary    PlanSummary     `json:"summary"`
}

// Changed reports whether any partition went past the no-op check.
func (p *ReconcilePlan) Changed() bool {
	return p.Summary.PartitionsLoaded > 0
}

// Actions returns every planned action in execution order.
func (p *ReconcilePlan) Actions() []Action {
	var actions []Action
	for _, part := range p.Partitions {
		actions = append(actions, part.Actions...)
	}
	return actions
}

// PlanSummary provides aggregate statistics for a reconcile plan.
type PlanSummary struct {
	// PartitionsLoaded counts partitions whose targets were loaded.
	PartitionsLoaded int `json:"partitions_loaded"`

	// PartitionsSkipped counts partitions with no effective change.
	PartitionsSkipped int `json:"partitions_skipped"`

	// RemoveActions counts planned removals.
	RemoveActions int `json:"remove_actions"`

	// AddActions counts planned additions.
	AddActions int `json:"add_actions"`

	// MissingTargets counts requested keys with no matching target.
	MissingTargets int `json:"missing_targets"`
}

// ReconcileOptions controls reconcile behavior.
type ReconcileOptions struct {
	// DryRun plans every partition without applying any action.
	DryRun bool
}

// Result is returned by Engine.Reconcile.
type Result struct {
	// Plan is the (possibly partial, on error) plan that was built.
	Plan *ReconcilePlan

	// Executed counts actions applied before returning.
	Executed int
}

// Changed reports whether any reconciliation work was performed (or, in dry-run,
// would have been).
func (r *Result) Changed() bool {
	return r.Plan != nil && r.Plan.Changed()
}

package reconcile

import (
	"context"

	"go.uber.org/zap"
)

// Engine reconciles one member's membership across the targets of an owner.
type Engine struct {
	uow    UnitOfWork
	logger *zap.Logger
}

// NewEngine creates an engine running through the given unit of work.
func NewEngine(uow UnitOfWork, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{uow: uow, logger: logger}
}

// Reconcile plans and applies every change of req, partition by partition in the order
// supplied. Within a partition removals are applied before additions. Partitions whose
// previous and desired key sets match are skipped without touching the adapter.
//
// The returned Result is non-nil even on error, holding the partial plan and the number
// of actions that were applied before the failure.
func (e *Engine) Reconcile(ctx context.Context, req Request, opts ReconcileOptions) (*Result, error) {
	result := &Result{Plan: newPlan(req)}
	var adapterName string

	err := e.uow.Do(ctx, func(ctx context.Context, adapter Adapter) error {
		adapterName = adapter.Name()
		// A retried transaction must not double count.
		result.Plan = newPlan(req)
		result.Executed = 0

		for _, change := range req.Changes {
			part, err := planPartition(ctx, adapter, req.Owner, req.Member, change)
			if err != nil {
				return err
			}
			result.Plan.add(part)

			if opts.DryRun || part.Skipped {
				continue
			}

			n, err := applyPartition(ctx, adapter, req.Owner, req.Member, part)
			result.Executed += n
			if err != nil {
				return err
			}
		}
		return nil
	})

	s := result.Plan.Summary
	fields := []zap.Field{
		zap.String("adapter", adapterName),
		zap.String("owner", req.Owner),
		zap.String("member", req.Member),
		zap.Int("partitions_loaded", s.PartitionsLoaded),
		zap.Int("partitions_skipped", s.PartitionsSkipped),
		zap.Int("remove_actions", s.RemoveActions),
		zap.Int("add_actions", s.AddActions),
		zap.Int("executed", result.Executed),
		zap.Bool("dry_run", opts.DryRun),
	}
	if err != nil {
		e.logger.Error("Reconciliation failed", append(fields, zap.Error(err))...)
		return result, err
	}
	e.logger.Debug("Reconciliation finished", fields...)

	return result, nil
}

// Plan builds the plan for req without applying any action.
func (e *Engine) Plan(ctx context.Context, req Request) (*ReconcilePlan, error) {
	result, err := e.Reconcile(ctx, req, ReconcileOptions{DryRun: true})
	if err != nil {
		return nil, err
	}
	return result.Plan, nil
}

func newPlan(req Request) *ReconcilePlan {
	return &ReconcilePlan{
		Owner:      req.Owner,
		Member:     req.Member,
		Partitions: make([]PartitionPlan, 0, len(req.Changes)),
	}
}

func (p *ReconcilePlan) add(part PartitionPlan) {
	p.Partitions = append(p.Partitions, part)
	if part.Skipped {
		p.Summary.PartitionsSkipped++
		return
	}
	p.Summary.PartitionsLoaded++
	p.Summary.MissingTargets += len(part.Missing)
	for _, a := range part.Actions {
		switch a.Type {
		case ActionRemove:
			p.Summary.RemoveActions++
		case ActionAdd:
			p.Summary.AddActions++
		}
	}
}

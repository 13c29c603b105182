package lists

import (
	"context"
	"fmt"

	"list-manager/core/reconcile"
	"list-manager/feature/lists/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReconcileAdapter exposes the list partitions to the reconcile engine.
// Partitions are list types, targets are lists and members are book keys.
type ReconcileAdapter struct {
	store     Store
	bootstrap *Bootstrapper
}

// NewReconcileAdapter creates an adapter over store. Core lists are read through
// bootstrap so a first reconciliation provisions them.
func NewReconcileAdapter(store Store, bootstrap *Bootstrapper) *ReconcileAdapter {
	return &ReconcileAdapter{store: store, bootstrap: bootstrap}
}

// Name implements reconcile.Adapter.
func (a *ReconcileAdapter) Name() string {
	return "lists"
}

// LoadTargets implements reconcile.Adapter.
func (a *ReconcileAdapter) LoadTargets(ctx context.Context, partition, owner string) ([]reconcile.Target, error) {
	t, err := models.ParseType(partition)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	var records []models.ListRecord
	if t == models.TypeCore && a.bootstrap != nil {
		records, err = a.bootstrap.EnsureCoreLists(ctx, owner)
	} else {
		var repo Repository
		if repo, err = a.store.Repo(t); err == nil {
			records, err = repo.FindByCreator(ctx, owner)
		}
	}
	if err != nil {
		return nil, err
	}

	targets := make([]reconcile.Target, 0, len(records))
	for _, r := range records {
		targets = append(targets, reconcile.Target{Key: r.Key, Members: r.BookKeys})
	}
	return targets, nil
}

// ApplyMembership implements reconcile.Adapter. Access failures never abort a
// reconciliation.
func (a *ReconcileAdapter) ApplyMembership(ctx context.Context, partition, owner, key string, add, remove []string) error {
	t, err := models.ParseType(partition)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	_, err = UpdateMembership(ctx, a.store, owner, t, key, add, remove)
	return AccessPolicy{}.Resolve(err)
}

// NewUnitOfWork returns the unit of work bulk membership updates run in.
// With cfg.TransactionalReconcile every list of one request is committed together;
// otherwise lists are written one by one and a failure leaves earlier lists updated.
func NewUnitOfWork(db *gorm.DB, store Store, bootstrap *Bootstrapper, cfg Config, logger *zap.Logger) reconcile.UnitOfWork {
	if cfg.TransactionalReconcile && db != nil {
		return reconcile.NewTransactional(db, func(tx *gorm.DB) reconcile.Adapter {
			txStore := NewGormStore(tx)
			return NewReconcileAdapter(txStore, NewBootstrapper(txStore[models.TypeCore], cfg.coreListNames(), logger))
		})
	}
	return reconcile.NewSequential(NewReconcileAdapter(store, bootstrap))
}

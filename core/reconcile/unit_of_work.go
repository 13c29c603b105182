package reconcile

import (
	"context"

	"gorm.io/gorm"
)

// UnitOfWork scopes a multi-target reconciliation.
// The engine runs its whole read-plan-apply sequence inside a single Do call.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, adapter Adapter) error) error
}

// Sequential runs the reconciliation directly against the adapter with no
// cross-target atomicity: a failure part-way leaves earlier targets updated.
type Sequential struct {
	Adapter Adapter
}

// NewSequential creates a non-transactional unit of work.
func NewSequential(adapter Adapter) *Sequential {
	return &Sequential{Adapter: adapter}
}

// Do implements UnitOfWork.
func (s *Sequential) Do(ctx context.Context, fn func(ctx context.Context, adapter Adapter) error) error {
	return fn(ctx, s.Adapter)
}

// Transactional runs the reconciliation inside a GORM transaction. Bind builds an
// adapter whose reads and writes go through the transaction handle.
type Transactional struct {
	DB   *gorm.DB
	Bind func(tx *gorm.DB) Adapter
}

// NewTransactional creates a unit of work that commits all targets together or none.
func NewTransactional(db *gorm.DB, bind func(tx *gorm.DB) Adapter) *Transactional {
	return &Transactional{DB: db, Bind: bind}
}

// Do implements UnitOfWork.
func (t *Transactional) Do(ctx context.Context, fn func(ctx context.Context, adapter Adapter) error) error {
	return t.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, t.Bind(tx))
	})
}

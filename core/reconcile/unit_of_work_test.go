package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type membershipRow struct {
	ID     uint `gorm:"primaryKey"`
	Target string
	Member string
}

// rowAdapter stores memberships as rows and rejects writes to a poisoned key.
type rowAdapter struct {
	db     *gorm.DB
	poison string
}

func (a *rowAdapter) Name() string {
	return "rows"
}

func (a *rowAdapter) LoadTargets(ctx context.Context, partition, owner string) ([]Target, error) {
	var rows []membershipRow
	if err := a.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	members := map[string][]string{}
	for _, r := range rows {
		members[r.Target] = append(members[r.Target], r.Member)
	}
	targets := []Target{}
	for _, key := range []string{"A", "B", "C"} {
		targets = append(targets, Target{Key: key, Members: members[key]})
	}
	return targets, nil
}

func (a *rowAdapter) ApplyMembership(ctx context.Context, partition, owner, key string, add, remove []string) error {
	if key == a.poison {
		return errors.New("poisoned")
	}
	for _, m := range remove {
		if err := a.db.WithContext(ctx).Where("target = ? AND member = ?", key, m).Delete(&membershipRow{}).Error; err != nil {
			return err
		}
	}
	for _, m := range add {
		if err := a.db.WithContext(ctx).Create(&membershipRow{Target: key, Member: m}).Error; err != nil {
			return err
		}
	}
	return nil
}

func setupRowsDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&membershipRow{}))
	require.NoError(t, db.Create(&membershipRow{Target: "A", Member: "bk1"}).Error)
	return db
}

func countRows(t *testing.T, db *gorm.DB, target string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&membershipRow{}).Where("target = ?", target).Count(&n).Error)
	return n
}

func TestTransactional_RollsBackOnFailure(t *testing.T) {
	db := setupRowsDB(t)
	uow := NewTransactional(db, func(tx *gorm.DB) Adapter {
		return &rowAdapter{db: tx, poison: "C"}
	})

	result, err := NewEngine(uow, zap.NewNop()).Reconcile(context.Background(), Request{
		Owner:   "u1",
		Member:  "bk1",
		Changes: []Change{{Partition: "created", Previous: []string{"A"}, Desired: []string{"B", "C"}}},
	}, ReconcileOptions{})

	require.Error(t, err)
	assert.Equal(t, 2, result.Executed)
	assert.Equal(t, int64(1), countRows(t, db, "A"))
	assert.Equal(t, int64(0), countRows(t, db, "B"))
}

func TestTransactional_Commits(t *testing.T) {
	db := setupRowsDB(t)
	uow := NewTransactional(db, func(tx *gorm.DB) Adapter {
		return &rowAdapter{db: tx}
	})

	result, err := NewEngine(uow, nil).Reconcile(context.Background(), Request{
		Owner:   "u1",
		Member:  "bk1",
		Changes: []Change{{Partition: "created", Previous: []string{"A"}, Desired: []string{"B", "C"}}},
	}, ReconcileOptions{})

	require.NoError(t, err)
	assert.True(t, result.Changed())
	assert.Equal(t, int64(0), countRows(t, db, "A"))
	assert.Equal(t, int64(1), countRows(t, db, "B"))
	assert.Equal(t, int64(1), countRows(t, db, "C"))
}

func TestSequential_KeepsPartialWrites(t *testing.T) {
	db := setupRowsDB(t)
	uow := NewSequential(&rowAdapter{db: db, poison: "C"})

	_, err := NewEngine(uow, nil).Reconcile(context.Background(), Request{
		Owner:   "u1",
		Member:  "bk1",
		Changes: []Change{{Partition: "created", Previous: []string{"A"}, Desired: []string{"B", "C"}}},
	}, ReconcileOptions{})

	require.Error(t, err)
	assert.Equal(t, int64(0), countRows(t, db, "A"))
	assert.Equal(t, int64(1), countRows(t, db, "B"))
}

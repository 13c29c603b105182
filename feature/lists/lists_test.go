package lists

import (
	"context"
	"sync"
	"testing"

	"list-manager/core/database"
	"list-manager/feature/lists/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupDB opens a private in-memory database with the list tables.
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	return db
}

// countingRepo records every call made to the wrapped repository.
type countingRepo struct {
	Repository
	mu      sync.Mutex
	reads   int
	inserts int
	updates int
	deletes int
}

func (r *countingRepo) FindByCreator(ctx context.Context, creatorKey string) ([]models.ListRecord, error) {
	r.mu.Lock()
	r.reads++
	r.mu.Unlock()
	return r.Repository.FindByCreator(ctx, creatorKey)
}

func (r *countingRepo) FindOne(ctx context.Context, creatorKey, key string) (*models.ListRecord, error) {
	r.mu.Lock()
	r.reads++
	r.mu.Unlock()
	return r.Repository.FindOne(ctx, creatorKey, key)
}

func (r *countingRepo) Insert(ctx context.Context, records []models.ListRecord) ([]models.ListRecord, error) {
	r.mu.Lock()
	r.inserts++
	r.mu.Unlock()
	return r.Repository.Insert(ctx, records)
}

func (r *countingRepo) Update(ctx context.Context, creatorKey, key string, patch Patch) ([]models.ListRecord, error) {
	r.mu.Lock()
	r.updates++
	r.mu.Unlock()
	return r.Repository.Update(ctx, creatorKey, key, patch)
}

func (r *countingRepo) Delete(ctx context.Context, creatorKey, key string) ([]models.DeletedKey, error) {
	r.mu.Lock()
	r.deletes++
	r.mu.Unlock()
	return r.Repository.Delete(ctx, creatorKey, key)
}

func (r *countingRepo) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reads + r.inserts + r.updates + r.deletes
}

func (r *countingRepo) writes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inserts + r.updates + r.deletes
}

// countingStore wraps every partition of a gorm store.
func countingStore(db *gorm.DB) (Store, map[models.Type]*countingRepo) {
	base := NewGormStore(db)
	store := make(Store, len(base))
	counters := make(map[models.Type]*countingRepo, len(base))
	for t, repo := range base {
		c := &countingRepo{Repository: repo}
		store[t] = c
		counters[t] = c
	}
	return store, counters
}

func totalCalls(counters map[models.Type]*countingRepo) int {
	n := 0
	for _, c := range counters {
		n += c.calls()
	}
	return n
}

// seedList inserts a created list owned by creatorKey.
func seedList(t *testing.T, store Store, typ models.Type, creatorKey, key string, bookKeys ...string) {
	t.Helper()
	if bookKeys == nil {
		bookKeys = []string{}
	}
	_, err := store[typ].Insert(context.Background(), []models.ListRecord{{
		Slug:       key,
		Key:        key,
		CreatorKey: creatorKey,
		Source:     models.SourceNative,
		Name:       key,
		BookKeys:   bookKeys,
	}})
	require.NoError(t, err)
}

func findList(t *testing.T, store Store, typ models.Type, creatorKey, key string) *models.ListRecord {
	t.Helper()
	record, err := store[typ].FindOne(context.Background(), creatorKey, key)
	require.NoError(t, err)
	require.NotNil(t, record, "list %s/%s should exist", typ, key)
	return record
}

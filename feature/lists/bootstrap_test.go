package lists

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"list-manager/feature/lists/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func keysOf(records []models.ListRecord) []string {
	keys := make([]string, 0, len(records))
	for _, r := range records {
		keys = append(keys, r.Key)
	}
	return keys
}

func TestCanonicalCoreLists(t *testing.T) {
	records := CanonicalCoreLists([]string{"To Read", "Reading", "Completed", "DNF", "to read", "!!"}, "u1")

	require.Len(t, records, 4)
	assert.Equal(t, []string{"to-read", "reading", "completed", "dnf"}, keysOf(records))
	for _, r := range records {
		assert.Equal(t, r.Slug, r.Key)
		assert.Equal(t, "u1", r.CreatorKey)
		assert.Equal(t, models.SourceNative, r.Source)
		assert.Empty(t, r.BookKeys)
		assert.Zero(t, r.BooksCount)
	}
	assert.Equal(t, "To Read", records[0].Name)
}

func TestEnsureCoreLists_Idempotent(t *testing.T) {
	store, counters := countingStore(setupDB(t))
	b := NewBootstrapper(store[models.TypeCore], nil, zap.NewNop())
	ctx := context.Background()

	first, err := b.EnsureCoreLists(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, first, 4)
	assert.Equal(t, 1, counters[models.TypeCore].writes())

	second, err := b.EnsureCoreLists(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"to-read", "reading", "completed", "dnf"}, keysOf(first))
	assert.Equal(t, keysOf(first), keysOf(second))

	// Second call is a pure read.
	assert.Equal(t, 1, counters[models.TypeCore].writes())
}

func TestEnsureCoreLists_PerUser(t *testing.T) {
	store := NewGormStore(setupDB(t))
	b := NewBootstrapper(store[models.TypeCore], []string{"Wishlist"}, nil)

	u1, err := b.EnsureCoreLists(context.Background(), "u1")
	require.NoError(t, err)
	u2, err := b.EnsureCoreLists(context.Background(), "u2")
	require.NoError(t, err)

	assert.Equal(t, []string{"wishlist"}, keysOf(u1))
	assert.Equal(t, []string{"wishlist"}, keysOf(u2))
	assert.Equal(t, "u2", u2[0].CreatorKey)
}

func TestEnsureCoreLists_Concurrent(t *testing.T) {
	store := NewGormStore(setupDB(t))
	b := NewBootstrapper(store[models.TypeCore], nil, nil)

	var wg sync.WaitGroup
	results := make([][]models.ListRecord, 8)
	errs := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = b.EnsureCoreLists(context.Background(), "u1")
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Len(t, results[i], 4)
	}
	all, err := store[models.TypeCore].FindByCreator(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

// racingRepo simulates another process provisioning between the read and the insert.
type racingRepo struct {
	Repository
	finds int
}

func (r *racingRepo) FindByCreator(ctx context.Context, creatorKey string) ([]models.ListRecord, error) {
	r.finds++
	if r.finds == 1 {
		return []models.ListRecord{}, nil
	}
	return CanonicalCoreLists(DefaultCoreListNames, creatorKey), nil
}

func (r *racingRepo) Insert(ctx context.Context, records []models.ListRecord) ([]models.ListRecord, error) {
	return nil, ErrDuplicate
}

func TestEnsureCoreLists_FoldsDuplicateIntoReread(t *testing.T) {
	repo := &racingRepo{}
	b := NewBootstrapper(repo, nil, nil)

	records, err := b.EnsureCoreLists(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, records, 4)
	assert.Equal(t, 2, repo.finds)
}

type failingRepo struct {
	Repository
}

func (failingRepo) FindByCreator(ctx context.Context, creatorKey string) ([]models.ListRecord, error) {
	return nil, errors.New("connection reset")
}

func TestEnsureCoreLists_PropagatesStoreFailure(t *testing.T) {
	b := NewBootstrapper(failingRepo{}, nil, nil)

	_, err := b.EnsureCoreLists(context.Background(), "u1")
	assert.ErrorContains(t, err, "connection reset")
}

func TestEnsureCoreLists_KeepsConfiguredOrder(t *testing.T) {
	store := NewGormStore(setupDB(t))
	names := []string{"Zebra", "Alpha", "Middle"}
	b := NewBootstrapper(store[models.TypeCore], names, nil)
	ctx := context.Background()

	_, err := b.EnsureCoreLists(ctx, "u1")
	require.NoError(t, err)

	// A fresh bootstrapper has no in-memory state and must read the same order back.
	again, err := NewBootstrapper(store[models.TypeCore], names, nil).EnsureCoreLists(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"zebra", "alpha", "middle"}, keysOf(again))
}

// blockingRepo holds FindByCreator until release is closed, ignoring ctx itself so
// only the bootstrapper decides who observes cancellation.
type blockingRepo struct {
	Repository
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (r *blockingRepo) FindByCreator(ctx context.Context, creatorKey string) ([]models.ListRecord, error) {
	r.once.Do(func() { close(r.entered) })
	<-r.release
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return CanonicalCoreLists(DefaultCoreListNames, creatorKey), nil
}

func TestEnsureCoreLists_CancelledCallerDoesNotFailOthers(t *testing.T) {
	repo := &blockingRepo{entered: make(chan struct{}), release: make(chan struct{})}
	b := NewBootstrapper(repo, nil, nil)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := b.EnsureCoreLists(ctxA, "u1")
		errA <- err
	}()
	<-repo.entered

	type outcome struct {
		records []models.ListRecord
		err     error
	}
	resB := make(chan outcome, 1)
	go func() {
		records, err := b.EnsureCoreLists(context.Background(), "u1")
		resB <- outcome{records, err}
	}()

	cancelA()
	select {
	case err := <-errA:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller kept waiting")
	}

	close(repo.release)
	select {
	case out := <-resB:
		require.NoError(t, out.err)
		assert.Equal(t, []string{"to-read", "reading", "completed", "dnf"}, keysOf(out.records))
	case <-time.After(time.Second):
		t.Fatal("second caller never returned")
	}
}

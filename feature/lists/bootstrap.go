package lists

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"list-manager/core/utils"
	"list-manager/feature/lists/models"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Bootstrapper lazily provisions the canonical core lists of a user.
type Bootstrapper struct {
	repo   Repository
	names  []string
	rank   map[string]int
	logger *zap.Logger
	group  singleflight.Group
}

// NewBootstrapper creates a bootstrapper over the core partition.
func NewBootstrapper(repo Repository, names []string, logger *zap.Logger) *Bootstrapper {
	if len(names) == 0 {
		names = DefaultCoreListNames
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	rank := make(map[string]int, len(names))
	for i, r := range CanonicalCoreLists(names, "") {
		rank[r.Key] = i
	}
	return &Bootstrapper{repo: repo, names: names, rank: rank, logger: logger}
}

// EnsureCoreLists returns the core lists of creatorKey, inserting the canonical set
// first when the user has none. Once a user has core lists this is a pure read.
//
// Lists come back in the order of the configured names on every call; lists whose key
// is not a configured name follow in store order.
//
// Concurrent first reads for the same user in this process share one insert. The
// shared flight is detached from any single caller's cancellation; each caller still
// stops waiting when its own ctx ends. A duplicate-key failure from another process
// is treated as "already provisioned" and answered with a re-read.
func (b *Bootstrapper) EnsureCoreLists(ctx context.Context, creatorKey string) ([]models.ListRecord, error) {
	flight := context.WithoutCancel(ctx)
	ch := b.group.DoChan(creatorKey, func() (any, error) {
		return b.ensure(flight, creatorKey)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		// Callers sharing a flight get their own slice.
		return append([]models.ListRecord(nil), res.Val.([]models.ListRecord)...), nil
	}
}

func (b *Bootstrapper) ensure(ctx context.Context, creatorKey string) ([]models.ListRecord, error) {
	existing, err := b.repo.FindByCreator(ctx, creatorKey)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return b.ordered(existing), nil
	}

	inserted, err := b.repo.Insert(ctx, CanonicalCoreLists(b.names, creatorKey))
	if errors.Is(err, ErrDuplicate) {
		b.logger.Debug("Core lists provisioned concurrently, re-reading",
			zap.String("creator_key", creatorKey))
		existing, err := b.repo.FindByCreator(ctx, creatorKey)
		if err != nil {
			return nil, err
		}
		return b.ordered(existing), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to provision core lists: %w", err)
	}

	b.logger.Info("Provisioned core lists",
		zap.String("creator_key", creatorKey),
		zap.Int("count", len(inserted)))
	return b.ordered(inserted), nil
}

// ordered sorts records by the position of their key in the configured names.
func (b *Bootstrapper) ordered(records []models.ListRecord) []models.ListRecord {
	pos := func(key string) int {
		if i, ok := b.rank[key]; ok {
			return i
		}
		return len(b.rank)
	}
	sort.SliceStable(records, func(i, j int) bool {
		return pos(records[i].Key) < pos(records[j].Key)
	})
	return records
}

// CanonicalCoreLists builds the default core lists for a user. Key and slug both
// derive from the name; names that collapse to the same slug are kept once.
func CanonicalCoreLists(names []string, creatorKey string) []models.ListRecord {
	records := make([]models.ListRecord, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		slug := utils.Slugify(name)
		if slug == "" {
			continue
		}
		if _, ok := seen[slug]; ok {
			continue
		}
		seen[slug] = struct{}{}
		records = append(records, models.ListRecord{
			Slug:       slug,
			Key:        slug,
			CreatorKey: creatorKey,
			Type:       models.TypeCore,
			Source:     models.SourceNative,
			Name:       name,
			BookKeys:   []string{},
			BooksCount: 0,
		})
	}
	return records
}

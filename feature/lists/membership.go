package lists

import (
	"context"

	"list-manager/core/keyset"
	"list-manager/feature/lists/models"
)

// UpdateMembership applies an add/remove delta to the book keys of one list.
//
// Following lists and empty deltas return without touching the store. A key both
// added and removed cancels out. The result keeps first-occurrence order with no
// duplicates and a count equal to its length. Calling it twice with the same
// delta leaves the same state as calling it once.
//
// Access failures are returned as ErrImmutable, ErrListNotFound or ErrForbidden;
// callers pass them through an AccessPolicy.
func UpdateMembership(ctx context.Context, store Store, creatorKey string, t models.Type, key string, addKeys, removeKeys []string) ([]models.ListRecord, error) {
	if t == models.TypeFollowing {
		return []models.ListRecord{}, ErrImmutable
	}
	if len(addKeys) == 0 && len(removeKeys) == 0 {
		return []models.ListRecord{}, nil
	}

	repo, err := store.Repo(t)
	if err != nil {
		return nil, err
	}

	record, err := repo.FindOne(ctx, creatorKey, key)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return []models.ListRecord{}, ErrListNotFound
	}
	if record.CreatorKey != creatorKey {
		return []models.ListRecord{}, ErrForbidden
	}

	adds, removes := keyset.PartitionByOverlap(addKeys, removeKeys)
	merged := keyset.UniqueOrdered(append(append([]string{}, record.BookKeys...), adds...))
	next := keyset.Without(merged, removes)

	return repo.Update(ctx, creatorKey, key, Patch{BookKeys: next})
}

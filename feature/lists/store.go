package lists

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"list-manager/feature/lists/models"

	"gorm.io/gorm"
)

// Repository is the keyed record store of one list partition.
// Every write is scoped by (creator key, list key): a list owned by someone else
// is never touched and yields an empty result.
type Repository interface {
	// FindByCreator returns every list of the creator.
	FindByCreator(ctx context.Context, creatorKey string) ([]models.ListRecord, error)
	// FindOne returns the list or nil when the creator has no list with that key.
	FindOne(ctx context.Context, creatorKey, key string) (*models.ListRecord, error)
	// Insert stores new lists in one batch.
	Insert(ctx context.Context, records []models.ListRecord) ([]models.ListRecord, error)
	// Update applies patch and returns the updated list, or nothing when no row matched.
	Update(ctx context.Context, creatorKey, key string, patch Patch) ([]models.ListRecord, error)
	// Delete removes the list and returns its key, or nothing when no row matched.
	Delete(ctx context.Context, creatorKey, key string) ([]models.DeletedKey, error)
}

// Patch holds the fields to change. Nil fields are left untouched.
// A non-nil BookKeys also rewrites the cached count.
type Patch struct {
	Name        *string
	Description *string
	BookKeys    []string
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.BookKeys == nil
}

// Store selects the repository of a partition.
type Store map[models.Type]Repository

// Repo returns the repository for t.
func (s Store) Repo(t models.Type) (Repository, error) {
	repo, ok := s[t]
	if !ok {
		return nil, fmt.Errorf("%w: no store for list type %q", ErrInvalid, t)
	}
	return repo, nil
}

// NewGormStore builds a store with one table-bound repository per partition.
func NewGormStore(db *gorm.DB) Store {
	store := make(Store, len(models.Types()))
	for _, t := range models.Types() {
		store[t] = &gormRepository{db: db, typ: t}
	}
	return store
}

// AutoMigrate creates or updates the three list tables.
// The (creator_key, list_key) unique index is named per table since sqlite index
// names are global.
func AutoMigrate(db *gorm.DB) error {
	for _, t := range models.Types() {
		table := t.Table()
		if err := db.Table(table).AutoMigrate(&models.ListRecord{}); err != nil {
			return fmt.Errorf("failed to migrate %s: %w", table, err)
		}

		index := "idx_" + table + "_creator_list_key"
		if db.Migrator().HasIndex(table, index) {
			continue
		}
		stmt := fmt.Sprintf("CREATE UNIQUE INDEX %s ON %s (creator_key, list_key)", index, table)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", index, err)
		}
	}
	return nil
}

type gormRepository struct {
	db  *gorm.DB
	typ models.Type
}

func (r *gormRepository) table(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table(r.typ.Table())
}

func (r *gormRepository) FindByCreator(ctx context.Context, creatorKey string) ([]models.ListRecord, error) {
	var records []models.ListRecord
	err := r.table(ctx).
		Where("creator_key = ?", creatorKey).
		Order("created_at ASC").
		Order("list_key ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load %s lists of %s: %w", r.typ, creatorKey, err)
	}
	return r.tag(records), nil
}

func (r *gormRepository) FindOne(ctx context.Context, creatorKey, key string) (*models.ListRecord, error) {
	var record models.ListRecord
	err := r.table(ctx).
		Where("creator_key = ? AND list_key = ?", creatorKey, key).
		Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s list %s: %w", r.typ, key, err)
	}
	record.Type = r.typ
	return &record, nil
}

func (r *gormRepository) Insert(ctx context.Context, records []models.ListRecord) ([]models.ListRecord, error) {
	if len(records) == 0 {
		return []models.ListRecord{}, nil
	}
	for i := range records {
		if records[i].BookKeys == nil {
			records[i].BookKeys = []string{}
		}
		records[i].BooksCount = len(records[i].BookKeys)
	}

	if err := r.table(ctx).Create(&records).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: %v", ErrDuplicate, err)
		}
		return nil, fmt.Errorf("failed to insert %s lists: %w", r.typ, err)
	}
	return r.tag(records), nil
}

func (r *gormRepository) Update(ctx context.Context, creatorKey, key string, patch Patch) ([]models.ListRecord, error) {
	if patch.IsEmpty() {
		return []models.ListRecord{}, nil
	}

	updates := map[string]any{"updated_at": time.Now()}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.BookKeys != nil {
		encoded, err := json.Marshal(patch.BookKeys)
		if err != nil {
			return nil, fmt.Errorf("failed to encode book keys: %w", err)
		}
		updates["book_keys"] = string(encoded)
		updates["books_count"] = len(patch.BookKeys)
	}

	res := r.table(ctx).
		Where("creator_key = ? AND list_key = ?", creatorKey, key).
		Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update %s list %s: %w", r.typ, key, res.Error)
	}
	if res.RowsAffected == 0 {
		return []models.ListRecord{}, nil
	}

	record, err := r.FindOne(ctx, creatorKey, key)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return []models.ListRecord{}, nil
	}
	return []models.ListRecord{*record}, nil
}

func (r *gormRepository) Delete(ctx context.Context, creatorKey, key string) ([]models.DeletedKey, error) {
	res := r.table(ctx).
		Where("creator_key = ? AND list_key = ?", creatorKey, key).
		Delete(&models.ListRecord{})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to delete %s list %s: %w", r.typ, key, res.Error)
	}
	if res.RowsAffected == 0 {
		return []models.DeletedKey{}, nil
	}
	return []models.DeletedKey{{Key: key}}, nil
}

func (r *gormRepository) tag(records []models.ListRecord) []models.ListRecord {
	if records == nil {
		return []models.ListRecord{}
	}
	for i := range records {
		records[i].Type = r.typ
	}
	return records
}

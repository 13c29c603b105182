package lists

import (
	"context"
	"fmt"

	"list-manager/core/keyset"
	"list-manager/core/reconcile"
	"list-manager/core/utils"
	"list-manager/feature/lists/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreateInput describes a new created list.
type CreateInput struct {
	Key         string
	Name        string
	Description string
	BookKeys    []string
	Source      models.Source
}

// DetailsPatch describes a details update. Nil fields are left untouched.
type DetailsPatch struct {
	Name        *string
	Description *string
	BookKeys    []string
}

// Service handles list operations for a resolved creator key.
type Service struct {
	store     Store
	bootstrap *Bootstrapper
	engine    *reconcile.Engine
	policy    AccessPolicy
	logger    *zap.Logger
	db        *gorm.DB
}

// Option customizes a Service.
type Option func(*Service)

// WithUnitOfWork runs bulk membership updates through uow.
func WithUnitOfWork(uow reconcile.UnitOfWork) Option {
	return func(s *Service) {
		s.engine = reconcile.NewEngine(uow, s.logger)
	}
}

// WithDB lets bulk membership updates run in a transaction on db when
// Config.TransactionalReconcile is set.
func WithDB(db *gorm.DB) Option {
	return func(s *Service) {
		s.db = db
	}
}

// NewService creates a list service over store.
func NewService(store Store, cfg Config, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		store:     store,
		bootstrap: NewBootstrapper(store[models.TypeCore], cfg.coreListNames(), logger),
		policy:    AccessPolicy{Distinguish: cfg.DistinguishAccessErrors},
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = reconcile.NewEngine(NewUnitOfWork(s.db, store, s.bootstrap, cfg, logger), logger)
	}
	return s
}

// Bootstrapper returns the core list bootstrapper shared by the service.
func (s *Service) Bootstrapper() *Bootstrapper {
	return s.bootstrap
}

// GetLists returns every list of a type. Core lists are provisioned on first read.
func (s *Service) GetLists(ctx context.Context, creatorKey string, t models.Type) ([]models.ListRecord, error) {
	if t == models.TypeCore {
		return s.bootstrap.EnsureCoreLists(ctx, creatorKey)
	}
	repo, err := s.store.Repo(t)
	if err != nil {
		return nil, err
	}
	return repo.FindByCreator(ctx, creatorKey)
}

// GetList returns one list, or nil when it does not exist.
func (s *Service) GetList(ctx context.Context, creatorKey string, t models.Type, key string) (*models.ListRecord, error) {
	if t == models.TypeCore {
		if _, err := s.bootstrap.EnsureCoreLists(ctx, creatorKey); err != nil {
			return nil, err
		}
	}
	repo, err := s.store.Repo(t)
	if err != nil {
		return nil, err
	}
	record, err := repo.FindOne(ctx, creatorKey, key)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, s.policy.Resolve(fmt.Errorf("%w: %s/%s", ErrListNotFound, t, key))
	}
	return record, nil
}

// GetListKeys returns a compact overview of every list of the creator, per type.
func (s *Service) GetListKeys(ctx context.Context, creatorKey string) (models.ListKeys, error) {
	keys := models.EmptyListKeys()
	for _, t := range models.Types() {
		records, err := s.GetLists(ctx, creatorKey, t)
		if err != nil {
			return nil, err
		}
		for _, r := range records {
			keys[t] = append(keys[t], r.Summarize())
		}
	}
	return keys, nil
}

// CreateList inserts a created list. The key defaults to the slug of the name.
func (s *Service) CreateList(ctx context.Context, creatorKey string, in CreateInput) ([]models.ListRecord, error) {
	slug := utils.Slugify(in.Name)
	if slug == "" {
		return nil, fmt.Errorf("%w: name %q has no usable characters", ErrInvalid, in.Name)
	}
	key := in.Key
	if key == "" {
		key = slug
	}
	source := in.Source
	if source == "" {
		source = models.SourceNative
	}

	repo, err := s.store.Repo(models.TypeCreated)
	if err != nil {
		return nil, err
	}
	bookKeys := keyset.UniqueOrdered(in.BookKeys)
	return repo.Insert(ctx, []models.ListRecord{{
		Slug:        slug,
		Key:         key,
		CreatorKey:  creatorKey,
		Type:        models.TypeCreated,
		Source:      source,
		Name:        in.Name,
		Description: in.Description,
		BookKeys:    bookKeys,
		BooksCount:  len(bookKeys),
	}})
}

// UpdateListDetails changes the details of a list. Core lists only accept book keys;
// following lists are read only. Key and slug never change.
func (s *Service) UpdateListDetails(ctx context.Context, creatorKey string, t models.Type, key string, in DetailsPatch) ([]models.ListRecord, error) {
	if t == models.TypeFollowing {
		return []models.ListRecord{}, s.policy.Resolve(ErrImmutable)
	}

	patch := Patch{Name: in.Name, Description: in.Description}
	if in.BookKeys != nil {
		patch.BookKeys = keyset.UniqueOrdered(in.BookKeys)
	}
	if t == models.TypeCore {
		if patch.Name != nil || patch.Description != nil {
			s.logger.Debug("Ignoring detail changes on core list",
				zap.String("creator_key", creatorKey),
				zap.String("key", key))
		}
		patch.Name, patch.Description = nil, nil
	}
	if patch.IsEmpty() {
		return []models.ListRecord{}, nil
	}

	repo, err := s.store.Repo(t)
	if err != nil {
		return nil, err
	}
	records, err := repo.Update(ctx, creatorKey, key, patch)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return records, s.policy.Resolve(fmt.Errorf("%w: %s/%s", ErrListNotFound, t, key))
	}
	return records, nil
}

// UpdateListBooks adds and removes book keys on one list.
func (s *Service) UpdateListBooks(ctx context.Context, creatorKey string, t models.Type, key string, addKeys, removeKeys []string) ([]models.ListRecord, error) {
	records, err := UpdateMembership(ctx, s.store, creatorKey, t, key, addKeys, removeKeys)
	if err != nil {
		return []models.ListRecord{}, s.policy.Resolve(err)
	}
	return records, nil
}

// DeleteList removes a created list. Core and following lists cannot be deleted.
// A missing list and a list owned by someone else both yield an empty result.
func (s *Service) DeleteList(ctx context.Context, creatorKey string, t models.Type, key string) ([]models.DeletedKey, error) {
	if t != models.TypeCreated {
		return []models.DeletedKey{}, s.policy.Resolve(ErrImmutable)
	}
	repo, err := s.store.Repo(t)
	if err != nil {
		return nil, err
	}
	deleted, err := repo.Delete(ctx, creatorKey, key)
	if err != nil {
		return nil, err
	}
	if len(deleted) == 0 {
		return deleted, s.policy.Resolve(fmt.Errorf("%w: %s/%s", ErrListNotFound, t, key))
	}
	s.logger.Info("Deleted list", zap.String("creator_key", creatorKey), zap.String("key", key))
	return deleted, nil
}

// BulkUpdateMembership moves one book across lists of several types in one call.
// It reports whether any type had an effective change. Callers needing the new
// state must re-read it.
func (s *Service) BulkUpdateMembership(ctx context.Context, creatorKey, bookKey string, changes []reconcile.Change) (bool, error) {
	if err := validateChanges(changes); err != nil {
		return false, err
	}
	result, err := s.engine.Reconcile(ctx, reconcile.Request{
		Owner:   creatorKey,
		Member:  bookKey,
		Changes: changes,
	}, reconcile.ReconcileOptions{})
	if err != nil {
		return result.Changed(), err
	}
	return result.Changed(), nil
}

// PlanBookMembership returns the actions BulkUpdateMembership would apply.
func (s *Service) PlanBookMembership(ctx context.Context, creatorKey, bookKey string, changes []reconcile.Change) (*reconcile.ReconcilePlan, error) {
	if err := validateChanges(changes); err != nil {
		return nil, err
	}
	return s.engine.Plan(ctx, reconcile.Request{
		Owner:   creatorKey,
		Member:  bookKey,
		Changes: changes,
	})
}

func validateChanges(changes []reconcile.Change) error {
	for _, c := range changes {
		if _, err := models.ParseType(c.Partition); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}
	return nil
}

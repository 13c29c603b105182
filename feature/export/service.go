package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"list-manager/core/storage"
	"list-manager/feature/lists/models"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// ErrNoExport is returned when a user has no stored export.
var ErrNoExport = errors.New("no export found")

const (
	prefix       = "exports"
	objectLayout = "20060102T150405.000000000Z"
	contentType  = "application/json"
)

// ListReader is the read side of the lists feature used by exports.
type ListReader interface {
	GetLists(ctx context.Context, creatorKey string, t models.Type) ([]models.ListRecord, error)
}

// Document is the exported snapshot of every list of one user.
type Document struct {
	CreatorKey string                              `json:"creatorKey"`
	ExportedAt time.Time                           `json:"exportedAt"`
	Lists      map[models.Type][]models.ListRecord `json:"lists"`
}

// Receipt describes a stored export.
type Receipt struct {
	Object     string    `json:"object"`
	Bytes      int64     `json:"bytes"`
	ExportedAt time.Time `json:"exportedAt"`
}

// Service writes list snapshots to object storage.
type Service struct {
	client    storage.Client
	bucket    string
	retention int
	lists     ListReader
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates an export service. A retention below one keeps every export.
func NewService(client storage.Client, bucket string, retention int, lists ListReader, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client:    client,
		bucket:    bucket,
		retention: retention,
		lists:     lists,
		logger:    logger,
		now:       time.Now,
	}
}

// Export snapshots every list of creatorKey and uploads it. Older exports beyond the
// retention are pruned afterwards; a pruning failure is logged, not returned.
func (s *Service) Export(ctx context.Context, creatorKey string) (*Receipt, error) {
	doc := Document{
		CreatorKey: creatorKey,
		ExportedAt: s.now().UTC(),
		Lists:      make(map[models.Type][]models.ListRecord, len(models.Types())),
	}
	for _, t := range models.Types() {
		records, err := s.lists.GetLists(ctx, creatorKey, t)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s lists: %w", t, err)
		}
		doc.Lists[t] = records
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}

	object := objectName(creatorKey, doc.ExportedAt)
	_, err = s.client.PutObject(ctx, s.bucket, object, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload export %s: %w", object, err)
	}

	s.logger.Info("Exported lists",
		zap.String("creator_key", creatorKey),
		zap.String("object", object),
		zap.Int("bytes", len(data)))

	if err := s.prune(ctx, creatorKey); err != nil {
		s.logger.Warn("Failed to prune old exports", zap.String("creator_key", creatorKey), zap.Error(err))
	}

	return &Receipt{Object: object, Bytes: int64(len(data)), ExportedAt: doc.ExportedAt}, nil
}

// ListExports returns the stored exports of creatorKey, newest first.
func (s *Service) ListExports(ctx context.Context, creatorKey string) ([]Receipt, error) {
	// Cancelling stops the listing goroutine when we return before the channel is drained.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	objects := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    userPrefix(creatorKey),
		Recursive: true,
	})

	receipts := []Receipt{}
	for obj := range objects {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list exports: %w", obj.Err)
		}
		at, ok := parseObjectTime(obj.Key)
		if !ok {
			continue
		}
		receipts = append(receipts, Receipt{Object: obj.Key, Bytes: obj.Size, ExportedAt: at})
	}

	sort.Slice(receipts, func(i, j int) bool {
		return receipts[i].ExportedAt.After(receipts[j].ExportedAt)
	})
	return receipts, nil
}

// Latest opens the newest export of creatorKey. The caller closes the reader.
func (s *Service) Latest(ctx context.Context, creatorKey string) (io.ReadCloser, *Receipt, error) {
	receipts, err := s.ListExports(ctx, creatorKey)
	if err != nil {
		return nil, nil, err
	}
	if len(receipts) == 0 {
		return nil, nil, ErrNoExport
	}

	latest := receipts[0]
	reader, err := s.client.GetObject(ctx, s.bucket, latest.Object, minio.GetObjectOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open export %s: %w", latest.Object, err)
	}
	return reader, &latest, nil
}

func (s *Service) prune(ctx context.Context, creatorKey string) error {
	if s.retention < 1 {
		return nil
	}
	receipts, err := s.ListExports(ctx, creatorKey)
	if err != nil {
		return err
	}
	if len(receipts) <= s.retention {
		return nil
	}

	stale := receipts[s.retention:]
	objectsCh := make(chan minio.ObjectInfo, len(stale))
	for _, r := range stale {
		objectsCh <- minio.ObjectInfo{Key: r.Object}
	}
	close(objectsCh)

	var errs []error
	for rErr := range s.client.RemoveObjects(ctx, s.bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		errs = append(errs, fmt.Errorf("%s: %w", rErr.ObjectName, rErr.Err))
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	s.logger.Debug("Pruned old exports", zap.String("creator_key", creatorKey), zap.Int("count", len(stale)))
	return nil
}

func userPrefix(creatorKey string) string {
	return path.Join(prefix, creatorKey) + "/"
}

func objectName(creatorKey string, at time.Time) string {
	return userPrefix(creatorKey) + "lists-" + at.UTC().Format(objectLayout) + ".json"
}

func parseObjectTime(object string) (time.Time, bool) {
	name := path.Base(object)
	if !strings.HasPrefix(name, "lists-") || !strings.HasSuffix(name, ".json") {
		return time.Time{}, false
	}
	raw := strings.TrimSuffix(strings.TrimPrefix(name, "lists-"), ".json")
	at, err := time.Parse(objectLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return at, true
}

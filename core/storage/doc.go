// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind the Client interface, which supports both AWS S3
// and self-hosted MinIO instances. The list export feature writes JSON snapshots of a
// user's lists through it.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider so storage interactions
// can be mocked in unit tests (see core/storage/mocks).
//
// # Operations
//
//   - BucketExists / MakeBucket: used by EnsureBucket before the first upload.
//   - PutObject: uploads an export.
//   - GetObject: retrieves an export as a stream.
//   - ListObjects: lists a user's exports (prefix/recursive).
//   - RemoveObjects: prunes exports beyond the retention limit.
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	err = storage.EnsureBucket(ctx, client, "lists", "")
package storage

// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import "context"

// CollectionStorage is the durable key-value boundary the report store
// persists its serialized collection through. Every stored value carries a
// revision that increases on each write, so that processes sharing one
// storage never overwrite each other's changes.
type CollectionStorage interface {
	// Get returns the bytes stored under key and their revision.
	// Returns domainerror.ErrStorageKeyNotFound when nothing is stored.
	Get(ctx context.Context, key string) ([]byte, int64, error)

	// Put stores value under key if the stored revision still equals
	// expected, where 0 means nothing may be stored yet. It returns the new
	// revision, or domainerror.ErrStorageConflict when the revision moved.
	Put(ctx context.Context, key string, value []byte, expected int64) (int64, error)
}

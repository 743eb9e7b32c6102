// Package metastore is the metadata-store collaborator: a namespaced
// key/value store of whole JSON documents scoped to one app installation.
//
// Values are read-modify-written as whole documents with no version token
// and no locking. Two concurrent writers to the same key race and the last
// write wins at whole-document granularity. That is the accepted contract
// of the upstream store, not something this package papers over.
package metastore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Read when no document exists under the key.
var ErrNotFound = errors.New("metastore: document not found")

// Store is the minimal contract the engine needs from the metadata store.
// Implementations must be safe for concurrent use.
type Store interface {
	// Read returns the document stored under namespace/key, or ErrNotFound.
	Read(ctx context.Context, namespace, key string) ([]byte, error)

	// Write stores the document wholesale, replacing any previous value.
	Write(ctx context.Context, namespace, key string, value []byte) error

	// WriteExpiring stores the document with an expiry after which the
	// backing store may garbage-collect it.
	WriteExpiring(ctx context.Context, namespace, key string, value []byte, expireAt time.Time) error

	// Delete removes the document. Deleting a missing key is not an error.
	Delete(ctx context.Context, namespace, key string) error

	// List returns all documents in a namespace, keyed by key.
	List(ctx context.Context, namespace string) (map[string][]byte, error)
}

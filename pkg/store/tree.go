// Package store implements the Typed Tree (TT): a wrapper around one
// ordered, byte-keyed embedded tree (go.etcd.io/bbolt, the Go analogue of
// sled) that offers per-KeySpace typed operations with an optional
// durability flush.
package store

import (
	"sync"
	"time"

	"go.etcd.io/bbolt"

	"github.com/latticedb/lattice/internal/invariant"
	"github.com/latticedb/lattice/internal/xerrors"
	"github.com/latticedb/lattice/pkg/keyspace"
)

// Options configure Open.
type Options struct {
	// Sync controls whether explicit flush requests are honored at all. A
	// disabled sync flag makes every flush request a no-op, so tests where
	// fsync latency dominates can disable it globally without touching call
	// sites.
	Sync bool
	// OpenTimeout bounds how long Open waits to acquire the tree's file
	// lock. Zero means bbolt's default (block forever).
	OpenTimeout time.Duration
	// RequireTestPrefix, when set, panics via invariant.Precondition unless
	// name begins with "test-". This is a build-time safeguard for test
	// trees only; production code must guarantee unique names another way
	// (e.g. one tree per configured data directory).
	RequireTestPrefix bool
}

// TypedTree wraps one bbolt database file shared by every KeySpace opened
// against it. Safe for concurrent use: mu serializes the NoSync toggle with
// the write transaction it guards (bbolt itself serializes writers, but the
// toggle-then-commit sequence must be atomic with respect to concurrent
// callers of the same tree).
type TypedTree struct {
	name string
	sync bool
	db   *bbolt.DB
	mu   sync.Mutex
}

// Open opens (creating if absent) the bbolt file at path as a Typed Tree
// named name, living for the process per spec.
func Open(name, path string, opts Options) (*TypedTree, error) {
	invariant.Precondition(name != "", "tree name must not be empty")
	if opts.RequireTestPrefix {
		invariant.Precondition(len(name) >= 5 && name[:5] == "test-",
			"tree %q must begin with \"test-\" under RequireTestPrefix", name)
	}

	boltOpts := &bbolt.Options{Timeout: opts.OpenTimeout}
	db, err := bbolt.Open(path, 0o600, boltOpts)
	if err != nil {
		return nil, xerrors.StoreDamaged(name, "", "open", err)
	}
	db.NoSync = !opts.Sync

	return &TypedTree{name: name, sync: opts.Sync, db: db}, nil
}

// Close releases the underlying file handle.
func (t *TypedTree) Close() error {
	if err := t.db.Close(); err != nil {
		return xerrors.StoreDamaged(t.name, "", "close", err)
	}
	return nil
}

// Name returns the tree's human-readable name, used in diagnostics.
func (t *TypedTree) Name() string { return t.name }

// For returns a namespaced handle bound to ks, eliminating the per-call
// KeySpace argument for callers that work in one key space at a time.
func For[K any, V any](t *TypedTree, ks keyspace.KeySpace[K, V]) Handle[K, V] {
	return Handle[K, V]{tree: t, ks: ks}
}

// withWrite runs fn inside a bbolt write transaction, honoring the two-level
// flush gate: fsync happens iff (flush && t.sync). append/appendValues pass
// flush=true unconditionally, giving them an unconditional fsync whenever
// sync=true, per spec.
func (t *TypedTree) withWrite(flush bool, fn func(tx *bbolt.Tx) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.db.NoSync = !(flush && t.sync)
	return t.db.Update(fn)
}

func (t *TypedTree) withRead(fn func(tx *bbolt.Tx) error) error {
	return t.db.View(fn)
}

func bucket(tx *bbolt.Tx, name string) (*bbolt.Bucket, error) {
	return tx.CreateBucketIfNotExists([]byte(name))
}

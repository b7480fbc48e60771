package store

import "github.com/latticedb/lattice/pkg/keyspace"

// Handle is a namespaced borrow of a TypedTree restricted to one KeySpace.
// It exists purely to eliminate the per-call KeySpace argument: every
// method is a one-line forward to the corresponding package-level op. It
// carries no state beyond the tree and key space it was built from, so it
// cannot accidentally mix key spaces within one logical call chain.
type Handle[K any, V any] struct {
	tree *TypedTree
	ks   keyspace.KeySpace[K, V]
}

func (h Handle[K, V]) ContainsKey(key K) (bool, error) {
	return ContainsKey(h.tree, h.ks, key)
}

func (h Handle[K, V]) Get(key K) (V, bool, error) {
	return Get(h.tree, h.ks, key)
}

func (h Handle[K, V]) Last() (K, V, bool, error) {
	return Last(h.tree, h.ks)
}

func (h Handle[K, V]) Insert(key K, value V, flush bool) (V, bool, error) {
	return Insert(h.tree, h.ks, key, value, flush)
}

func (h Handle[K, V]) Remove(key K, flush bool) (V, bool, error) {
	return Remove(h.tree, h.ks, key, flush)
}

func (h Handle[K, V]) RangeKeys(r keyspace.Range[K]) ([]K, error) {
	return RangeKeys(h.tree, h.ks, r)
}

func (h Handle[K, V]) RangeGet(r keyspace.Range[K]) ([]V, error) {
	return RangeGet(h.tree, h.ks, r)
}

func (h Handle[K, V]) RangeDelete(r keyspace.Range[K], flush bool) error {
	return RangeDelete(h.tree, h.ks, r, flush)
}

func (h Handle[K, V]) Append(pairs []KV[K, V]) error {
	return Append(h.tree, h.ks, pairs)
}

// Name returns the bound key space's diagnostic name.
func (h Handle[K, V]) Name() string { return h.ks.Name }

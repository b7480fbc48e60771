package store

import (
	"bytes"

	"go.etcd.io/bbolt"

	"github.com/latticedb/lattice/internal/xerrors"
	"github.com/latticedb/lattice/pkg/keyspace"
)

// ContainsKey reports whether key exists in ks, without mutation.
func ContainsKey[K any, V any](t *TypedTree, ks keyspace.KeySpace[K, V], key K) (bool, error) {
	raw := ks.EncodeKey(key)
	found := false
	err := t.withRead(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(ks.Name))
		if b == nil {
			return nil
		}
		found = b.Get(raw) != nil
		return nil
	})
	if err != nil {
		return false, xerrors.StoreDamaged(t.name, ks.Name, key, err)
	}
	return found, nil
}

// Get returns the value for key, if present.
func Get[K any, V any](t *TypedTree, ks keyspace.KeySpace[K, V], key K) (V, bool, error) {
	var zero V
	raw := ks.EncodeKey(key)
	var valBytes []byte
	err := t.withRead(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(ks.Name))
		if b == nil {
			return nil
		}
		if v := b.Get(raw); v != nil {
			valBytes = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return zero, false, xerrors.StoreDamaged(t.name, ks.Name, key, err)
	}
	if valBytes == nil {
		return zero, false, nil
	}
	v, err := ks.DecodeValue(valBytes)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

// Last returns the pair with the greatest key, byte-wise, in ks.
func Last[K any, V any](t *TypedTree, ks keyspace.KeySpace[K, V]) (K, V, bool, error) {
	var zeroK K
	var zeroV V
	var keyBytes, valBytes []byte
	err := t.withRead(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(ks.Name))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		k, v := c.Last()
		if k != nil {
			keyBytes = append([]byte(nil), k...)
			valBytes = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return zeroK, zeroV, false, xerrors.StoreDamaged(t.name, ks.Name, "last", err)
	}
	if keyBytes == nil {
		return zeroK, zeroV, false, nil
	}
	k, err := ks.DecodeKey(keyBytes)
	if err != nil {
		return zeroK, zeroV, false, err
	}
	v, err := ks.DecodeValue(valBytes)
	if err != nil {
		return zeroK, zeroV, false, err
	}
	return k, v, true, nil
}

// Insert writes (key, value) into ks, returning the previous value if any.
// flush requests an fsync, honored only when the tree was opened with
// Sync=true.
func Insert[K any, V any](t *TypedTree, ks keyspace.KeySpace[K, V], key K, value V, flush bool) (V, bool, error) {
	var zero V
	raw := ks.EncodeKey(key)
	valBytes, err := ks.EncodeValue(value)
	if err != nil {
		return zero, false, err
	}

	var prevBytes []byte
	err = t.withWrite(flush, func(tx *bbolt.Tx) error {
		b, err := bucket(tx, ks.Name)
		if err != nil {
			return err
		}
		if p := b.Get(raw); p != nil {
			prevBytes = append([]byte(nil), p...)
		}
		return b.Put(raw, valBytes)
	})
	if err != nil {
		return zero, false, xerrors.StoreDamaged(t.name, ks.Name, key, err)
	}
	if prevBytes == nil {
		return zero, false, nil
	}
	prev, err := ks.DecodeValue(prevBytes)
	if err != nil {
		return zero, false, err
	}
	return prev, true, nil
}

// Remove deletes key from ks, returning the previous value if any.
func Remove[K any, V any](t *TypedTree, ks keyspace.KeySpace[K, V], key K, flush bool) (V, bool, error) {
	var zero V
	raw := ks.EncodeKey(key)

	var prevBytes []byte
	err := t.withWrite(flush, func(tx *bbolt.Tx) error {
		b, err := bucket(tx, ks.Name)
		if err != nil {
			return err
		}
		if p := b.Get(raw); p != nil {
			prevBytes = append([]byte(nil), p...)
		}
		return b.Delete(raw)
	})
	if err != nil {
		return zero, false, xerrors.StoreDamaged(t.name, ks.Name, key, err)
	}
	if prevBytes == nil {
		return zero, false, nil
	}
	prev, err := ks.DecodeValue(prevBytes)
	if err != nil {
		return zero, false, err
	}
	return prev, true, nil
}

// inRange reports whether raw key falls within er, evaluated eagerly against
// already-encoded bounds (bounds are encoded once per call, not per key).
func inRange(key []byte, er keyspace.EncodedRange) bool {
	if er.HasStart {
		cmp := bytes.Compare(key, er.Start)
		if cmp < 0 || (cmp == 0 && !er.StartInclusive) {
			return false
		}
	}
	if er.HasEnd {
		cmp := bytes.Compare(key, er.End)
		if cmp > 0 || (cmp == 0 && !er.EndInclusive) {
			return false
		}
	}
	return true
}

// seekStart positions c at the first key >= er.Start (or the first key in
// the bucket, if unbounded), honoring exclusivity on the start bound.
func seekStart(c *bbolt.Cursor, er keyspace.EncodedRange) ([]byte, []byte) {
	if !er.HasStart {
		return c.First()
	}
	k, v := c.Seek(er.Start)
	if k != nil && !er.StartInclusive && bytes.Equal(k, er.Start) {
		k, v = c.Next()
	}
	return k, v
}

// RangeKeys returns keys in r, ascending byte order.
func RangeKeys[K any, V any](t *TypedTree, ks keyspace.KeySpace[K, V], r keyspace.Range[K]) ([]K, error) {
	er := ks.EncodeRange(r)
	var keys []K
	err := t.withRead(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(ks.Name))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, _ := seekStart(c, er); k != nil && inRange(k, er); k, _ = c.Next() {
			dk, err := ks.DecodeKey(k)
			if err != nil {
				return err
			}
			keys = append(keys, dk)
		}
		return nil
	})
	if err != nil {
		return nil, xerrors.StoreDamaged(t.name, ks.Name, "range_keys", err)
	}
	return keys, nil
}

// RangeGet returns values in r, ordered by key ascending.
func RangeGet[K any, V any](t *TypedTree, ks keyspace.KeySpace[K, V], r keyspace.Range[K]) ([]V, error) {
	er := ks.EncodeRange(r)
	var vals []V
	err := t.withRead(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(ks.Name))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := seekStart(c, er); k != nil && inRange(k, er); k, v = c.Next() {
			dv, err := ks.DecodeValue(v)
			if err != nil {
				return err
			}
			vals = append(vals, dv)
		}
		return nil
	})
	if err != nil {
		return nil, xerrors.StoreDamaged(t.name, ks.Name, "range_get", err)
	}
	return vals, nil
}

// RangeDelete atomically deletes every key in r.
func RangeDelete[K any, V any](t *TypedTree, ks keyspace.KeySpace[K, V], r keyspace.Range[K], flush bool) error {
	er := ks.EncodeRange(r)
	err := t.withWrite(flush, func(tx *bbolt.Tx) error {
		b, err := bucket(tx, ks.Name)
		if err != nil {
			return err
		}
		c := b.Cursor()
		var toDelete [][]byte
		for k, _ := seekStart(c, er); k != nil && inRange(k, er); k, _ = c.Next() {
			toDelete = append(toDelete, append([]byte(nil), k...))
		}
		for _, k := range toDelete {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return xerrors.StoreDamaged(t.name, ks.Name, "range_delete", err)
	}
	return nil
}

// Append atomically inserts every (key, value) pair, always fsyncing when
// the tree's Sync flag is enabled, per spec.
func Append[K any, V any](t *TypedTree, ks keyspace.KeySpace[K, V], pairs []KV[K, V]) error {
	err := t.withWrite(true, func(tx *bbolt.Tx) error {
		b, err := bucket(tx, ks.Name)
		if err != nil {
			return err
		}
		for _, p := range pairs {
			valBytes, err := ks.EncodeValue(p.Value)
			if err != nil {
				return err
			}
			if err := b.Put(ks.EncodeKey(p.Key), valBytes); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return xerrors.StoreDamaged(t.name, ks.Name, "append", err)
	}
	return nil
}

// KV is one key/value pair for batched Append.
type KV[K any, V any] struct {
	Key   K
	Value V
}

// AppendValues atomically inserts values whose key is derived via ToKey,
// per the value-carries-key capability.
func AppendValues[K any, V keyspace.Keyed[K]](t *TypedTree, ks keyspace.KeySpace[K, V], values []V) error {
	pairs := make([]KV[K, V], len(values))
	for i, v := range values {
		pairs[i] = KV[K, V]{Key: v.ToKey(), Value: v}
	}
	return Append(t, ks, pairs)
}

// InsertValue inserts a single value whose key is derived via ToKey.
func InsertValue[K any, V keyspace.Keyed[K]](t *TypedTree, ks keyspace.KeySpace[K, V], value V, flush bool) (V, bool, error) {
	return Insert(t, ks, value.ToKey(), value, flush)
}

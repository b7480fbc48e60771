// Package keyspace implements the KeySpace Codec (KSC): a compile-time
// contract binding a logical namespace to a key type, a value type, and the
// serializers that move them to and from ordered bytes.
//
// Go's generics give us the polymorphism the source language modeled with
// per-type trait implementations: a KeySpace[K, V] is monomorphized by the
// compiler per instantiation, same as the original.
package keyspace

import "github.com/latticedb/lattice/internal/xerrors"

// KeyCodec serializes/deserializes a key type with order-preserving bytes:
// for any a < b, Encode(a) < Encode(b) lexicographically.
type KeyCodec[K any] struct {
	Encode func(K) []byte
	Decode func([]byte) (K, error)
}

// ValueCodec serializes/deserializes a value type. Ordering is not required.
type ValueCodec[V any] struct {
	Encode func(V) ([]byte, error)
	Decode func([]byte) (V, error)
}

// KeySpace binds a namespace name to its key and value codecs. It is the
// only thing a Typed Tree method needs to know to operate on one logical
// table of keys and values.
type KeySpace[K any, V any] struct {
	Name string
	Key  KeyCodec[K]
	Val  ValueCodec[V]
}

// EncodeKey serializes k, panicking only if the codec itself is malformed
// (serialization is total: it must never fail for a well-formed K).
func (ks KeySpace[K, V]) EncodeKey(k K) []byte {
	return ks.Key.Encode(k)
}

// DecodeKey deserializes raw key bytes, surfacing corruption as MetaDecode.
func (ks KeySpace[K, V]) DecodeKey(raw []byte) (K, error) {
	k, err := ks.Key.Decode(raw)
	if err != nil {
		var zero K
		return zero, xerrors.Decode(ks.Name, "key", err)
	}
	return k, nil
}

// EncodeValue serializes v.
func (ks KeySpace[K, V]) EncodeValue(v V) ([]byte, error) {
	raw, err := ks.Val.Encode(v)
	if err != nil {
		return nil, xerrors.Decode(ks.Name, "value", err)
	}
	return raw, nil
}

// DecodeValue deserializes raw value bytes, surfacing corruption as MetaDecode.
func (ks KeySpace[K, V]) DecodeValue(raw []byte) (V, error) {
	v, err := ks.Val.Decode(raw)
	if err != nil {
		var zero V
		return zero, xerrors.Decode(ks.Name, "value", err)
	}
	return v, nil
}

// Keyed is the "value carries its key" capability (Design Note §9): a value
// type that can project its own key, enabling append_values/insert_value
// without the caller repeating the key.
type Keyed[K any] interface {
	ToKey() K
}

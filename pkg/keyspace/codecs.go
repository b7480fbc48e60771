package keyspace

import (
	"encoding/binary"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Uint64Key is an order-preserving codec for uint64 keys: big-endian fixed
// width bytes compare the same way the integers do.
var Uint64Key = KeyCodec[uint64]{
	Encode: func(k uint64) []byte {
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, k)
		return buf
	},
	Decode: func(raw []byte) (uint64, error) {
		if len(raw) != 8 {
			return 0, fmt.Errorf("uint64 key: expected 8 bytes, got %d", len(raw))
		}
		return binary.BigEndian.Uint64(raw), nil
	},
}

// StringKey is an order-preserving codec for string keys: a Go string is
// already a byte sequence, so raw UTF-8 bytes compare the same way the
// string does lexicographically.
var StringKey = KeyCodec[string]{
	Encode: func(k string) []byte { return []byte(k) },
	Decode: func(raw []byte) (string, error) { return string(raw), nil },
}

// CBORValue builds a self-describing, backward-compatible value codec for
// any struct type: field additions on the writer side default-initialize on
// an older reader's decode, and vice versa, which is exactly the wire
// contract the catalog RPC surface requires.
func CBORValue[V any]() ValueCodec[V] {
	return ValueCodec[V]{
		Encode: func(v V) ([]byte, error) { return cbor.Marshal(v) },
		Decode: func(raw []byte) (V, error) {
			var v V
			err := cbor.Unmarshal(raw, &v)
			return v, err
		},
	}
}

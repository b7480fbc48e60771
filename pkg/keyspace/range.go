package keyspace

// BoundKind distinguishes the three bound flavors a Range side can take.
type BoundKind int

const (
	Unbounded BoundKind = iota
	Inclusive
	Exclusive
)

// Bound is one side (start or end) of a Range.
type Bound[K any] struct {
	Kind  BoundKind
	Value K // ignored when Kind == Unbounded
}

// Range models RangeBounds<K>: an arbitrary combination of unbounded,
// inclusive, and exclusive bounds on each side.
type Range[K any] struct {
	Start Bound[K]
	End   Bound[K]
}

// All returns the unbounded range over the whole key space.
func All[K any]() Range[K] {
	return Range[K]{}
}

// From returns [from, +inf).
func From[K any](from K) Range[K] {
	return Range[K]{Start: Bound[K]{Kind: Inclusive, Value: from}}
}

// Closed returns [from, to] inclusive on both ends.
func Closed[K any](from, to K) Range[K] {
	return Range[K]{
		Start: Bound[K]{Kind: Inclusive, Value: from},
		End:   Bound[K]{Kind: Inclusive, Value: to},
	}
}

// HalfOpen returns [from, to).
func HalfOpen[K any](from, to K) Range[K] {
	return Range[K]{
		Start: Bound[K]{Kind: Inclusive, Value: from},
		End:   Bound[K]{Kind: Exclusive, Value: to},
	}
}

// EncodedRange is the byte-level projection of a Range[K], faithfully
// modeling the three bound flavors for the underlying ordered store's
// cursor walk. Monotonic with respect to KeyCodec.Encode by construction:
// it calls the same Encode function the key space uses everywhere else.
type EncodedRange struct {
	Start          []byte
	StartInclusive bool
	HasStart       bool
	End            []byte
	EndInclusive   bool
	HasEnd         bool
}

// EncodeRange serializes r using ks's key codec.
func (ks KeySpace[K, V]) EncodeRange(r Range[K]) EncodedRange {
	er := EncodedRange{}
	if r.Start.Kind != Unbounded {
		er.HasStart = true
		er.Start = ks.EncodeKey(r.Start.Value)
		er.StartInclusive = r.Start.Kind == Inclusive
	}
	if r.End.Kind != Unbounded {
		er.HasEnd = true
		er.End = ks.EncodeKey(r.End.Value)
		er.EndInclusive = r.End.Kind == Inclusive
	}
	return er
}

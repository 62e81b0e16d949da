package types

// BloomFilter is a fixed-size probabilistic set: a bit array sized in
// bits plus the hash-lane count used to index it (spec.md §4.2). The
// struct is pure data so it can live in CoordinatorState and be
// serialized without a dependency on the hashing/bit-twiddling logic,
// which lives in package bloom. Bits is a length-prefixed []uint64
// word array, never resized mid-run.
type BloomFilter struct {
	SizeBits  uint32
	HashCount uint32
	Bits      []uint64
}

// words returns the number of uint64 words needed to hold SizeBits.
func (b *BloomFilter) words() int {
	return int((b.SizeBits + 63) / 64)
}

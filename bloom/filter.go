// Package bloom implements the fixed-size Bloom Participation Filter
// spec.md §4.2 describes: witnesses insert per-client participation
// tokens, and the Coordinator scores client health with might_contain.
// The bit array is backed by github.com/bits-and-blooms/bitset (part
// of the pack's luxfi-consensus dependency surface, the natural
// probabilistic-structure workhorse in that corpus), indexed by
// double-hashing a single github.com/zeebo/blake3 256-bit digest of the
// identity (Kirsch-Mitzenmacher).
package bloom

import (
	"encoding/binary"
	"math"

	"github.com/bits-and-blooms/bitset"
	"github.com/zeebo/blake3"

	"github.com/psyche-run/coordinator/common/types"
)

// New allocates a zeroed filter with sizeBits bits and hashCount hash
// lanes. Parameters are fixed for the life of a run; changing them
// requires update_config at a boundary (spec.md §4.2).
func New(sizeBits, hashCount uint32) *types.BloomFilter {
	words := (sizeBits + 63) / 64
	return &types.BloomFilter{
		SizeBits:  sizeBits,
		HashCount: hashCount,
		Bits:      make([]uint64, words),
	}
}

// laneHashes returns the two base hashes used to derive every lane via
// double hashing: h_i(x) = h1(x) + i*h2(x) (mod m).
func laneHashes(identity types.ClientIdentity) (h1, h2 uint64) {
	digest := blake3.Sum256(identity.Bytes())
	h1 = binary.LittleEndian.Uint64(digest[0:8])
	h2 = binary.LittleEndian.Uint64(digest[8:16])
	if h2 == 0 {
		// avoid every lane collapsing onto h1 when h2 happens to be zero.
		h2 = 1
	}
	return h1, h2
}

func bitIndex(f *types.BloomFilter, h1, h2 uint64, lane uint32) uint64 {
	combined := h1 + uint64(lane)*h2
	return combined % uint64(f.SizeBits)
}

// asBitSet adapts a types.BloomFilter's raw word slice to a
// bitset.BitSet view without copying, so insert/might_contain reuse
// the library's word-level bit operations.
func asBitSet(f *types.BloomFilter) *bitset.BitSet {
	return bitset.From(f.Bits)
}

// Insert marks identity as observed in f.
func Insert(f *types.BloomFilter, identity types.ClientIdentity) {
	h1, h2 := laneHashes(identity)
	bs := asBitSet(f)
	for lane := uint32(0); lane < f.HashCount; lane++ {
		bs.Set(uint(bitIndex(f, h1, h2, lane)))
	}
	f.Bits = bs.Bytes()
}

// MightContain reports whether identity may have been inserted into f.
// False positives are possible; false negatives are not.
func MightContain(f *types.BloomFilter, identity types.ClientIdentity) bool {
	h1, h2 := laneHashes(identity)
	bs := asBitSet(f)
	for lane := uint32(0); lane < f.HashCount; lane++ {
		if !bs.Test(uint(bitIndex(f, h1, h2, lane))) {
			return false
		}
	}
	return true
}

// Union ORs every bit of src into dst in place; used to combine
// multiple witnesses' broadcast_bloom filters when checking the
// opportunistic-witness fast-path condition (spec.md §4.1).
func Union(dst *types.BloomFilter, src *types.BloomFilter) {
	dstSet := asBitSet(dst)
	srcSet := asBitSet(src)
	dstSet.InPlaceUnion(srcSet)
	dst.Bits = dstSet.Bytes()
}

// EstimatedFalsePositiveRate returns the standard Bloom filter FPR
// estimate for n inserted elements, used by callers sizing
// bloom_size_bits/bloom_hash_count to keep the rate at or below 1% for
// the expected client count (spec.md §4.2).
func EstimatedFalsePositiveRate(sizeBits, hashCount uint32, n int) float64 {
	if sizeBits == 0 || n == 0 {
		return 0
	}
	k := float64(hashCount)
	m := float64(sizeBits)
	return math.Pow(1-math.Pow(1-1/m, k*float64(n)), k)
}

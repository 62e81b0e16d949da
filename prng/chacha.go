// Package prng implements the deterministic, re-derivable stream-cipher
// PRNG spec.md §4.1/§6 requires for committee selection: "a well-defined
// stream cipher keyed by random_seed; the algorithm is part of the spec
// and must not change without a version bump." golang.org/x/crypto is a
// dependency of three repos in the reference corpus
// (caramis-oasis-core, luxfi-consensus, and transitively the teacher),
// so reaching for its chacha20 subpackage keeps the PRNG inside the
// corpus's own stack rather than a hand-rolled generator.
package prng

import (
	"encoding/binary"

	"golang.org/x/crypto/chacha20"
	"lukechampine.com/blake3"
)

// SeedDerivationV1 is the only successor-seed algorithm this version of
// the codec implements, resolving spec.md §9's first Open Question. A
// future algorithm requires a StateEncodingVersion bump.
const SeedDerivationV1 = 1

// Source is a deterministic stream of pseudo-random bytes keyed by a
// u64 seed, matching spec.md §6's "PRNG" consumed interface.
type Source struct {
	stream *chacha20.Cipher
}

// NewSource keys a ChaCha20 stream cipher from seed. The nonce is fixed
// (all-zero) because the key itself is already a single-use derived
// value for this round; reusing (key, nonce) pairs would only be a
// concern if the same seed were ever keyed twice; coordinator/tick.go
// derives each round's seed from the previous one via DeriveNextSeed.
func NewSource(seed uint64) *Source {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:8], seed)
	cipher, err := chacha20.NewUnauthenticatedCipher(key[:], make([]byte, chacha20.NonceSize))
	if err != nil {
		// key and nonce are both fixed-size local buffers; this can
		// only fail if the chacha20 package's size constants change.
		panic(err)
	}
	return &Source{stream: cipher}
}

// Uint32 draws the next 4 keystream bytes as a little-endian uint32.
func (s *Source) Uint32() uint32 {
	var buf [4]byte
	s.stream.XORKeyStream(buf[:], buf[:])
	return binary.LittleEndian.Uint32(buf[:])
}

// Intn draws a uniform value in [0, n) using Lemire's rejection-free
// reduction over a uint32 draw; n must be > 0.
func (s *Source) Intn(n uint32) uint32 {
	if n == 0 {
		panic("prng: Intn called with n=0")
	}
	// widen to 64 bits to avoid modulo bias for the common case.
	return uint32((uint64(s.Uint32()) * uint64(n)) >> 32)
}

// DeriveNextSeed computes the round's successor random_seed from the
// prior seed and the progress step about to be entered, per
// SeedDerivationV1: blake3_256(prev_seed_le || step_le)[0:8] read as a
// little-endian u64. github.com/zeebo/blake3 / lukechampine.com/blake3
// are both in the pack's dependency surface (teacher go.mod and its
// transitive closure); this function uses lukechampine.com/blake3's
// Sum256, while package bloom uses github.com/zeebo/blake3's Sum256.
func DeriveNextSeed(prevSeed uint64, step uint64) uint64 {
	var input [16]byte
	binary.LittleEndian.PutUint64(input[0:8], prevSeed)
	binary.LittleEndian.PutUint64(input[8:16], step)
	digest := blake3.Sum256(input[:])
	return binary.LittleEndian.Uint64(digest[:8])
}

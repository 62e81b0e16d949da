// Package committee implements deterministic per-round committee
// election: given a random_seed and the active client set, it draws
// witness, verifier and trainer index sets via a ChaCha20-keyed
// Fisher-Yates permutation. Trainers are every non-witness index, so
// verifiers also train. The shape mirrors the teacher's
// hare4/eligibility/oracle.go: a small Config/Opt-built struct wrapping
// a cache of per-round computations, with a narrow exported Select
// entrypoint other packages call once per round.
package committee

import (
	"fmt"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/psyche-run/coordinator/common/types"
	"github.com/psyche-run/coordinator/prng"
)

// cacheSize bounds the permutation LRU. A handful of recent rounds is
// enough to absorb retries/replays without holding unbounded history,
// mirroring oracle.go's activesCache sizing rationale.
const cacheSize = 128

type cacheKey struct {
	seed          uint64
	clientBits    uint32
	witnessCount  uint32
	verifierCount uint32
}

// Selector draws committees for successive rounds. It is safe for
// concurrent use by a single Coordinator goroutine only; like the
// Coordinator core, it is not designed for concurrent callers.
type Selector struct {
	log   *zap.Logger
	cache *lru.Cache[cacheKey, types.Committee]
}

// Opt configures a Selector, mirroring oracle.Opt in the teacher.
type Opt func(*Selector)

// WithLogger attaches a structured logger.
func WithLogger(log *zap.Logger) Opt {
	return func(s *Selector) { s.log = log }
}

// New constructs a Selector with the given options applied.
func New(opts ...Opt) *Selector {
	cache, err := lru.New[cacheKey, types.Committee](cacheSize)
	if err != nil {
		// New only errors on a non-positive size, which cacheSize is not.
		panic(err)
	}
	s := &Selector{log: zap.NewNop(), cache: cache}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Select draws a Committee for the given seed over activeCount clients
// (indices [0, activeCount)), taking witnessCount witnesses and then
// verifierCount verifiers from the front of the permutation; every
// index that is not a witness is a trainer, verifiers included, per
// spec.md §4.1's committee election rule. Results are memoized per
// (seed, activeCount, witnessCount, verifierCount) so re-entrant callers
// (e.g. a witness fast-path recheck) observe the identical committee a
// freshly computed one would produce.
func (s *Selector) Select(seed uint64, activeCount uint32, witnessCount, verifierCount uint32) (types.Committee, error) {
	// witnesses and verifiers may overlap when the committee can't be
	// made disjoint (spec.md §4.1 rule 4's tie-break), but neither role
	// alone may exceed the active client count.
	if witnessCount > activeCount {
		return types.Committee{}, fmt.Errorf("committee: witness_count (%d) exceeds active client count (%d)", witnessCount, activeCount)
	}
	if verifierCount > activeCount {
		return types.Committee{}, fmt.Errorf("committee: verifier_count (%d) exceeds active client count (%d)", verifierCount, activeCount)
	}

	key := cacheKey{seed: seed, clientBits: activeCount, witnessCount: witnessCount, verifierCount: verifierCount}
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}

	perm := permute(seed, activeCount)

	witnesses := append([]types.ClientIndex(nil), perm[:witnessCount]...)

	var verifiers []types.ClientIndex
	if witnessCount+verifierCount <= activeCount {
		verifiers = append([]types.ClientIndex(nil), perm[witnessCount:witnessCount+verifierCount]...)
	} else {
		// tie-break: not enough non-witness clients to give verifiers a
		// disjoint slice, so reuse the tail of the permutation and
		// tolerate overlap with the witness set (spec.md §4.1 rule 4).
		verifiers = append([]types.ClientIndex(nil), perm[activeCount-verifierCount:]...)
	}

	witnessSet := make(map[types.ClientIndex]struct{}, len(witnesses))
	for _, idx := range witnesses {
		witnessSet[idx] = struct{}{}
	}
	trainers := make([]types.ClientIndex, 0, int(activeCount)-len(witnesses))
	for i := types.ClientIndex(0); i < types.ClientIndex(activeCount); i++ {
		if _, isWitness := witnessSet[i]; !isWitness {
			trainers = append(trainers, i)
		}
	}

	result := types.Committee{
		TrainerIndices:  trainers,
		WitnessIndices:  sortIndices(witnesses),
		VerifierIndices: sortIndices(verifiers),
	}
	s.cache.Add(key, result)
	s.log.Debug("committee selected",
		zap.Uint64("seed", seed),
		zap.Uint32("active_count", activeCount),
		zap.Int("trainers", len(trainers)),
		zap.Int("witnesses", len(witnesses)),
		zap.Int("verifiers", len(verifiers)),
	)
	return result, nil
}

// sortIndices returns s sorted ascending, matching spec.md §4.1's
// "sorted(π[...])" index-set construction.
func sortIndices(s []types.ClientIndex) []types.ClientIndex {
	sort.Slice(s, func(i, j int) bool { return s[i] < s[j] })
	return s
}

// permute returns a uniformly random permutation of [0, n) derived
// deterministically from seed via a ChaCha20-keyed Fisher-Yates
// shuffle (inside-out variant), the PRNG spec.md §4.1 requires.
func permute(seed uint64, n uint32) []types.ClientIndex {
	out := make([]types.ClientIndex, n)
	if n == 0 {
		return out
	}
	source := prng.NewSource(seed)
	for i := uint32(0); i < n; i++ {
		j := source.Intn(i + 1)
		out[i] = out[j]
		out[j] = types.ClientIndex(i)
	}
	return out
}

package committee

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/psyche-run/coordinator/common/types"
)

func TestSelectDeterministic(t *testing.T) {
	s := New()
	a, err := s.Select(42, 10, 3, 2)
	require.NoError(t, err)
	b, err := s.Select(42, 10, 3, 2)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestSelectWitnessesDisjointFromTrainers(t *testing.T) {
	s := New()
	c, err := s.Select(7, 20, 4, 3)
	require.NoError(t, err)

	trainerSet := map[types.ClientIndex]bool{}
	for _, idx := range c.TrainerIndices {
		trainerSet[idx] = true
	}
	for _, idx := range c.WitnessIndices {
		require.False(t, trainerSet[idx], "witness index %d must not also be a trainer", idx)
	}
	// trainers = every non-witness index; verifiers also train, so every
	// verifier index must appear among the trainers (spec.md §4.1 rule 5).
	for _, idx := range c.VerifierIndices {
		require.True(t, trainerSet[idx] || containsIndex(c.WitnessIndices, idx),
			"verifier index %d must train or coincide with a witness under tie-break overlap", idx)
	}
	require.Len(t, c.TrainerIndices, 20-len(c.WitnessIndices))
}

func containsIndex(s []types.ClientIndex, target types.ClientIndex) bool {
	for _, idx := range s {
		if idx == target {
			return true
		}
	}
	return false
}

func TestSelectTieBreaksOverlapWhenRolesDontFit(t *testing.T) {
	s := New()
	// witness_count + verifier_count (4) exceeds active_count (3): the
	// verifier slice reuses the tail of the permutation instead of
	// erroring, per spec.md §4.1 rule 4's overlap tie-break.
	c, err := s.Select(1, 3, 2, 2)
	require.NoError(t, err)
	require.Len(t, c.VerifierIndices, 2)
	require.Len(t, c.WitnessIndices, 2)
}

func TestSelectRejectsWitnessCountAboveClientCount(t *testing.T) {
	s := New()
	_, err := s.Select(1, 3, 4, 0)
	require.Error(t, err)
}

func TestSelectDifferentSeedsDiffer(t *testing.T) {
	s := New()
	a, err := s.Select(1, 50, 5, 5)
	require.NoError(t, err)
	b, err := s.Select(2, 50, 5, 5)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

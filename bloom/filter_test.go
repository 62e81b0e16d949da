package bloom

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/psyche-run/coordinator/common/types"
)

func idOf(b byte) types.ClientIdentity {
	var id types.ClientIdentity
	id[0] = b
	return id
}

func TestInsertThenMightContain(t *testing.T) {
	f := New(2048, 4)
	Insert(f, idOf(1))
	require.True(t, MightContain(f, idOf(1)))
}

func TestMightContainNoFalseNegatives(t *testing.T) {
	f := New(4096, 5)
	inserted := make([]types.ClientIdentity, 50)
	for i := range inserted {
		inserted[i] = idOf(byte(i))
		Insert(f, inserted[i])
	}
	for _, id := range inserted {
		require.True(t, MightContain(f, id))
	}
}

func TestUnionCoversBothOperands(t *testing.T) {
	a := New(2048, 4)
	b := New(2048, 4)
	Insert(a, idOf(1))
	Insert(b, idOf(2))

	union := New(2048, 4)
	Union(union, a)
	Union(union, b)

	require.True(t, MightContain(union, idOf(1)))
	require.True(t, MightContain(union, idOf(2)))
}

func TestEstimatedFalsePositiveRateIncreasesWithLoad(t *testing.T) {
	low := EstimatedFalsePositiveRate(4096, 4, 10)
	high := EstimatedFalsePositiveRate(4096, 4, 1000)
	require.Less(t, low, high)
}

func TestEstimatedFalsePositiveRateZeroInputs(t *testing.T) {
	require.Equal(t, 0.0, EstimatedFalsePositiveRate(0, 4, 10))
	require.Equal(t, 0.0, EstimatedFalsePositiveRate(4096, 4, 0))
}

package roundstate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/psyche-run/coordinator/bloom"
	"github.com/psyche-run/coordinator/common/types"
)

func idOf(b byte) types.ClientIdentity {
	var id types.ClientIdentity
	id[0] = b
	return id
}

func newRound(witnessIdx ...types.ClientIndex) *types.Round {
	return &types.Round{
		Height:    1,
		Committee: types.Committee{WitnessIndices: witnessIdx},
	}
}

func proofFor(identity types.ClientIdentity, witnessIdx types.ClientIndex, participants ...types.ClientIdentity) types.WitnessProof {
	pb := bloom.New(2048, 4)
	bb := bloom.New(2048, 4)
	for _, p := range participants {
		bloom.Insert(pb, p)
		bloom.Insert(bb, p)
	}
	return types.WitnessProof{
		WitnessIndex:     witnessIdx,
		Identity:         identity,
		ParticipantBloom: *pb,
		BroadcastBloom:   *bb,
	}
}

func TestAcceptWitnessRejectsNonWitness(t *testing.T) {
	round := newRound(0)
	err := AcceptWitness(round, 5, proofFor(idOf(9), 5))
	require.ErrorIs(t, err, types.ErrNotAWitness)
}

func TestAcceptWitnessRejectsDuplicate(t *testing.T) {
	round := newRound(0, 1)
	require.NoError(t, AcceptWitness(round, 0, proofFor(idOf(1), 0)))
	err := AcceptWitness(round, 1, proofFor(idOf(1), 1))
	require.ErrorIs(t, err, types.ErrDuplicateWitness)
}

func TestHasQuorum(t *testing.T) {
	round := newRound(0, 1, 2)
	require.NoError(t, AcceptWitness(round, 0, proofFor(idOf(1), 0)))
	require.False(t, HasQuorum(round, 2))
	require.NoError(t, AcceptWitness(round, 1, proofFor(idOf(2), 1)))
	require.True(t, HasQuorum(round, 2))
}

func TestOpportunisticCoverage(t *testing.T) {
	round := newRound(0, 1)
	clients := []types.Client{{Identity: idOf(1)}, {Identity: idOf(2)}}

	require.NoError(t, AcceptWitness(round, 0, proofFor(idOf(1), 0, idOf(1))))
	require.False(t, OpportunisticCoverage(round, clients), "only one client covered so far")

	require.NoError(t, AcceptWitness(round, 1, proofFor(idOf(2), 1, idOf(2))))
	require.True(t, OpportunisticCoverage(round, clients), "union of both witnesses covers every active client")
}

func TestScoreHealthAndEviction(t *testing.T) {
	clients := []types.Client{{Identity: idOf(1)}, {Identity: idOf(2)}}
	round := newRound(0, 1, 2)
	require.NoError(t, AcceptWitness(round, 0, proofFor(idOf(1), 0, idOf(1))))
	require.NoError(t, AcceptWitness(round, 1, proofFor(idOf(2), 1, idOf(1))))
	require.NoError(t, AcceptWitness(round, 2, proofFor(idOf(3), 2, idOf(1))))

	ScoreHealth(clients, round)
	require.Equal(t, uint32(3), clients[0].HealthScore)
	require.Equal(t, uint32(0), clients[0].MissedWitnessRounds)
	require.Equal(t, uint32(0), clients[1].HealthScore)
	require.Equal(t, uint32(1), clients[1].MissedWitnessRounds)

	clients[1].MissedWitnessRounds = 2
	evicted := ClientsToEvict(clients, 3)
	require.Empty(t, evicted)

	clients[1].MissedWitnessRounds = 3
	evicted = ClientsToEvict(clients, 3)
	require.Equal(t, []types.ClientIndex{1}, evicted)
}

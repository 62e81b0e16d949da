package coordinator

import (
	"bytes"
	"testing"

	"github.com/spacemeshos/go-scale"
	"github.com/stretchr/testify/require"

	"github.com/psyche-run/coordinator/common/types"
)

func roundTripMessage(t *testing.T, m *Message) *Message {
	t.Helper()
	var buf bytes.Buffer
	_, err := m.EncodeScale(scale.NewEncoder(&buf))
	require.NoError(t, err)

	got := &Message{}
	_, err = got.DecodeScale(scale.NewDecoder(&buf))
	require.NoError(t, err)
	return got
}

func TestMessageRoundTripTick(t *testing.T) {
	m := &Message{Kind: MessageKindTick, NowSeconds: 12345}
	got := roundTripMessage(t, m)
	require.Equal(t, m, got)
}

func TestMessageRoundTripJoinRun(t *testing.T) {
	m := &Message{Kind: MessageKindJoinRun, Identity: idOf(7), AuthorizationToken: []byte("token")}
	got := roundTripMessage(t, m)
	require.Equal(t, m, got)
}

func TestMessageRoundTripSetPaused(t *testing.T) {
	m := &Message{Kind: MessageKindSetPaused, Paused: true}
	got := roundTripMessage(t, m)
	require.Equal(t, m, got)
}

func TestMessageRoundTripWitness(t *testing.T) {
	m := &Message{
		Kind:     MessageKindWitness,
		Identity: idOf(3),
		Proof: types.WitnessProof{
			WitnessIndex:     2,
			ParticipantBloom: types.BloomFilter{SizeBits: 64, HashCount: 2, Bits: []uint64{1, 2}},
			BroadcastBloom:   types.BloomFilter{SizeBits: 64, HashCount: 2, Bits: []uint64{3, 4}},
			Metadata:         types.WitnessMetadata{Step: 10, Evals: []types.EvalResult{}},
		},
	}
	got := roundTripMessage(t, m)
	require.Equal(t, m, got)
}

func TestMessageRoundTripHealthCheck(t *testing.T) {
	m := &Message{Kind: MessageKindHealthCheck, Identity: idOf(1), UnhealthyIDs: []types.ClientIdentity{idOf(2), idOf(3)}}
	got := roundTripMessage(t, m)
	require.Equal(t, m, got)
}

func TestMessageRoundTripFreeCoordinator(t *testing.T) {
	m := &Message{Kind: MessageKindFreeCoordinator}
	got := roundTripMessage(t, m)
	require.Equal(t, m, got)
}

func TestMessageRoundTripSetFutureEpochRates(t *testing.T) {
	m := &Message{Kind: MessageKindSetFutureEpochRates, Schedule: []EpochRate{{FromEpoch: 2, GlobalBatchSizeWarmupTokens: 1 << 10}}}
	got := roundTripMessage(t, m)
	require.Equal(t, m, got)
}

package progress

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/psyche-run/coordinator/common/types"
)

func testCfg() *types.Config {
	return &types.Config{
		RoundsPerEpoch:              2,
		TotalSteps:                  10,
		GlobalBatchSizeStart:        8,
		GlobalBatchSizeEnd:          64,
		GlobalBatchSizeWarmupTokens: 1 << 16,
		MaxSeqLen:                   128,
	}
}

func TestNextAdvancesWithinEpoch(t *testing.T) {
	cfg := testCfg()
	p := types.Progress{Step: 0, RoundInEpoch: 0, Epoch: 0}
	next := Next(cfg, p)
	require.Equal(t, uint64(1), next.Step)
	require.Equal(t, uint32(1), next.RoundInEpoch)
	require.Equal(t, uint32(0), next.Epoch)
}

func TestAdvanceStepOnlyLeavesRoundInEpoch(t *testing.T) {
	p := types.Progress{Step: 4, RoundInEpoch: 1, Epoch: 0}
	next := AdvanceStepOnly(p)
	require.Equal(t, uint64(5), next.Step)
	require.Equal(t, uint32(1), next.RoundInEpoch)
}

func TestCooldownExitResetsRoundInEpochAndBumpsEpoch(t *testing.T) {
	p := types.Progress{Step: 5, RoundInEpoch: 1, Epoch: 0}
	next := CooldownExit(p)
	require.Equal(t, uint64(5), next.Step)
	require.Equal(t, uint32(0), next.RoundInEpoch)
	require.Equal(t, uint32(1), next.Epoch)
}

func TestTerminatedAtTotalSteps(t *testing.T) {
	cfg := testCfg()
	require.False(t, Terminated(cfg, types.Progress{Step: 9}))
	require.True(t, Terminated(cfg, types.Progress{Step: 10}))
}

func TestWillWrapEpoch(t *testing.T) {
	cfg := testCfg()
	require.False(t, WillWrapEpoch(cfg, types.Progress{RoundInEpoch: 0}))
	require.True(t, WillWrapEpoch(cfg, types.Progress{RoundInEpoch: 1}))
}

// TokensAt must never decrease as step increases (spec.md §8 property 6).
func TestTokensAtMonotonic(t *testing.T) {
	cfg := testCfg()
	var prev uint64
	for step := uint64(0); step < 200; step++ {
		tokens := TokensAt(cfg, step)
		require.GreaterOrEqual(t, tokens, prev, "tokens_at must be non-decreasing at step %d", step)
		prev = tokens
	}
}

func TestTokensAtZeroAtStepZero(t *testing.T) {
	cfg := testCfg()
	require.Equal(t, uint64(0), TokensAt(cfg, 0))
}

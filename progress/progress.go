// Package progress implements the pure, I/O-free functions over
// Config and the step/round-in-epoch/epoch counters spec.md §4.3
// describes. Nothing here touches Coordinator state directly; the
// coordinator package calls these helpers and writes the results back.
package progress

import "github.com/psyche-run/coordinator/common/types"

// Next advances progress for a RoundWitness completion that continues
// within the same epoch (spec.md §4.1's "otherwise" row):
// step += 1, round_in_epoch += 1. Callers must check WillWrapEpoch
// first and use AdvanceStepOnly instead when the epoch is ending — the
// round_in_epoch reset and epoch increment are deferred to Cooldown's
// exit (CooldownExit), exactly as the transition table specifies.
func Next(cfg *types.Config, p types.Progress) types.Progress {
	return types.Progress{
		Step:         p.Step + 1,
		RoundInEpoch: p.RoundInEpoch + 1,
		Epoch:        p.Epoch,
	}
}

// AdvanceStepOnly advances only step, for a RoundWitness completion
// that is entering Cooldown (spec.md §4.1's Cooldown-triggering row):
// round_in_epoch is left as-is until CooldownExit resets it.
func AdvanceStepOnly(p types.Progress) types.Progress {
	return types.Progress{
		Step:         p.Step + 1,
		RoundInEpoch: p.RoundInEpoch,
		Epoch:        p.Epoch,
	}
}

// CooldownExit implements the Cooldown -> WaitingForMembers side
// effects from spec.md §4.1: epoch += 1, round_in_epoch = 0.
func CooldownExit(p types.Progress) types.Progress {
	return types.Progress{
		Step:         p.Step,
		RoundInEpoch: 0,
		Epoch:        p.Epoch + 1,
	}
}

// Terminated reports whether progress p has reached the run's
// configured stopping point. The default termination mode is
// step >= total_steps (spec.md §4.1's "default mode stops by
// step >= total_steps").
func Terminated(cfg *types.Config, p types.Progress) bool {
	return p.Step >= cfg.TotalSteps
}

// WillTerminateAfterThisRound reports whether completing the round in
// progress (before Next is called) would cross the termination
// threshold, mirroring spec.md §4.1's "progress.step + 1 >= total_steps"
// RoundWitness-completion rule.
func WillTerminateAfterThisRound(cfg *types.Config, p types.Progress) bool {
	return p.Step+1 >= cfg.TotalSteps
}

// WillWrapEpoch reports whether completing the round in progress would
// cross into a new epoch, mirroring spec.md §4.1's
// "round_in_epoch + 1 == rounds_per_epoch" rule.
func WillWrapEpoch(cfg *types.Config, p types.Progress) bool {
	return p.RoundInEpoch+1 >= cfg.RoundsPerEpoch
}

// warmupSteps returns k_warm, the number of steps the linear warmup
// trapezoid spans, floor(T / (S * (B0+B1)/2)), per spec.md §4.1.
func warmupSteps(cfg *types.Config) uint64 {
	avgBatch := float64(cfg.GlobalBatchSizeStart+cfg.GlobalBatchSizeEnd) / 2
	denom := float64(cfg.MaxSeqLen) * avgBatch
	if denom == 0 {
		return 0
	}
	return uint64(float64(cfg.GlobalBatchSizeWarmupTokens) / denom)
}

// TokensAt computes tokens_at(step): the piecewise sum of a trapezoid
// (linear warmup over k_warm steps) then a rectangle at B1, per
// spec.md §4.1. It is monotonically non-decreasing in step, the
// invariant property 6 in spec.md §8 requires.
func TokensAt(cfg *types.Config, step uint64) uint64 {
	kWarm := warmupSteps(cfg)
	s := float64(cfg.MaxSeqLen)
	b0 := float64(cfg.GlobalBatchSizeStart)
	b1 := float64(cfg.GlobalBatchSizeEnd)

	if step <= kWarm {
		if kWarm == 0 {
			return 0
		}
		// tokens through step k within warmup: trapezoid area from 0..k
		// of batch size linearly interpolated from b0 to b1 over
		// [0, kWarm], times max_seq_len per step.
		frac := float64(step) / float64(kWarm)
		bAtStep := b0 + (b1-b0)*frac
		avg := (b0 + bAtStep) / 2
		return uint64(avg * s * float64(step))
	}

	warmupTokens := uint64((b0 + b1) / 2 * s * float64(kWarm))
	remaining := step - kWarm
	return warmupTokens + uint64(b1*s*float64(remaining))
}

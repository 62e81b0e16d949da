package coordinator

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/psyche-run/coordinator/common/types"
	"github.com/psyche-run/coordinator/metrics"
	"github.com/psyche-run/coordinator/prng"
	"github.com/psyche-run/coordinator/progress"
	"github.com/psyche-run/coordinator/roundstate"
)

// Tick implements tick(now) -> effects from spec.md §4.1: idempotent
// when no boundary is crossed, and triggers at most one phase
// transition per call (§8 property 5).
func (c *Coordinator) Tick(now uint64) ([]types.Effect, error) {
	if err := c.requireLive(); err != nil {
		return nil, err
	}
	if now < c.state.PhaseStartedAt {
		return nil, c.reject(types.ErrNonMonotonicTime)
	}
	if c.state.Phase.IsTerminal() {
		return nil, nil
	}

	phaseAtEntry := c.state.Phase
	var effects []types.Effect

	switch c.state.Phase {
	case types.PhaseWaitingForMembers:
		effects = append(effects, c.tickWaitingForMembers(now)...)
	case types.PhaseWarmup:
		effects = append(effects, c.tickWarmup(now)...)
	case types.PhaseRoundTrain:
		effects = append(effects, c.tickRoundTrain(now)...)
	case types.PhaseRoundWitness:
		effects = append(effects, c.tickRoundWitness(now)...)
	case types.PhaseCooldown:
		effects = append(effects, c.tickCooldown(now)...)
	case types.PhasePaused:
		// resumed only via SetPaused(false, now); tick is a no-op.
	}

	// A pause request defers until the boundary it would otherwise cross
	// (spec.md §4.1: "paused_pending ∧ boundary -> Paused"): the phase's
	// own trigger condition still has to fire this tick, its side effects
	// still run, but the phase it would have landed in is swapped for
	// Paused with that phase remembered as the resume target. A run that
	// terminates this tick is left to finish; there is nothing to resume.
	if c.state.PausedPending && c.state.Phase != phaseAtEntry && c.state.Phase != types.PhasePaused && !c.state.Phase.IsTerminal() {
		settled := c.state.Phase
		c.state.ResumeToPhase = settled
		c.state.Phase = types.PhasePaused
		c.state.PhaseStartedAt = now
		c.state.PausedPending = false
		c.emitPhaseChange(settled, types.PhasePaused)
		effects = append(effects, types.Effect{Kind: types.EffectPhaseChanged, FromPhase: settled, ToPhase: types.PhasePaused})
	}

	for _, e := range effects {
		c.tracer.OnEffect(e)
	}
	return effects, nil
}

func (c *Coordinator) transitionTo(to types.Phase, now uint64) (types.Effect, error) {
	from := c.state.Phase
	if !types.IsValidTransition(from, to) {
		return types.Effect{}, fmt.Errorf("%w: %s -> %s", types.ErrInvalidPhase, from, to)
	}
	c.state.Phase = to
	c.state.PhaseStartedAt = now
	c.emitPhaseChange(from, to)
	return types.Effect{Kind: types.EffectPhaseChanged, FromPhase: from, ToPhase: to}, nil
}

func (c *Coordinator) tickWaitingForMembers(now uint64) []types.Effect {
	totalCandidates := uint32(len(c.state.Clients) + len(c.state.PendingJoins))
	if totalCandidates < c.state.Config.MinClients {
		return nil
	}

	var effects []types.Effect
	joins := c.registry.DrainPending()
	c.state.PendingJoins = nil
	c.state.Clients = c.registry.Admit(c.state.Clients, joins, c.state.Progress.Epoch)
	for _, j := range joins {
		effects = append(effects, types.Effect{Kind: types.EffectClientAdmitted, ClientIdentity: j.Identity})
	}
	metrics.ActiveClients.Set(float64(c.state.ActiveClientCount()))

	effect, err := c.transitionTo(types.PhaseWarmup, now)
	if err != nil {
		c.log.Error("unreachable phase transition rejected", zap.Error(err))
		return effects
	}
	return append(effects, effect)
}

func (c *Coordinator) tickWarmup(now uint64) []types.Effect {
	if uint32(c.state.ActiveClientCount()) < c.state.Config.MinClients {
		effect, err := c.transitionTo(types.PhaseWaitingForMembers, now)
		if err != nil {
			c.log.Error("unreachable phase transition rejected", zap.Error(err))
			return nil
		}
		return []types.Effect{effect}
	}
	if now-c.state.PhaseStartedAt < c.state.Config.WarmupTime {
		return nil
	}

	if err := c.startRound(now); err != nil {
		return c.abortRound(now, err)
	}
	effect, err := c.transitionTo(types.PhaseRoundTrain, now)
	if err != nil {
		c.log.Error("unreachable phase transition rejected", zap.Error(err))
		return nil
	}
	c.tracer.OnRoundStart(c.state.CurrentRound.Height)
	return []types.Effect{
		effect,
		{Kind: types.EffectRoundStarted, RoundHeight: c.state.CurrentRound.Height},
	}
}

// startRound computes a fresh random_seed and Committee for the round
// about to begin, per spec.md §4.1's Committee Selector.
func (c *Coordinator) startRound(now uint64) error {
	n := uint32(len(c.state.Clients))
	if n == 0 {
		return fmt.Errorf("%w: no clients to form a committee", types.ErrInvalidPhase)
	}

	witnessCount := c.state.Config.WitnessNodes
	if witnessCount > n {
		witnessCount = n
	}
	verifierCount := n * uint32(c.state.Config.VerificationPercent) / 100

	seed := prng.DeriveNextSeed(c.state.PreviousSeed, c.state.Progress.Step)
	comm, err := c.selector.Select(seed, n, witnessCount, verifierCount)
	if err != nil {
		return err
	}
	if len(comm.TrainerIndices) == 0 {
		return fmt.Errorf("%w: committee has no trainers", types.ErrInvalidPhase)
	}

	c.state.PreviousSeed = seed
	c.state.CurrentRound = types.Round{
		Height:        c.state.CurrentRound.Height + 1,
		RandomSeed:    seed,
		Committee:     comm,
		StartedAtTime: now,
		ClientCount:   n,
	}
	return nil
}

// abortRound implements spec.md §4.1's failure semantics: a tick that
// finds the round malformed forces phase->WaitingForMembers and emits
// a round-abort effect, a recoverable condition per spec.md §7.
func (c *Coordinator) abortRound(now uint64, cause error) []types.Effect {
	c.log.Warn("round aborted", zap.Error(cause))
	from := c.state.Phase
	c.state.Phase = types.PhaseWaitingForMembers
	c.state.PhaseStartedAt = now
	c.emitPhaseChange(from, types.PhaseWaitingForMembers)
	return []types.Effect{
		{Kind: types.EffectRoundAborted, RoundHeight: c.state.CurrentRound.Height, FromPhase: from, ToPhase: types.PhaseWaitingForMembers},
	}
}

func (c *Coordinator) tickRoundTrain(now uint64) []types.Effect {
	round := &c.state.CurrentRound
	fastPath := roundstate.ReadyToClose(round, c.state.Config.WitnessQuorum, c.state.Clients)
	timedOut := now-c.state.PhaseStartedAt >= c.state.Config.MaxRoundTrainTime
	if !fastPath && !timedOut {
		return nil
	}

	reason := "timeout"
	if fastPath {
		reason = "quorum"
	}
	metrics.RoundsCompleted.WithLabelValues(reason).Inc()

	effect, err := c.transitionTo(types.PhaseRoundWitness, now)
	if err != nil {
		c.log.Error("unreachable phase transition rejected", zap.Error(err))
		return nil
	}
	return []types.Effect{effect}
}

func (c *Coordinator) tickRoundWitness(now uint64) []types.Effect {
	if now-c.state.PhaseStartedAt < c.state.Config.RoundWitnessTime {
		return nil
	}

	round := &c.state.CurrentRound
	roundstate.ScoreHealth(c.state.Clients, round)

	var effects []types.Effect
	accepted := make([]types.ClientIdentity, 0, len(round.Witnesses))
	for _, w := range round.Witnesses {
		accepted = append(accepted, w.Identity)
	}

	for _, idx := range roundstate.ClientsToEvict(c.state.Clients, c.state.Config.MaxInactivityRounds) {
		identity := c.state.Clients[idx].Identity
		c.registry.MarkExited(c.state.Clients, idx, types.ExitReasonInactive)
		metrics.ClientsEvicted.Inc()
		effects = append(effects, types.Effect{Kind: types.EffectClientExited, ClientIdentity: identity, ExitReason: types.ExitReasonInactive})
	}
	c.pruneExitedClients()

	round.EndedAtTime = now
	c.state.PushRecentRound(*round)
	c.tracer.OnRoundEnd(round.Height, len(accepted))
	effects = append(effects, types.Effect{Kind: types.EffectRoundEnded, RoundHeight: round.Height, AcceptedWitnesses: accepted})

	willFinish := progress.WillTerminateAfterThisRound(&c.state.Config, c.state.Progress)
	willWrapEpoch := progress.WillWrapEpoch(&c.state.Config, c.state.Progress)
	if willWrapEpoch {
		c.state.Progress = progress.AdvanceStepOnly(c.state.Progress)
	} else {
		c.state.Progress = progress.Next(&c.state.Config, c.state.Progress)
	}
	effects = append(effects, types.Effect{
		Kind:         types.EffectProgressAdvanced,
		Step:         c.state.Progress.Step,
		RoundInEpoch: c.state.Progress.RoundInEpoch,
		Epoch:        c.state.Progress.Epoch,
	})
	metrics.CurrentStep.Set(float64(c.state.Progress.Step))

	var next types.Phase
	switch {
	case willFinish:
		next = types.PhaseFinished
	case willWrapEpoch:
		next = types.PhaseCooldown
	default:
		next = types.PhaseRoundTrain
	}

	effect, err := c.transitionTo(next, now)
	if err != nil {
		c.log.Error("unreachable phase transition rejected", zap.Error(err))
		return effects
	}
	effects = append(effects, effect)

	if next == types.PhaseRoundTrain {
		if err := c.startRound(now); err != nil {
			return append(effects, c.abortRound(now, err)...)
		}
		c.tracer.OnRoundStart(c.state.CurrentRound.Height)
		effects = append(effects, types.Effect{Kind: types.EffectRoundStarted, RoundHeight: c.state.CurrentRound.Height})
	}
	if next == types.PhaseFinished {
		effects = append(effects, types.Effect{Kind: types.EffectTerminated})
	}
	return effects
}

// pruneExitedClients compacts the client slice, dropping entries
// committed as exited at this boundary. Committee indices from the
// round just closed remain valid as a historical record (they index
// the pre-compaction slice); the next round's committee is always
// computed fresh against the compacted slice, preserving spec.md
// §4.4's "stable indices within a round" guarantee without requiring
// unbounded slice growth across a long-running run.
func (c *Coordinator) pruneExitedClients() {
	kept := c.state.Clients[:0]
	for _, cl := range c.state.Clients {
		if !cl.Exited {
			kept = append(kept, cl)
		}
	}
	c.state.Clients = kept
	c.registry.Rebuild(c.state.Clients)
	metrics.ActiveClients.Set(float64(c.state.ActiveClientCount()))
}

func (c *Coordinator) tickCooldown(now uint64) []types.Effect {
	if now-c.state.PhaseStartedAt < c.state.Config.CooldownTime {
		return nil
	}
	c.state.Progress = progress.CooldownExit(c.state.Progress)

	effect, err := c.transitionTo(types.PhaseWaitingForMembers, now)
	if err != nil {
		c.log.Error("unreachable phase transition rejected", zap.Error(err))
		return nil
	}
	return []types.Effect{effect}
}

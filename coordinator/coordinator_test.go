package coordinator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/psyche-run/coordinator/bloom"
	"github.com/psyche-run/coordinator/codec"
	"github.com/psyche-run/coordinator/common/types"
)

func testConfig() types.Config {
	return types.Config{
		MinClients:                  2,
		WarmupTime:                  10,
		CooldownTime:                5,
		MaxRoundTrainTime:           30,
		RoundWitnessTime:            5,
		RoundsPerEpoch:              2,
		TotalSteps:                  2,
		WitnessNodes:                1,
		VerificationPercent:         0,
		WitnessQuorum:               1,
		GlobalBatchSizeStart:        8,
		GlobalBatchSizeEnd:          8,
		GlobalBatchSizeWarmupTokens: 1,
		MaxSeqLen:                   128,
		BloomSizeBits:               2048,
		BloomHashCount:              4,
		MaxInactivityRounds:         2,
	}
}

func allowAll(types.ClientIdentity, []byte) bool { return true }

func idOf(b byte) types.ClientIdentity {
	var id types.ClientIdentity
	id[0] = b
	return id
}

func newTestCoordinator(t *testing.T) *Coordinator {
	t.Helper()
	c := New(AuthorizationPredicateFunc(allowAll))
	require.NoError(t, c.Init("run-1", testConfig(), types.ModelDescriptor{}, types.Metadata{}, idOf(0xFF), 0))
	return c
}

// witnessFor submits an accepted witness proof on behalf of whichever
// client the deterministic committee selected, covering every active
// client in both blooms so the opportunistic fast path (and health
// scoring) treats everyone as observed.
func witnessFor(t *testing.T, c *Coordinator, at uint64) {
	t.Helper()
	round := c.State().CurrentRound
	require.NotEmpty(t, round.Committee.WitnessIndices, "round must have at least one witness")
	witnessIdx := round.Committee.WitnessIndices[0]
	witnessIdentity := c.State().Clients[witnessIdx].Identity

	pb := bloom.New(c.State().Config.BloomSizeBits, c.State().Config.BloomHashCount)
	bbf := bloom.New(c.State().Config.BloomSizeBits, c.State().Config.BloomHashCount)
	for _, cl := range c.State().Clients {
		if cl.Exited {
			continue
		}
		bloom.Insert(pb, cl.Identity)
		bloom.Insert(bbf, cl.Identity)
	}

	proof := types.WitnessProof{
		WitnessIndex:     witnessIdx,
		ParticipantBloom: *pb,
		BroadcastBloom:   *bbf,
		Metadata:         types.WitnessMetadata{Step: c.State().Progress.Step},
	}
	require.NoError(t, c.Witness(witnessIdentity, proof, at))
}

// S1: happy path — every round is witnessed promptly and the run
// terminates after exactly total_steps rounds, emitting one RoundEnded
// per round and exactly one Terminated.
func TestScenarioS1HappyPath(t *testing.T) {
	c := newTestCoordinator(t)
	require.NoError(t, c.Join(idOf(1), nil, 0))
	require.NoError(t, c.Join(idOf(2), nil, 0))

	_, err := c.Tick(0)
	require.NoError(t, err)

	var roundEnded, terminated int
	now := uint64(11)
	for i := 0; i < 50 && c.State().Phase != types.PhaseFinished; i++ {
		if c.State().Phase == types.PhaseRoundTrain {
			witnessFor(t, c, now)
		}
		effects, err := c.Tick(now)
		require.NoError(t, err)
		for _, e := range effects {
			switch e.Kind {
			case types.EffectRoundEnded:
				roundEnded++
			case types.EffectTerminated:
				terminated++
			}
		}
		now += 10
	}

	require.Equal(t, types.PhaseFinished, c.State().Phase, "run should reach Finished within the tick budget")
	require.Equal(t, 2, roundEnded)
	require.Equal(t, 1, terminated)
}

// S2: timed witness — round closes by deadline with zero witnesses,
// and both clients gain missed_witness_rounds=1.
func TestScenarioS2TimedWitness(t *testing.T) {
	c := newTestCoordinator(t)
	require.NoError(t, c.Join(idOf(1), nil, 0))
	require.NoError(t, c.Join(idOf(2), nil, 0))

	_, err := c.Tick(0)
	require.NoError(t, err)
	_, err = c.Tick(11)
	require.NoError(t, err)
	require.Equal(t, types.PhaseRoundTrain, c.State().Phase)

	_, err = c.Tick(41)
	require.NoError(t, err)
	require.Equal(t, types.PhaseRoundWitness, c.State().Phase)
	require.Empty(t, c.State().CurrentRound.Witnesses)

	_, err = c.Tick(46)
	require.NoError(t, err)
	for _, cl := range c.State().RecentRounds[len(c.State().RecentRounds)-1].Witnesses {
		_ = cl
	}
	for _, cl := range priorRoundClients(c) {
		require.Equal(t, uint32(1), cl.MissedWitnessRounds)
	}
}

func priorRoundClients(c *Coordinator) []types.Client {
	return c.State().Clients
}

// S3: a second Witness from the same identity for the same round is
// rejected with DuplicateWitness and leaves state unchanged.
func TestScenarioS3DuplicateWitness(t *testing.T) {
	c := newTestCoordinator(t)
	require.NoError(t, c.Join(idOf(1), nil, 0))
	require.NoError(t, c.Join(idOf(2), nil, 0))
	_, err := c.Tick(0)
	require.NoError(t, err)
	_, err = c.Tick(11)
	require.NoError(t, err)

	witnessFor(t, c, 12)
	before := len(c.State().CurrentRound.Witnesses)

	round := c.State().CurrentRound
	witnessIdx := round.Committee.WitnessIndices[0]
	witnessIdentity := c.State().Clients[witnessIdx].Identity
	proof := types.WitnessProof{
		WitnessIndex: witnessIdx,
		Metadata:     types.WitnessMetadata{Step: c.State().Progress.Step},
	}
	err = c.Witness(witnessIdentity, proof, 12)
	require.ErrorIs(t, err, types.ErrDuplicateWitness)
	require.Len(t, c.State().CurrentRound.Witnesses, before)
}

// S4: pause during RoundTrain defers until the next boundary; resume
// continues into the deferred phase.
func TestScenarioS4PauseThenResume(t *testing.T) {
	c := newTestCoordinator(t)
	require.NoError(t, c.Join(idOf(1), nil, 0))
	require.NoError(t, c.Join(idOf(2), nil, 0))
	_, err := c.Tick(0)
	require.NoError(t, err)
	_, err = c.Tick(11)
	require.NoError(t, err)
	require.Equal(t, types.PhaseRoundTrain, c.State().Phase)

	require.NoError(t, c.SetPaused(true, 12))
	require.Equal(t, types.PhaseRoundTrain, c.State().Phase, "pause defers until the next boundary")

	witnessFor(t, c, 12)
	_, err = c.Tick(13)
	require.NoError(t, err)
	require.Equal(t, types.PhasePaused, c.State().Phase)
	require.Equal(t, types.PhaseRoundWitness, c.State().ResumeToPhase)

	require.NoError(t, c.SetPaused(false, 20))
	require.Equal(t, types.PhaseRoundWitness, c.State().Phase)
}

// S5: health eviction — a client absent from every accepted
// participant_bloom for max_inactivity_rounds consecutive rounds is
// exited and emits ClientExited(_, Inactive).
func TestScenarioS5HealthEviction(t *testing.T) {
	c := newTestCoordinator(t)
	require.NoError(t, c.Join(idOf(1), nil, 0))
	require.NoError(t, c.Join(idOf(2), nil, 0))
	_, err := c.Tick(0)
	require.NoError(t, err)
	_, err = c.Tick(11)
	require.NoError(t, err)

	var exited bool
	at := uint64(12)
	for round := 0; round < 2 && !exited; round++ {
		r := c.State().CurrentRound
		witnessIdx := r.Committee.WitnessIndices[0]
		witnessIdentity := c.State().Clients[witnessIdx].Identity

		// witness only ever observes idOf(1), never idOf(2): idOf(2)
		// fails health scoring every round it's not evicted already.
		pb := bloom.New(c.State().Config.BloomSizeBits, c.State().Config.BloomHashCount)
		bloom.Insert(pb, idOf(1))
		proof := types.WitnessProof{
			WitnessIndex:     witnessIdx,
			ParticipantBloom: *pb,
			Metadata:         types.WitnessMetadata{Step: c.State().Progress.Step},
		}
		require.NoError(t, c.Witness(witnessIdentity, proof, at))

		effects, err := c.Tick(at + 1)
		require.NoError(t, err)
		require.Equal(t, types.PhaseRoundWitness, c.State().Phase)

		effects, err = c.Tick(at + 6)
		require.NoError(t, err)
		for _, e := range effects {
			if e.Kind == types.EffectClientExited && e.ClientIdentity == idOf(2) {
				require.Equal(t, types.ExitReasonInactive, e.ExitReason)
				exited = true
			}
		}
		at += 20
	}
	require.True(t, exited, "idOf(2) should have been evicted within max_inactivity_rounds")
}

// S6: determinism — two Coordinators initialized identically and fed
// the same trace of calls produce byte-identical encoded state.
func TestScenarioS6Determinism(t *testing.T) {
	run := func(t *testing.T) *Coordinator {
		t.Helper()
		c := newTestCoordinator(t)
		require.NoError(t, c.Join(idOf(1), nil, 0))
		require.NoError(t, c.Join(idOf(2), nil, 0))
		_, err := c.Tick(0)
		require.NoError(t, err)
		_, err = c.Tick(11)
		require.NoError(t, err)
		witnessFor(t, c, 12)
		_, err = c.Tick(13)
		require.NoError(t, err)
		_, err = c.Tick(18)
		require.NoError(t, err)
		return c
	}

	a := run(t)
	b := run(t)

	encA, err := codec.EncodeState(&a.state)
	require.NoError(t, err)
	encB, err := codec.EncodeState(&b.state)
	require.NoError(t, err)
	require.Equal(t, encA, encB, "identical traces must produce byte-identical encoded state")
}

// ReadyToClose's fast path must require quorum AND coverage, not
// either alone: a single witness whose broadcast_bloom covers every
// client must not close the round early when witness_quorum=2 has not
// been met, since that's exactly the single-colluding-witness case the
// quorum requirement exists to block.
func TestOpportunisticCoverageAloneDoesNotBypassQuorum(t *testing.T) {
	cfg := testConfig()
	cfg.MinClients = 3
	cfg.WitnessNodes = 2
	cfg.WitnessQuorum = 2
	cfg.MaxRoundTrainTime = 100

	c := New(AuthorizationPredicateFunc(allowAll))
	require.NoError(t, c.Init("run-1", cfg, types.ModelDescriptor{}, types.Metadata{}, idOf(0xFF), 0))
	require.NoError(t, c.Join(idOf(1), nil, 0))
	require.NoError(t, c.Join(idOf(2), nil, 0))
	require.NoError(t, c.Join(idOf(3), nil, 0))

	_, err := c.Tick(0)
	require.NoError(t, err)
	_, err = c.Tick(11)
	require.NoError(t, err)
	require.Equal(t, types.PhaseRoundTrain, c.State().Phase)

	witnessFor(t, c, 12)

	_, err = c.Tick(13)
	require.NoError(t, err)
	require.Equal(t, types.PhaseRoundTrain, c.State().Phase, "one witness's full coverage must not bypass an unmet quorum of 2")
}

func requireHasPhaseChange(t *testing.T, effects []types.Effect, from, to types.Phase) {
	t.Helper()
	for _, e := range effects {
		if e.Kind == types.EffectPhaseChanged && e.FromPhase == from && e.ToPhase == to {
			return
		}
	}
	t.Fatalf("expected a PhaseChanged(%s -> %s) effect, got %+v", from, to, effects)
}

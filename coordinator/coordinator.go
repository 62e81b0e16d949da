package coordinator

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/psyche-run/coordinator/bloom"
	"github.com/psyche-run/coordinator/committee"
	"github.com/psyche-run/coordinator/common/types"
	"github.com/psyche-run/coordinator/metrics"
	"github.com/psyche-run/coordinator/prng"
	"github.com/psyche-run/coordinator/progress"
	"github.com/psyche-run/coordinator/registry"
	"github.com/psyche-run/coordinator/roundstate"
)

// Opt configures a Coordinator, mirroring hare3.Opt's functional-options
// shape (WithLogger/WithTracer applied over defaults in New).
type Opt func(*Coordinator)

// WithLogger attaches a structured logger; default is zap.NewNop().
func WithLogger(log *zap.Logger) Opt {
	return func(c *Coordinator) { c.log = log }
}

// WithTracer attaches an activity observer; default is a no-op.
func WithTracer(tracer Tracer) Opt {
	return func(c *Coordinator) { c.tracer = tracer }
}

// Coordinator is the tick-driven state machine described by this
// module: phases, transitions, and the join/witness/health_check/
// checkpoint/set_paused/update_config message handlers. It holds no
// goroutines and performs no I/O (spec.md §5); Tick returns the effects
// the host should interpret, and the message handlers return only an
// error.
type Coordinator struct {
	log      *zap.Logger
	tracer   Tracer
	authz    AuthorizationPredicate
	selector *committee.Selector
	registry *registry.Registry

	initialized bool
	freed       bool

	state types.CoordinatorState
}

// New constructs an uninitialized Coordinator. Call Init before any
// other operation.
func New(authz AuthorizationPredicate, opts ...Opt) *Coordinator {
	c := &Coordinator{
		log:      zap.NewNop(),
		tracer:   noopTracer{},
		authz:    authz,
		selector: committee.New(),
		registry: registry.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a copy of the current CoordinatorState, suitable for
// handing to an external observer as an immutable snapshot (spec.md §5
// "snapshots handed to external observers are immutable"). Clients and
// PendingJoins are copied, since the Coordinator updates clients in
// place; the round records share their slices with the Coordinator,
// which only ever appends to them.
func (c *Coordinator) State() types.CoordinatorState {
	s := c.state
	s.Clients = append([]types.Client(nil), c.state.Clients...)
	s.PendingJoins = append([]types.PendingJoin(nil), c.state.PendingJoins...)
	return s
}

// Init implements init(config, model, metadata, main_authority) ->
// Coordinator from spec.md §4.1. Re-entry on an already-initialized
// Coordinator is fatal (the caller should construct a new value).
func (c *Coordinator) Init(runID types.RunId, cfg types.Config, model types.ModelDescriptor, meta types.Metadata, mainAuthority types.ClientIdentity, now uint64) error {
	if c.initialized {
		panic("coordinator: Init called on an already-initialized Coordinator")
	}
	if err := cfg.Validate(); err != nil {
		return c.reject(err)
	}
	if len(runID) > types.MaxRunIdLen {
		return c.reject(fmt.Errorf("%w: run_id exceeds %d characters", types.ErrInvalidConfig, types.MaxRunIdLen))
	}

	c.state = types.CoordinatorState{
		RunId:           runID,
		Config:          cfg,
		ModelDescriptor: model,
		Metadata:        meta,
		Phase:           types.PhaseWaitingForMembers,
		PhaseStartedAt:  now,
		MainAuthority:   mainAuthority,
		PreviousSeed:    prng.DeriveNextSeed(runIDSeed(runID), 0),
	}
	c.initialized = true
	c.log.Info("coordinator initialized",
		zap.String("run_id", string(runID)),
		zap.Uint32("min_clients", cfg.MinClients),
	)
	metrics.PhaseTransitions.WithLabelValues(types.PhaseWaitingForMembers.String()).Inc()
	return nil
}

// runIDSeed derives a stable starting input to the seed chain from the
// run's identity, so two Coordinators initialized with the same run_id
// and config produce the same first random_seed (needed for S6's
// determinism property, spec.md §8).
func runIDSeed(runID types.RunId) uint64 {
	var acc uint64
	for i, b := range []byte(runID) {
		acc = acc*31 + uint64(b) + uint64(i)
	}
	return acc
}

func (c *Coordinator) requireLive() error {
	if !c.initialized {
		return c.reject(fmt.Errorf("%w: coordinator not initialized", types.ErrInvalidPhase))
	}
	if c.freed {
		return c.reject(fmt.Errorf("%w: coordinator freed", types.ErrRunFinished))
	}
	return nil
}

// Join implements join(identity, authorization, now) from spec.md §4.1.
func (c *Coordinator) Join(identity types.ClientIdentity, token []byte, now uint64) error {
	if err := c.requireLive(); err != nil {
		return err
	}
	if c.state.Phase == types.PhasePaused {
		return c.reject(types.ErrRunPaused)
	}
	if c.state.Phase.IsTerminal() {
		return c.reject(types.ErrRunFinished)
	}
	if _, _, ok := c.state.FindClient(identity); ok {
		return c.reject(types.ErrAlreadyMember)
	}
	if !c.authz.Authorize(identity, token) {
		return c.reject(fmt.Errorf("%w: join rejected for %s", types.ErrUnauthorized, identity))
	}
	if err := c.registry.EnqueuePending(identity, now); err != nil {
		return c.reject(err)
	}
	c.state.PendingJoins = append(c.state.PendingJoins, types.PendingJoin{Identity: identity, JoinedAt: now})
	c.log.Debug("join accepted", zap.Stringer("identity", identity))
	return nil
}

// Witness implements witness(identity, proof, now) from spec.md §4.1.
func (c *Coordinator) Witness(identity types.ClientIdentity, proof types.WitnessProof, now uint64) error {
	if err := c.requireLive(); err != nil {
		return err
	}
	if c.state.Phase != types.PhaseRoundTrain && c.state.Phase != types.PhaseRoundWitness {
		return c.reject(fmt.Errorf("%w: witness only accepted during RoundTrain/RoundWitness, phase is %s", types.ErrInvalidPhase, c.state.Phase))
	}
	clientIdx, _, ok := c.state.FindClient(identity)
	if !ok {
		return c.reject(fmt.Errorf("%w: %s", types.ErrNotAMember, identity))
	}
	if proof.Metadata.Step != c.state.Progress.Step {
		return c.reject(fmt.Errorf("%w: proof declares step %d, progress is at step %d", types.ErrStaleWitness, proof.Metadata.Step, c.state.Progress.Step))
	}
	proof.Identity = identity
	if err := roundstate.AcceptWitness(&c.state.CurrentRound, clientIdx, proof); err != nil {
		return c.reject(err)
	}
	c.log.Debug("witness accepted",
		zap.Stringer("identity", identity),
		zap.Uint64("round", c.state.CurrentRound.Height),
		zap.Int("accepted_so_far", len(c.state.CurrentRound.Witnesses)),
	)
	return nil
}

// HealthCheck implements health_check(identity, unhealthy, now) from
// spec.md §4.1: reports from a reporter whose own score is below
// threshold this round are discarded.
func (c *Coordinator) HealthCheck(reporter types.ClientIdentity, unhealthy []types.ClientIdentity, now uint64) error {
	if err := c.requireLive(); err != nil {
		return err
	}
	reporterIdx, _, ok := c.state.FindClient(reporter)
	if !ok {
		return c.reject(fmt.Errorf("%w: %s", types.ErrNotAMember, reporter))
	}
	if !c.state.CurrentRound.Committee.IsTrainer(reporterIdx) {
		return c.reject(fmt.Errorf("%w: health_check only accepted from a current trainer", types.ErrUnauthorized))
	}

	accepted := len(c.state.CurrentRound.Witnesses)
	threshold := (accepted + 1) / 2
	reporterScore := 0
	for _, w := range c.state.CurrentRound.Witnesses {
		if bloom.MightContain(&w.ParticipantBloom, reporter) {
			reporterScore++
		}
	}
	if reporterScore < threshold {
		c.log.Debug("health_check discarded: reporter below health threshold", zap.Stringer("reporter", reporter))
		return nil
	}

	for _, target := range unhealthy {
		if _, cl, ok := c.state.FindClient(target); ok {
			cl.MissedWitnessRounds++
		}
	}
	return nil
}

// Checkpoint implements checkpoint(descriptor) from spec.md §4.1.
func (c *Coordinator) Checkpoint(desc types.CheckpointDescriptor) error {
	if err := c.requireLive(); err != nil {
		return err
	}
	if c.state.Phase != types.PhaseCooldown {
		return c.reject(fmt.Errorf("%w: checkpoint only permitted in Cooldown, phase is %s", types.ErrInvalidPhase, c.state.Phase))
	}
	c.state.ModelDescriptor.Checkpoint = desc
	c.log.Info("checkpoint recorded", zap.Uint8("kind", uint8(desc.Kind)))
	return nil
}

// SetPaused implements set_paused(paused, now) from spec.md §4.1: a
// pause request defers until the next phase boundary; an un-pause
// request resumes immediately into the phase that was active when the
// pause was honored, restarting that phase's deadline clock from now.
func (c *Coordinator) SetPaused(paused bool, now uint64) error {
	if err := c.requireLive(); err != nil {
		return err
	}
	if c.state.Phase.IsTerminal() {
		return c.reject(types.ErrRunFinished)
	}
	if paused {
		c.state.PausedPending = true
		return nil
	}
	// un-pausing: if already Paused, resume immediately; otherwise it
	// just cancels a still-pending pause request.
	if c.state.Phase == types.PhasePaused {
		from := c.state.Phase
		c.state.Phase = c.state.ResumeToPhase
		c.state.ResumeToPhase = types.PhaseUninitialized
		c.state.PhaseStartedAt = now
		c.state.PausedPending = false
		c.emitPhaseChange(from, c.state.Phase)
		return nil
	}
	c.state.PausedPending = false
	return nil
}

// UpdateConfig implements update_config(new_config) from spec.md §4.1.
func (c *Coordinator) UpdateConfig(cfg types.Config) error {
	if err := c.requireLive(); err != nil {
		return err
	}
	if c.state.Phase != types.PhaseWaitingForMembers && c.state.Phase != types.PhasePaused {
		return c.reject(fmt.Errorf("%w: update_config only permitted in WaitingForMembers/Paused, phase is %s", types.ErrInvalidPhase, c.state.Phase))
	}
	if err := cfg.Validate(); err != nil {
		return c.reject(err)
	}
	c.state.Config = cfg
	return nil
}

// Free implements free() from spec.md §4.1. Permitted only when the
// run has finished, or from the configured authority. Double-free is
// fatal, matching init's re-entry rule.
func (c *Coordinator) Free(caller types.ClientIdentity) error {
	if c.freed {
		panic("coordinator: Free called on an already-freed Coordinator")
	}
	if c.state.Phase != types.PhaseFinished && !caller.Equal(c.state.MainAuthority) {
		return c.reject(fmt.Errorf("%w: free requires Finished phase or the configured authority", types.ErrUnauthorized))
	}
	c.freed = true
	return nil
}

// rejectionReasons orders every sentinel error checked by reject, most
// specific first, since a wrapped error can satisfy more than one
// errors.Is comparison only when sentinels alias (they don't here).
var rejectionReasons = []error{
	types.ErrInvalidConfig,
	types.ErrInvalidPhase,
	types.ErrUnauthorized,
	types.ErrAlreadyMember,
	types.ErrNotAMember,
	types.ErrNotAWitness,
	types.ErrDuplicateWitness,
	types.ErrStaleWitness,
	types.ErrNonMonotonicTime,
	types.ErrRunPaused,
	types.ErrRunFinished,
	types.ErrMalformedMessage,
	types.ErrVersionMismatch,
}

// reject increments RejectedMessages labeled by err's sentinel kind and
// returns err unchanged, so every rejecting return site can just wrap
// its error with c.reject(...) instead of duplicating the label logic.
func (c *Coordinator) reject(err error) error {
	if err == nil {
		return nil
	}
	reason := "other"
	for _, sentinel := range rejectionReasons {
		if errors.Is(err, sentinel) {
			reason = sentinel.Error()
			break
		}
	}
	metrics.RejectedMessages.WithLabelValues(reason).Inc()
	return err
}

func (c *Coordinator) emitPhaseChange(from, to types.Phase) {
	c.tracer.OnPhaseChange(from, to)
	metrics.PhaseTransitions.WithLabelValues(to.String()).Inc()
	c.log.Info("phase changed", zap.Stringer("from", from), zap.Stringer("to", to))
}

// Package coordinator implements the Coordinator Core: the tick-driven
// state machine that admits clients, drives a run through its phase
// cycle, and elects committees, accumulates witnesses, and advances
// progress. It performs no I/O; operations update the Coordinator in
// place, and Tick returns a list of effects for the host to interpret.
package coordinator

import "github.com/psyche-run/coordinator/common/types"

// AuthorizationPredicate is the pure, deterministic membership check
// supplied by the host. Authorize receives the joining identity and its
// token only; no join authority is passed to it. Narrow single-method
// interface, adapted from the teacher's mesh/interface.go style of
// small dependency-only interfaces (conservativeState, vmState).
type AuthorizationPredicate interface {
	Authorize(identity types.ClientIdentity, token []byte) bool
}

// AuthorizationPredicateFunc adapts a plain function to
// AuthorizationPredicate, the same func-to-interface convenience the
// teacher uses for its own single-method collaborators.
type AuthorizationPredicateFunc func(identity types.ClientIdentity, token []byte) bool

func (f AuthorizationPredicateFunc) Authorize(identity types.ClientIdentity, token []byte) bool {
	return f(identity, token)
}

// Tracer observes Coordinator activity without influencing it, mirrored
// from the teacher's hare3.Tracer (OnMessageReceived/OnStart/OnStop).
type Tracer interface {
	OnPhaseChange(from, to types.Phase)
	OnRoundStart(height uint64)
	OnRoundEnd(height uint64, accepted int)
	OnEffect(e types.Effect)
}

type noopTracer struct{}

func (noopTracer) OnPhaseChange(from, to types.Phase)     {}
func (noopTracer) OnRoundStart(height uint64)             {}
func (noopTracer) OnRoundEnd(height uint64, accepted int) {}
func (noopTracer) OnEffect(e types.Effect)                {}

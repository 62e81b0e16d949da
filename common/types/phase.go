package types

// Phase is one of the Coordinator's closed set of run phases
// (spec.md §3). Implemented as a sum type via an exhaustively-switched
// enum, per the "no open polymorphism" design note.
type Phase uint8

const (
	PhaseUninitialized Phase = iota
	PhaseWaitingForMembers
	PhaseWarmup
	PhaseRoundTrain
	PhaseRoundWitness
	PhaseCooldown
	PhasePaused
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "Uninitialized"
	case PhaseWaitingForMembers:
		return "WaitingForMembers"
	case PhaseWarmup:
		return "Warmup"
	case PhaseRoundTrain:
		return "RoundTrain"
	case PhaseRoundWitness:
		return "RoundWitness"
	case PhaseCooldown:
		return "Cooldown"
	case PhasePaused:
		return "Paused"
	case PhaseFinished:
		return "Finished"
	default:
		return "Unknown"
	}
}

// IsTerminal reports whether p accepts no further transitions.
func (p Phase) IsTerminal() bool {
	return p == PhaseFinished
}

// validPhaseSwitch enumerates the phases reachable from each phase,
// adapted from the teacher's activation.validStateSwitch table
// (activation/identity_states.go): a phase may move only to a member
// of its own entry. Paused is reachable from every non-terminal phase
// (the "any non-terminal -> Paused" row in spec.md §4.1) and is added
// programmatically in IsValidTransition rather than duplicated in
// every row below.
var validPhaseSwitch = map[Phase][]Phase{
	PhaseUninitialized:     {PhaseWaitingForMembers},
	PhaseWaitingForMembers: {PhaseWarmup},
	PhaseWarmup:            {PhaseRoundTrain, PhaseWaitingForMembers},
	PhaseRoundTrain:        {PhaseRoundWitness},
	PhaseRoundWitness:      {PhaseRoundTrain, PhaseCooldown, PhaseFinished, PhaseWaitingForMembers},
	PhaseCooldown:          {PhaseWaitingForMembers},
	PhasePaused:            nil, // resume target is remembered out-of-band in CoordinatorState.ResumeToPhase
}

// IsValidTransition reports whether moving from `from` to `to` is a
// structurally legal phase transition. Paused may be entered from any
// non-terminal phase and resumed back to any non-terminal phase; both
// directions are host/operator driven rather than tick driven, so they
// are permitted unconditionally here and gated by paused_pending logic
// in the coordinator package instead.
func IsValidTransition(from, to Phase) bool {
	if from.IsTerminal() {
		return false
	}
	if to == PhasePaused {
		return from != PhasePaused
	}
	if from == PhasePaused {
		return to != PhasePaused
	}
	for _, candidate := range validPhaseSwitch[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

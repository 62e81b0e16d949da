package types

import "errors"

// Error kinds returned by the Coordinator's public operations. Every
// operation returns one of these (wrapped with additional context via
// fmt.Errorf("...: %w", ...)) on rejection; callers classify failures
// with errors.Is.
var (
	ErrInvalidConfig    = errors.New("invalid config")
	ErrInvalidPhase     = errors.New("invalid phase for operation")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrAlreadyMember    = errors.New("already a member")
	ErrNotAMember       = errors.New("not a member")
	ErrNotAWitness      = errors.New("not a witness for this round")
	ErrDuplicateWitness = errors.New("duplicate witness for this round")
	ErrStaleWitness     = errors.New("stale witness proof")
	ErrNonMonotonicTime = errors.New("tick time is not monotonically non-decreasing")
	ErrRunPaused        = errors.New("run is paused")
	ErrRunFinished      = errors.New("run is finished")
	ErrMalformedMessage = errors.New("malformed message")
	ErrVersionMismatch  = errors.New("unsupported state encoding version")
)

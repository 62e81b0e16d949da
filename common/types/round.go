package types

// Round is the per-round coordination record (spec.md §3). Committee
// is computed exactly once from RandomSeed at RoundTrain entry and is
// immutable thereafter; Witnesses accumulates accepted WitnessProofs
// in submission order.
type Round struct {
	Height        uint64
	RandomSeed    uint64
	Committee     Committee
	Witnesses     []WitnessProof
	StartedAtTime uint64
	EndedAtTime   uint64 // 0 until the round ends
	// ClientCount snapshots len(clients) at round start, since
	// Committee indices are only meaningful against that slice length.
	ClientCount uint32
}

// HasEnded reports whether EndedAtTime has been set.
func (r *Round) HasEnded() bool {
	return r.EndedAtTime != 0
}

// WitnessByIdentity returns the accepted proof from identity, if any.
func (r *Round) WitnessByIdentity(identity ClientIdentity) (WitnessProof, bool) {
	for _, w := range r.Witnesses {
		if w.Identity.Equal(identity) {
			return w, true
		}
	}
	return WitnessProof{}, false
}

// Progress is the step/round-in-epoch/epoch counter triple (spec.md §3).
type Progress struct {
	Step         uint64
	RoundInEpoch uint32
	Epoch        uint32
}

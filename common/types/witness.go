package types

// EvalResult is a single optional evaluation metric attached to a
// witness proof's metadata, free-form name/value pairs.
type EvalResult struct {
	Name  string
	Value float64
}

// WitnessMetadata carries the self-reported performance data a witness
// attaches to its proof (spec.md §3).
type WitnessMetadata struct {
	BandwidthPerSec uint64
	TokensPerSec    uint64
	Loss            float64
	Step            uint64
	Evals           []EvalResult
}

// WitnessProof is one witness's attestation for a round (spec.md §3).
// Only a client elected as a witness for the round may submit one, and
// only once.
type WitnessProof struct {
	WitnessIndex     ClientIndex
	Identity         ClientIdentity
	ParticipantBloom BloomFilter
	BroadcastBloom   BloomFilter
	Metadata         WitnessMetadata
}

package types

import "fmt"

// Config is the Coordinator's closed descriptor of run parameters
// (spec.md §3, §9). All times are whole seconds; all counts are whole
// units. Fields carry mapstructure tags so the reference CLI host can
// populate them from viper, mirroring the teacher's hare3.Config.
type Config struct {
	MinClients      uint32 `mapstructure:"min-clients"`
	WarmupTime      uint64 `mapstructure:"warmup-time"`
	CooldownTime    uint64 `mapstructure:"cooldown-time"`
	MaxRoundTrainTime uint64 `mapstructure:"max-round-train-time"`
	RoundWitnessTime  uint64 `mapstructure:"round-witness-time"`
	RoundsPerEpoch  uint32 `mapstructure:"rounds-per-epoch"`
	TotalSteps      uint64 `mapstructure:"total-steps"`
	WitnessNodes    uint32 `mapstructure:"witness-nodes"`
	VerificationPercent uint8 `mapstructure:"verification-percent"`
	WitnessQuorum   uint32 `mapstructure:"witness-quorum"`

	GlobalBatchSizeStart       uint64 `mapstructure:"global-batch-size-start"`
	GlobalBatchSizeEnd         uint64 `mapstructure:"global-batch-size-end"`
	GlobalBatchSizeWarmupTokens uint64 `mapstructure:"global-batch-size-warmup-tokens"`
	MaxSeqLen                  uint64 `mapstructure:"max-seq-len"`

	BloomSizeBits     uint32 `mapstructure:"bloom-size-bits"`
	BloomHashCount    uint32 `mapstructure:"bloom-hash-count"`
	MaxInactivityRounds uint32 `mapstructure:"max-inactivity-rounds"`
}

// Validate re-checks every invariant spec.md §4.1's init() enumerates.
// Called both from Coordinator init and from update_config, matching
// the teacher's pattern of a single Validate() reused at load and at
// runtime reconfiguration (cfg.Validate(zdist) in hare3.Config).
func (c *Config) Validate() error {
	switch {
	case c.MinClients == 0:
		return fmt.Errorf("%w: min_clients must be > 0", ErrInvalidConfig)
	case c.RoundsPerEpoch == 0:
		return fmt.Errorf("%w: rounds_per_epoch must be > 0", ErrInvalidConfig)
	case c.TotalSteps < uint64(c.RoundsPerEpoch):
		return fmt.Errorf("%w: total_steps must be >= rounds_per_epoch", ErrInvalidConfig)
	case c.WitnessNodes > c.MinClients:
		return fmt.Errorf("%w: witness_nodes must be <= min_clients", ErrInvalidConfig)
	case c.WitnessQuorum > c.WitnessNodes:
		return fmt.Errorf("%w: witness_quorum must be <= witness_nodes", ErrInvalidConfig)
	case c.VerificationPercent > 100:
		return fmt.Errorf("%w: verification_percent must be in [0,100]", ErrInvalidConfig)
	case c.WarmupTime == 0 || c.CooldownTime == 0 || c.MaxRoundTrainTime == 0 || c.RoundWitnessTime == 0:
		return fmt.Errorf("%w: all phase durations must be > 0", ErrInvalidConfig)
	case c.GlobalBatchSizeStart == 0 || c.GlobalBatchSizeEnd == 0:
		return fmt.Errorf("%w: global batch sizes must be > 0", ErrInvalidConfig)
	case c.MaxSeqLen == 0:
		return fmt.Errorf("%w: max_seq_len must be > 0", ErrInvalidConfig)
	case c.BloomSizeBits == 0 || c.BloomHashCount == 0:
		return fmt.Errorf("%w: bloom parameters must be > 0", ErrInvalidConfig)
	case c.MaxInactivityRounds == 0:
		return fmt.Errorf("%w: max_inactivity_rounds must be > 0", ErrInvalidConfig)
	}
	return nil
}

// ModelArchitecture is a closed tag for the model family under training.
type ModelArchitecture uint8

const (
	ArchitectureUnspecified ModelArchitecture = iota
	ArchitectureLLM
	ArchitectureDiffusion
)

// DataSource is a closed tag for where training samples come from.
type DataSource uint8

const (
	DataSourceUnspecified DataSource = iota
	DataSourceHTTP
	DataSourceLocal
)

// OptimizerKind and LRScheduleKind are closed tags, matching the
// "dynamic dispatch / variants ... implement as sum types" design note.
type OptimizerKind uint8

const (
	OptimizerUnspecified OptimizerKind = iota
	OptimizerAdamW
	OptimizerDistributedShampoo
)

type LRScheduleKind uint8

const (
	LRScheduleUnspecified LRScheduleKind = iota
	LRScheduleCosine
	LRScheduleLinearWarmupConstant
)

// CheckpointKind tags the descriptor recorded by checkpoint(), mirroring
// the tagged union spec.md §6 describes for the Checkpoint message.
type CheckpointKind uint8

const (
	CheckpointKindNone CheckpointKind = iota
	CheckpointKindHub
	CheckpointKindP2P
)

// CheckpointDescriptor is the closed Hub|P2P union recorded by
// checkpoint() and carried in ModelDescriptor.
type CheckpointDescriptor struct {
	Kind         CheckpointKind `json:"kind"`
	HubRepoID    string         `json:"hubRepoId,omitempty"`
	P2PManifestHash Hash32      `json:"p2pManifestHash,omitempty"`
}

// ModelDescriptor carries architecture, data, optimizer, and LR
// schedule tags plus the most recent checkpoint locator, shaped after
// the teacher's JSON-tagged types.Checkpoint/InnerData descriptor
// (common/types/checkpoint.go) used for out-of-band snapshot data
// distinct from the canonical scale-encoded wire state.
type ModelDescriptor struct {
	Architecture ModelArchitecture `json:"architecture"`
	DataSource   DataSource        `json:"dataSource"`
	Optimizer    OptimizerKind     `json:"optimizer"`
	LRSchedule   LRScheduleKind    `json:"lrSchedule"`
	Checkpoint   CheckpointDescriptor `json:"checkpoint"`
}

// Metadata is free-form descriptive data about a run, recorded at init
// and never interpreted by the Coordinator core.
type Metadata struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	NumParameters uint64 `json:"numParameters"`
}

// Hash32 is a 256-bit cryptographic hash, used for the P2P checkpoint
// manifest hash in CheckpointDescriptor.
type Hash32 [32]byte

// Messages implements spec.md §6's external message catalog as a
// discriminated tagged union over go-scale, the same shape the
// teacher uses for its gossip Message type in hare3 (msg.Validate(),
// msg.ToBytes()): a MessageKind byte discriminant followed by the
// payload fields for that kind, with no interface dispatch needed at
// decode time. The Coordinator type itself never decodes these — a
// host owns transport and calls the plain Go methods (Init, Join, ...)
// directly — but every message a host might receive over the wire or
// replay from a log has a canonical encoding here.
package coordinator

import (
	"fmt"

	"github.com/spacemeshos/go-scale"

	"github.com/psyche-run/coordinator/common/types"
)

// MessageKind tags the payload carried by a Message.
type MessageKind uint8

const (
	MessageKindInitCoordinator MessageKind = iota
	MessageKindUpdate
	MessageKindTick
	MessageKindJoinRun
	MessageKindSetPaused
	MessageKindWitness
	MessageKindHealthCheck
	MessageKindCheckpoint
	MessageKindWarmupWitness
	MessageKindSetFutureEpochRates
	MessageKindFreeCoordinator
)

func (k MessageKind) String() string {
	switch k {
	case MessageKindInitCoordinator:
		return "InitCoordinator"
	case MessageKindUpdate:
		return "Update"
	case MessageKindTick:
		return "Tick"
	case MessageKindJoinRun:
		return "JoinRun"
	case MessageKindSetPaused:
		return "SetPaused"
	case MessageKindWitness:
		return "Witness"
	case MessageKindHealthCheck:
		return "HealthCheck"
	case MessageKindCheckpoint:
		return "Checkpoint"
	case MessageKindWarmupWitness:
		return "WarmupWitness"
	case MessageKindSetFutureEpochRates:
		return "SetFutureEpochRates"
	case MessageKindFreeCoordinator:
		return "FreeCoordinator"
	default:
		return "Unknown"
	}
}

// EpochRate is one entry of a SetFutureEpochRates schedule: from the
// named epoch onward, the global-batch-size warmup token budget changes.
type EpochRate struct {
	FromEpoch                   uint32
	GlobalBatchSizeWarmupTokens uint64
}

func (r *EpochRate) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := scale.EncodeCompact64(enc, uint64(r.FromEpoch))
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeCompact64(enc, r.GlobalBatchSizeWarmupTokens)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (r *EpochRate) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		field, n, err := scale.DecodeCompact64(dec)
		if err != nil {
			return total, err
		}
		total += n
		r.FromEpoch = uint32(field)
	}
	{
		field, n, err := scale.DecodeCompact64(dec)
		if err != nil {
			return total, err
		}
		total += n
		r.GlobalBatchSizeWarmupTokens = field
	}
	return total, nil
}

const (
	maxEpochRates      = 1 << 16
	maxAuthTokenLen    = 4096
	maxUnhealthyIDs    = 1 << 20
)

// Message is the closed tagged union of every wire request the
// Coordinator accepts. Only the fields relevant to Kind are populated,
// mirroring the sparse-struct-over-Effect convention in
// common/types/effects.go rather than an interface per message.
type Message struct {
	Kind MessageKind

	// InitCoordinator
	RunId         types.RunId
	Config        types.Config
	Model         types.ModelDescriptor
	Metadata      types.Metadata
	MainAuthority types.ClientIdentity
	JoinAuthority types.ClientIdentity

	// Tick
	NowSeconds uint64

	// JoinRun
	Identity           types.ClientIdentity
	AuthorizationToken []byte

	// SetPaused
	Paused bool

	// Witness / WarmupWitness
	Proof types.WitnessProof

	// HealthCheck
	UnhealthyIDs []types.ClientIdentity

	// Checkpoint
	CheckpointDescriptor types.CheckpointDescriptor

	// SetFutureEpochRates
	Schedule []EpochRate
}

func (m *Message) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := scale.EncodeCompact64(enc, uint64(m.Kind))
		if err != nil {
			return total, err
		}
		total += n
	}

	switch m.Kind {
	case MessageKindInitCoordinator:
		for _, step := range []func() (int, error){
			func() (int, error) { return scale.EncodeStringWithLimit(enc, string(m.RunId), types.MaxRunIdLen) },
			func() (int, error) { return m.Config.EncodeScale(enc) },
			func() (int, error) { return m.Model.EncodeScale(enc) },
			func() (int, error) { return m.Metadata.EncodeScale(enc) },
			func() (int, error) { return m.MainAuthority.EncodeScale(enc) },
			func() (int, error) { return m.JoinAuthority.EncodeScale(enc) },
		} {
			n, err := step()
			if err != nil {
				return total, err
			}
			total += n
		}
		return total, nil

	case MessageKindUpdate:
		n, err := m.Config.EncodeScale(enc)
		if err != nil {
			return total, err
		}
		return total + n, nil

	case MessageKindTick:
		n, err := scale.EncodeCompact64(enc, m.NowSeconds)
		if err != nil {
			return total, err
		}
		return total + n, nil

	case MessageKindJoinRun:
		n1, err := m.Identity.EncodeScale(enc)
		if err != nil {
			return total, err
		}
		n2, err := scale.EncodeByteSliceWithLimit(enc, m.AuthorizationToken, maxAuthTokenLen)
		if err != nil {
			return total, err
		}
		return total + n1 + n2, nil

	case MessageKindSetPaused:
		n, err := scale.EncodeBool(enc, m.Paused)
		if err != nil {
			return total, err
		}
		return total + n, nil

	case MessageKindWitness, MessageKindWarmupWitness:
		n1, err := m.Identity.EncodeScale(enc)
		if err != nil {
			return total, err
		}
		n2, err := m.Proof.EncodeScale(enc)
		if err != nil {
			return total, err
		}
		return total + n1 + n2, nil

	case MessageKindHealthCheck:
		n1, err := m.Identity.EncodeScale(enc)
		if err != nil {
			return total, err
		}
		n2, err := scale.EncodeStructSliceWithLimit(enc, m.UnhealthyIDs, maxUnhealthyIDs)
		if err != nil {
			return total, err
		}
		return total + n1 + n2, nil

	case MessageKindCheckpoint:
		n, err := m.CheckpointDescriptor.EncodeScale(enc)
		if err != nil {
			return total, err
		}
		return total + n, nil

	case MessageKindSetFutureEpochRates:
		n, err := scale.EncodeStructSliceWithLimit(enc, m.Schedule, maxEpochRates)
		if err != nil {
			return total, err
		}
		return total + n, nil

	case MessageKindFreeCoordinator:
		return total, nil

	default:
		return total, fmt.Errorf("%w: unknown message kind %d", types.ErrMalformedMessage, m.Kind)
	}
}

func (m *Message) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		field, n, err := scale.DecodeCompact64(dec)
		if err != nil {
			return total, err
		}
		total += n
		m.Kind = MessageKind(field)
	}

	switch m.Kind {
	case MessageKindInitCoordinator:
		{
			field, n, err := scale.DecodeStringWithLimit(dec, types.MaxRunIdLen)
			if err != nil {
				return total, err
			}
			total += n
			m.RunId = types.RunId(field)
		}
		if n, err := m.Config.DecodeScale(dec); err != nil {
			return total, err
		} else {
			total += n
		}
		if n, err := m.Model.DecodeScale(dec); err != nil {
			return total, err
		} else {
			total += n
		}
		if n, err := m.Metadata.DecodeScale(dec); err != nil {
			return total, err
		} else {
			total += n
		}
		if n, err := m.MainAuthority.DecodeScale(dec); err != nil {
			return total, err
		} else {
			total += n
		}
		if n, err := m.JoinAuthority.DecodeScale(dec); err != nil {
			return total, err
		} else {
			total += n
		}
		return total, nil

	case MessageKindUpdate:
		n, err := m.Config.DecodeScale(dec)
		if err != nil {
			return total, err
		}
		return total + n, nil

	case MessageKindTick:
		field, n, err := scale.DecodeCompact64(dec)
		if err != nil {
			return total, err
		}
		m.NowSeconds = field
		return total + n, nil

	case MessageKindJoinRun:
		n1, err := m.Identity.DecodeScale(dec)
		if err != nil {
			return total, err
		}
		field, n2, err := scale.DecodeByteSliceWithLimit(dec, maxAuthTokenLen)
		if err != nil {
			return total, err
		}
		m.AuthorizationToken = field
		return total + n1 + n2, nil

	case MessageKindSetPaused:
		field, n, err := scale.DecodeBool(dec)
		if err != nil {
			return total, err
		}
		m.Paused = field
		return total + n, nil

	case MessageKindWitness, MessageKindWarmupWitness:
		n1, err := m.Identity.DecodeScale(dec)
		if err != nil {
			return total, err
		}
		n2, err := m.Proof.DecodeScale(dec)
		if err != nil {
			return total, err
		}
		return total + n1 + n2, nil

	case MessageKindHealthCheck:
		n1, err := m.Identity.DecodeScale(dec)
		if err != nil {
			return total, err
		}
		field, n2, err := scale.DecodeStructSliceWithLimit[types.ClientIdentity](dec, maxUnhealthyIDs)
		if err != nil {
			return total, err
		}
		m.UnhealthyIDs = field
		return total + n1 + n2, nil

	case MessageKindCheckpoint:
		n, err := m.CheckpointDescriptor.DecodeScale(dec)
		if err != nil {
			return total, err
		}
		return total + n, nil

	case MessageKindSetFutureEpochRates:
		field, n, err := scale.DecodeStructSliceWithLimit[EpochRate](dec, maxEpochRates)
		if err != nil {
			return total, err
		}
		m.Schedule = field
		return total + n, nil

	case MessageKindFreeCoordinator:
		return total, nil

	default:
		return total, fmt.Errorf("%w: unknown message kind %d", types.ErrMalformedMessage, m.Kind)
	}
}

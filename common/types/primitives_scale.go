package types

import (
	"github.com/spacemeshos/go-scale"
)

// Hand-written EncodeScale/DecodeScale methods for every type making up
// CoordinatorState, in the shape github.com/spacemeshos/go-scale's
// scalegen would produce (see the teacher's common/types/activation_scale.go
// and p2p/server/server_scale.go, both "Code generated ... DO NOT EDIT"
// files we don't have a generator for, so these are written by hand in
// the same style). Every container is length-prefixed with an explicit
// upper bound, and there are no pointers, satisfying spec.md §4.5.

const (
	maxStringLen      = 4096
	maxPendingJoins   = 1 << 20
	maxClients        = 1 << 20
	maxCommitteeSize  = 1 << 20
	maxWitnesses      = 1 << 16
	maxEvalResults    = 1 << 12
	maxRecentRounds   = 1 << 16
	maxBloomWords     = 1 << 24
)

func (id *ClientIdentity) EncodeScale(enc *scale.Encoder) (total int, err error) {
	n, err := scale.EncodeByteArray(enc, id[:])
	if err != nil {
		return total, err
	}
	return total + n, nil
}

func (id *ClientIdentity) DecodeScale(dec *scale.Decoder) (total int, err error) {
	n, err := scale.DecodeByteArray(dec, id[:])
	if err != nil {
		return total, err
	}
	return total + n, nil
}

func (h *Hash32) EncodeScale(enc *scale.Encoder) (total int, err error) {
	n, err := scale.EncodeByteArray(enc, h[:])
	if err != nil {
		return total, err
	}
	return total + n, nil
}

func (h *Hash32) DecodeScale(dec *scale.Decoder) (total int, err error) {
	n, err := scale.DecodeByteArray(dec, h[:])
	if err != nil {
		return total, err
	}
	return total + n, nil
}

func encodeClientIndexSlice(enc *scale.Encoder, s []ClientIndex) (int, error) {
	total := 0
	n, err := scale.EncodeCompact32(enc, uint32(len(s)))
	if err != nil {
		return total, err
	}
	total += n
	for _, v := range s {
		n, err := scale.EncodeCompact32(enc, uint32(v))
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func decodeClientIndexSlice(dec *scale.Decoder, limit uint32) ([]ClientIndex, int, error) {
	total := 0
	count, n, err := scale.DecodeCompact32(dec)
	if err != nil {
		return nil, total, err
	}
	total += n
	if count > limit {
		count = limit
	}
	out := make([]ClientIndex, 0, count)
	for i := uint32(0); i < count; i++ {
		v, n, err := scale.DecodeCompact32(dec)
		if err != nil {
			return nil, total, err
		}
		total += n
		out = append(out, ClientIndex(v))
	}
	return out, total, nil
}


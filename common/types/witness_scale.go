package types

import (
	"math"

	"github.com/spacemeshos/go-scale"
)

func (e *EvalResult) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := scale.EncodeStringWithLimit(enc, e.Name, maxStringLen)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeCompact64(enc, math.Float64bits(e.Value))
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (e *EvalResult) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		field, n, err := scale.DecodeStringWithLimit(dec, maxStringLen)
		if err != nil {
			return total, err
		}
		total += n
		e.Name = string(field)
	}
	{
		field, n, err := scale.DecodeCompact64(dec)
		if err != nil {
			return total, err
		}
		total += n
		e.Value = math.Float64frombits(field)
	}
	return total, nil
}

func (m *WitnessMetadata) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := scale.EncodeCompact64(enc, m.BandwidthPerSec)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeCompact64(enc, m.TokensPerSec)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeCompact64(enc, math.Float64bits(m.Loss))
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeCompact64(enc, m.Step)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeStructSliceWithLimit(enc, m.Evals, maxEvalResults)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (m *WitnessMetadata) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		field, n, err := scale.DecodeCompact64(dec)
		if err != nil {
			return total, err
		}
		total += n
		m.BandwidthPerSec = field
	}
	{
		field, n, err := scale.DecodeCompact64(dec)
		if err != nil {
			return total, err
		}
		total += n
		m.TokensPerSec = field
	}
	{
		field, n, err := scale.DecodeCompact64(dec)
		if err != nil {
			return total, err
		}
		total += n
		m.Loss = math.Float64frombits(field)
	}
	{
		field, n, err := scale.DecodeCompact64(dec)
		if err != nil {
			return total, err
		}
		total += n
		m.Step = field
	}
	{
		field, n, err := scale.DecodeStructSliceWithLimit[EvalResult](dec, maxEvalResults)
		if err != nil {
			return total, err
		}
		total += n
		m.Evals = field
	}
	return total, nil
}

func (w *WitnessProof) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := scale.EncodeCompact32(enc, uint32(w.WitnessIndex))
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := w.Identity.EncodeScale(enc)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := w.ParticipantBloom.EncodeScale(enc)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := w.BroadcastBloom.EncodeScale(enc)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := w.Metadata.EncodeScale(enc)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (w *WitnessProof) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		field, n, err := scale.DecodeCompact32(dec)
		if err != nil {
			return total, err
		}
		total += n
		w.WitnessIndex = ClientIndex(field)
	}
	{
		n, err := w.Identity.DecodeScale(dec)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := w.ParticipantBloom.DecodeScale(dec)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := w.BroadcastBloom.DecodeScale(dec)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := w.Metadata.DecodeScale(dec)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

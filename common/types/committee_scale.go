package types

import "github.com/spacemeshos/go-scale"

func (c *Committee) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := encodeClientIndexSlice(enc, c.TrainerIndices)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := encodeClientIndexSlice(enc, c.WitnessIndices)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := encodeClientIndexSlice(enc, c.VerifierIndices)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (c *Committee) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		field, n, err := decodeClientIndexSlice(dec, maxCommitteeSize)
		if err != nil {
			return total, err
		}
		total += n
		c.TrainerIndices = field
	}
	{
		field, n, err := decodeClientIndexSlice(dec, maxCommitteeSize)
		if err != nil {
			return total, err
		}
		total += n
		c.WitnessIndices = field
	}
	{
		field, n, err := decodeClientIndexSlice(dec, maxCommitteeSize)
		if err != nil {
			return total, err
		}
		total += n
		c.VerifierIndices = field
	}
	return total, nil
}

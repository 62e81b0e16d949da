package types

import "github.com/spacemeshos/go-scale"

func (c *Client) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := c.Identity.EncodeScale(enc)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeCompact32(enc, c.JoinEpoch)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeCompact32(enc, c.HealthScore)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeCompact32(enc, c.MissedWitnessRounds)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeBool(enc, c.Exited)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeCompact64(enc, uint64(c.ExitReason))
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (c *Client) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		n, err := c.Identity.DecodeScale(dec)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		field, n, err := scale.DecodeCompact32(dec)
		if err != nil {
			return total, err
		}
		total += n
		c.JoinEpoch = field
	}
	{
		field, n, err := scale.DecodeCompact32(dec)
		if err != nil {
			return total, err
		}
		total += n
		c.HealthScore = field
	}
	{
		field, n, err := scale.DecodeCompact32(dec)
		if err != nil {
			return total, err
		}
		total += n
		c.MissedWitnessRounds = field
	}
	{
		field, n, err := scale.DecodeBool(dec)
		if err != nil {
			return total, err
		}
		total += n
		c.Exited = field
	}
	{
		field, n, err := scale.DecodeCompact64(dec)
		if err != nil {
			return total, err
		}
		total += n
		c.ExitReason = ExitReason(field)
	}
	return total, nil
}

func (p *PendingJoin) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := p.Identity.EncodeScale(enc)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeCompact64(enc, p.JoinedAt)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (p *PendingJoin) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		n, err := p.Identity.DecodeScale(dec)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		field, n, err := scale.DecodeCompact64(dec)
		if err != nil {
			return total, err
		}
		total += n
		p.JoinedAt = field
	}
	return total, nil
}

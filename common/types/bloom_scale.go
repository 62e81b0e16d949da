package types

import "github.com/spacemeshos/go-scale"

func (b *BloomFilter) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := scale.EncodeCompact32(enc, b.SizeBits)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeCompact32(enc, b.HashCount)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeCompact32(enc, uint32(len(b.Bits)))
		if err != nil {
			return total, err
		}
		total += n
	}
	for _, word := range b.Bits {
		n, err := scale.EncodeCompact64(enc, word)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (b *BloomFilter) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		field, n, err := scale.DecodeCompact32(dec)
		if err != nil {
			return total, err
		}
		total += n
		b.SizeBits = field
	}
	{
		field, n, err := scale.DecodeCompact32(dec)
		if err != nil {
			return total, err
		}
		total += n
		b.HashCount = field
	}
	count, n, err := scale.DecodeCompact32(dec)
	if err != nil {
		return total, err
	}
	total += n
	if count > maxBloomWords {
		count = maxBloomWords
	}
	b.Bits = make([]uint64, count)
	for i := range b.Bits {
		word, n, err := scale.DecodeCompact64(dec)
		if err != nil {
			return total, err
		}
		total += n
		b.Bits[i] = word
	}
	return total, nil
}

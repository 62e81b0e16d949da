package types

import "github.com/spacemeshos/go-scale"

func (c *Config) EncodeScale(enc *scale.Encoder) (total int, err error) {
	fields := []uint64{
		uint64(c.MinClients), c.WarmupTime, c.CooldownTime, c.MaxRoundTrainTime,
		c.RoundWitnessTime, uint64(c.RoundsPerEpoch), c.TotalSteps, uint64(c.WitnessNodes),
		uint64(c.VerificationPercent), uint64(c.WitnessQuorum),
		c.GlobalBatchSizeStart, c.GlobalBatchSizeEnd, c.GlobalBatchSizeWarmupTokens, c.MaxSeqLen,
		uint64(c.BloomSizeBits), uint64(c.BloomHashCount), uint64(c.MaxInactivityRounds),
	}
	for _, f := range fields {
		n, err := scale.EncodeCompact64(enc, f)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (c *Config) DecodeScale(dec *scale.Decoder) (total int, err error) {
	vals := make([]uint64, 17)
	for i := range vals {
		field, n, err := scale.DecodeCompact64(dec)
		if err != nil {
			return total, err
		}
		total += n
		vals[i] = field
	}
	c.MinClients = uint32(vals[0])
	c.WarmupTime = vals[1]
	c.CooldownTime = vals[2]
	c.MaxRoundTrainTime = vals[3]
	c.RoundWitnessTime = vals[4]
	c.RoundsPerEpoch = uint32(vals[5])
	c.TotalSteps = vals[6]
	c.WitnessNodes = uint32(vals[7])
	c.VerificationPercent = uint8(vals[8])
	c.WitnessQuorum = uint32(vals[9])
	c.GlobalBatchSizeStart = vals[10]
	c.GlobalBatchSizeEnd = vals[11]
	c.GlobalBatchSizeWarmupTokens = vals[12]
	c.MaxSeqLen = vals[13]
	c.BloomSizeBits = uint32(vals[14])
	c.BloomHashCount = uint32(vals[15])
	c.MaxInactivityRounds = uint32(vals[16])
	return total, nil
}

func (d *CheckpointDescriptor) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := scale.EncodeCompact64(enc, uint64(d.Kind))
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeStringWithLimit(enc, d.HubRepoID, maxStringLen)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := d.P2PManifestHash.EncodeScale(enc)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (d *CheckpointDescriptor) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		field, n, err := scale.DecodeCompact64(dec)
		if err != nil {
			return total, err
		}
		total += n
		d.Kind = CheckpointKind(field)
	}
	{
		field, n, err := scale.DecodeStringWithLimit(dec, maxStringLen)
		if err != nil {
			return total, err
		}
		total += n
		d.HubRepoID = string(field)
	}
	{
		n, err := d.P2PManifestHash.DecodeScale(dec)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (m *ModelDescriptor) EncodeScale(enc *scale.Encoder) (total int, err error) {
	tags := []uint64{uint64(m.Architecture), uint64(m.DataSource), uint64(m.Optimizer), uint64(m.LRSchedule)}
	for _, t := range tags {
		n, err := scale.EncodeCompact64(enc, t)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := m.Checkpoint.EncodeScale(enc)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (m *ModelDescriptor) DecodeScale(dec *scale.Decoder) (total int, err error) {
	tags := make([]uint64, 4)
	for i := range tags {
		field, n, err := scale.DecodeCompact64(dec)
		if err != nil {
			return total, err
		}
		total += n
		tags[i] = field
	}
	m.Architecture = ModelArchitecture(tags[0])
	m.DataSource = DataSource(tags[1])
	m.Optimizer = OptimizerKind(tags[2])
	m.LRSchedule = LRScheduleKind(tags[3])
	n, err := m.Checkpoint.DecodeScale(dec)
	if err != nil {
		return total, err
	}
	total += n
	return total, nil
}

func (m *Metadata) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := scale.EncodeStringWithLimit(enc, m.Name, maxStringLen)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeStringWithLimit(enc, m.Description, maxStringLen)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeCompact64(enc, m.NumParameters)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (m *Metadata) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		field, n, err := scale.DecodeStringWithLimit(dec, maxStringLen)
		if err != nil {
			return total, err
		}
		total += n
		m.Name = string(field)
	}
	{
		field, n, err := scale.DecodeStringWithLimit(dec, maxStringLen)
		if err != nil {
			return total, err
		}
		total += n
		m.Description = string(field)
	}
	{
		field, n, err := scale.DecodeCompact64(dec)
		if err != nil {
			return total, err
		}
		total += n
		m.NumParameters = field
	}
	return total, nil
}

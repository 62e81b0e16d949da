package types

import "github.com/spacemeshos/go-scale"

// StateEncodingVersion is the leading version tag codec.EncodeState
// writes ahead of the CoordinatorState body. Bump it, and branch on it in
// codec.DecodeState, whenever the layout below changes (spec.md §4.5, §6).
const StateEncodingVersion uint16 = 1

func (s *CoordinatorState) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := scale.EncodeStringWithLimit(enc, string(s.RunId), MaxRunIdLen)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := s.Config.EncodeScale(enc)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := s.ModelDescriptor.EncodeScale(enc)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := s.Metadata.EncodeScale(enc)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := s.Progress.EncodeScale(enc)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeCompact64(enc, uint64(s.Phase))
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeCompact64(enc, s.PhaseStartedAt)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeStructSliceWithLimit(enc, s.PendingJoins, maxPendingJoins)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeStructSliceWithLimit(enc, s.Clients, maxClients)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := s.CurrentRound.EncodeScale(enc)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeStructSliceWithLimit(enc, s.RecentRounds, maxRecentRounds)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeBool(enc, s.PausedPending)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeCompact64(enc, uint64(s.ResumeToPhase))
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := s.MainAuthority.EncodeScale(enc)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeCompact64(enc, s.PreviousSeed)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (s *CoordinatorState) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		field, n, err := scale.DecodeStringWithLimit(dec, MaxRunIdLen)
		if err != nil {
			return total, err
		}
		total += n
		s.RunId = RunId(field)
	}
	{
		n, err := s.Config.DecodeScale(dec)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := s.ModelDescriptor.DecodeScale(dec)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := s.Metadata.DecodeScale(dec)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := s.Progress.DecodeScale(dec)
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
		s.Phase = Phase(field)
	}
	{
		field, n, err := scale.DecodeCompact64(dec)
		if err != nil {
			return total, err
		}
		total += n
		s.PhaseStartedAt = field
	}
	{
		field, n, err := scale.DecodeStructSliceWithLimit[PendingJoin](dec, maxPendingJoins)
		if err != nil {
			return total, err
		}
		total += n
		s.PendingJoins = field
	}
	{
		field, n, err := scale.DecodeStructSliceWithLimit[Client](dec, maxClients)
		if err != nil {
			return total, err
		}
		total += n
		s.Clients = field
	}
	{
		n, err := s.CurrentRound.DecodeScale(dec)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		field, n, err := scale.DecodeStructSliceWithLimit[Round](dec, maxRecentRounds)
		if err != nil {
			return total, err
		}
		total += n
		s.RecentRounds = field
	}
	{
		field, n, err := scale.DecodeBool(dec)
		if err != nil {
			return total, err
		}
		total += n
		s.PausedPending = field
	}
	{
		field, n, err := scale.DecodeCompact64(dec)
		if err != nil {
			return total, err
		}
		total += n
		s.ResumeToPhase = Phase(field)
	}
	{
		n, err := s.MainAuthority.DecodeScale(dec)
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
		s.PreviousSeed = field
	}
	return total, nil
}

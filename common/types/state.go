package types

// CoordinatorState is the complete state the Coordinator owns
// exclusively (spec.md §3, §9). External components hold only
// read-only snapshots. All variable-length containers are bounded and
// length-prefixed when serialized (see codec and the *_scale.go files
// in this package).
type CoordinatorState struct {
	RunId           RunId
	Config          Config
	ModelDescriptor ModelDescriptor
	Metadata        Metadata

	Progress       Progress
	Phase          Phase
	PhaseStartedAt uint64

	PendingJoins []PendingJoin
	Clients      []Client

	CurrentRound Round
	RecentRounds []Round // bounded ring, capacity >= one epoch's rounds

	PausedPending bool
	ResumeToPhase Phase // valid only while Phase == PhasePaused

	MainAuthority  ClientIdentity
	PreviousSeed   uint64
}

// RecentRoundsCapacity returns the ring's capacity for a given config,
// sized to hold at least one epoch of rounds (spec.md §3 "bounded ring
// (size >= 1 epoch)").
func RecentRoundsCapacity(cfg *Config) int {
	if cfg.RoundsPerEpoch == 0 {
		return 1
	}
	return int(cfg.RoundsPerEpoch)
}

// PushRecentRound appends a finished round to the bounded ring,
// evicting the oldest entry once capacity is reached.
func (s *CoordinatorState) PushRecentRound(r Round) {
	cap := RecentRoundsCapacity(&s.Config)
	s.RecentRounds = append(s.RecentRounds, r)
	if len(s.RecentRounds) > cap {
		s.RecentRounds = s.RecentRounds[len(s.RecentRounds)-cap:]
	}
}

// ActiveClientCount returns the number of non-exited clients.
func (s *CoordinatorState) ActiveClientCount() int {
	n := 0
	for _, c := range s.Clients {
		if !c.Exited {
			n++
		}
	}
	return n
}

// FindClient returns the index and client for identity among the
// currently registered (non-exited) clients, if present.
func (s *CoordinatorState) FindClient(identity ClientIdentity) (ClientIndex, *Client, bool) {
	for i := range s.Clients {
		if s.Clients[i].Exited {
			continue
		}
		if s.Clients[i].Identity.Equal(identity) {
			return ClientIndex(i), &s.Clients[i], true
		}
	}
	return 0, nil, false
}

// IsPendingJoin reports whether identity already has a queued join.
func (s *CoordinatorState) IsPendingJoin(identity ClientIdentity) bool {
	for _, p := range s.PendingJoins {
		if p.Identity.Equal(identity) {
			return true
		}
	}
	return false
}

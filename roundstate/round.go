// Package roundstate implements the per-round bookkeeping the
// Coordinator mutates during RoundTrain and RoundWitness: witness proof accumulation
// and dedup, the quorum and opportunistic-witness fast-path checks,
// and the health-scoring pass that runs at round close. It operates on
// *types.Round/[]types.Client in place, the same narrow-surface style
// the teacher's mesh package applies to its own in-memory layer state.
package roundstate

import (
	"fmt"

	"github.com/psyche-run/coordinator/bloom"
	"github.com/psyche-run/coordinator/common/types"
)

// AcceptWitness validates and appends proof to round.Witnesses,
// enforcing spec.md §4.1's witness() rules: only a client elected to
// the round's WitnessIndices may submit, and only once.
func AcceptWitness(round *types.Round, witnessClientIndex types.ClientIndex, proof types.WitnessProof) error {
	if _, ok := round.Committee.IsWitness(witnessClientIndex); !ok {
		return fmt.Errorf("%w: client %d was not elected a witness for round %d", types.ErrNotAWitness, witnessClientIndex, round.Height)
	}
	if _, exists := round.WitnessByIdentity(proof.Identity); exists {
		return fmt.Errorf("%w: identity %s already submitted a witness proof for round %d", types.ErrDuplicateWitness, proof.Identity, round.Height)
	}
	round.Witnesses = append(round.Witnesses, proof)
	return nil
}

// HasQuorum reports whether round has accumulated at least quorum
// accepted witness proofs (spec.md §4.1's ordinary round-close rule).
func HasQuorum(round *types.Round, quorum uint32) bool {
	return uint32(len(round.Witnesses)) >= quorum
}

// OpportunisticCoverage unions every accepted witness's BroadcastBloom
// and reports whether the union might-contain every active client,
// implementing condition (b) of spec.md §4.1's opportunistic-witness
// fast path: the witnesses present so far collectively attest to having
// observed the entire active client set, checked per client identity
// rather than per submitted batch. Coverage alone does not close a
// round; ReadyToClose also requires quorum.
func OpportunisticCoverage(round *types.Round, clients []types.Client) bool {
	if len(round.Witnesses) == 0 {
		return false
	}
	union := bloom.New(round.Witnesses[0].BroadcastBloom.SizeBits, round.Witnesses[0].BroadcastBloom.HashCount)
	for _, w := range round.Witnesses {
		bloom.Union(union, &w.BroadcastBloom)
	}
	for i := range clients {
		if clients[i].Exited {
			continue
		}
		if !bloom.MightContain(union, clients[i].Identity) {
			return false
		}
	}
	return true
}

// ReadyToClose reports whether round should transition out of
// RoundTrain via the opportunistic fast path: quorum must ALSO be
// met, not just coverage. Coverage alone is insufficient — a single
// colluding witness whose BroadcastBloom happens to cover every
// client would otherwise close the round on its own, defeating the
// anti-collusion purpose of requiring quorum in the first place. The
// ordinary (non-fast-path) close on timeout is handled separately by
// the caller and doesn't go through this check.
func ReadyToClose(round *types.Round, quorum uint32, clients []types.Client) bool {
	return HasQuorum(round, quorum) && OpportunisticCoverage(round, clients)
}

// ScoreHealth recomputes every active client's HealthScore from round's
// accepted witnesses, per spec.md §4.1's health-scoring algorithm:
// score(client) = count of accepted witnesses whose ParticipantBloom
// contains client. A client is healthy iff score >= ceil(accepted/2).
// Clients below that threshold have MissedWitnessRounds incremented;
// clients at or above it have the counter reset to 0.
func ScoreHealth(clients []types.Client, round *types.Round) {
	accepted := len(round.Witnesses)
	threshold := (accepted + 1) / 2 // ceil(accepted/2)
	if accepted == 0 {
		// no attestations at all: nobody can clear ceil(0/2)=0 against a
		// zero score, so every active client is unhealthy this round
		// rather than vacuously healthy.
		threshold = 1
	}

	for i := range clients {
		if clients[i].Exited {
			continue
		}
		score := 0
		for _, w := range round.Witnesses {
			if bloom.MightContain(&w.ParticipantBloom, clients[i].Identity) {
				score++
			}
		}
		clients[i].HealthScore = uint32(score)
		if score >= threshold {
			clients[i].MissedWitnessRounds = 0
		} else {
			clients[i].MissedWitnessRounds++
		}
	}
}

// ClientsToEvict returns the indices of active clients whose consecutive
// unhealthy-round streak has reached maxInactivityRounds, per spec.md
// §4.1's eviction rule.
func ClientsToEvict(clients []types.Client, maxInactivityRounds uint32) []types.ClientIndex {
	var out []types.ClientIndex
	for i := range clients {
		if clients[i].Exited {
			continue
		}
		if clients[i].MissedWitnessRounds >= maxInactivityRounds {
			out = append(out, types.ClientIndex(i))
		}
	}
	return out
}

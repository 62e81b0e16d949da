// Package registry manages the Coordinator's client membership: the
// ordered slice of active Clients plus a FIFO of PendingJoins admitted
// only at the WaitingForMembers->Warmup boundary. The FIFO is a container/list.List the same
// way the teacher's txs/cache.go queues per-account transactions, and
// index/slice bookkeeping borrows golang.org/x/exp/maps for the
// identity-to-index lookup rebuilds the same cache does after eviction.
package registry

import (
	"container/list"

	"golang.org/x/exp/maps"

	"github.com/psyche-run/coordinator/common/types"
)

// Registry tracks active clients and clients waiting to join at the
// next WaitingForMembers->Warmup boundary. It owns no pointers into CoordinatorState;
// callers pass slices in and receive updated slices back, keeping the
// arena-of-indices ownership model spec.md's design notes require.
type Registry struct {
	pending *list.List // of types.PendingJoin
	byID    map[types.ClientIdentity]types.ClientIndex
}

// New constructs an empty Registry.
func New() *Registry {
	return &Registry{
		pending: list.New(),
		byID:    make(map[types.ClientIdentity]types.ClientIndex),
	}
}

// Rebuild resyncs the identity index after clients has been mutated
// directly (e.g. after decoding a CoordinatorState snapshot).
func (r *Registry) Rebuild(clients []types.Client) {
	maps.Clear(r.byID)
	for i, c := range clients {
		if c.Exited {
			continue
		}
		r.byID[c.Identity] = types.ClientIndex(i)
	}
}

// EnqueuePending appends identity to the pending-join FIFO, rejecting
// duplicates already active or already queued (spec.md §4.1 join()'s
// "already a member" / duplicate-join edge cases).
func (r *Registry) EnqueuePending(identity types.ClientIdentity, joinedAt uint64) error {
	if _, ok := r.byID[identity]; ok {
		return types.ErrAlreadyMember
	}
	for e := r.pending.Front(); e != nil; e = e.Next() {
		if e.Value.(types.PendingJoin).Identity == identity {
			return types.ErrAlreadyMember
		}
	}
	r.pending.PushBack(types.PendingJoin{Identity: identity, JoinedAt: joinedAt})
	return nil
}

// DrainPending removes and returns every queued PendingJoin in FIFO
// order, for admission all at once at the WaitingForMembers->Warmup
// boundary.
func (r *Registry) DrainPending() []types.PendingJoin {
	out := make([]types.PendingJoin, 0, r.pending.Len())
	for e := r.pending.Front(); e != nil; {
		next := e.Next()
		out = append(out, e.Value.(types.PendingJoin))
		r.pending.Remove(e)
		e = next
	}
	return out
}

// PendingLen reports how many joins are currently queued.
func (r *Registry) PendingLen() int {
	return r.pending.Len()
}

// Admit appends newly-admitted clients to clients and indexes them,
// returning the extended slice. joinEpoch is the epoch the admitted
// clients are first eligible to participate in.
func (r *Registry) Admit(clients []types.Client, joins []types.PendingJoin, joinEpoch uint32) []types.Client {
	for _, j := range joins {
		idx := types.ClientIndex(len(clients))
		clients = append(clients, types.Client{
			Identity:  j.Identity,
			JoinEpoch: joinEpoch,
		})
		r.byID[j.Identity] = idx
	}
	return clients
}

// Lookup returns the index of identity among active clients, if any.
func (r *Registry) Lookup(identity types.ClientIdentity) (types.ClientIndex, bool) {
	idx, ok := r.byID[identity]
	return idx, ok
}

// MarkExited flags clients[idx] as exited and removes it from the
// identity index, without compacting the slice — indices into
// in-flight Rounds and Committees must remain stable (spec.md's
// "committee membership stable across mid-round client exits" note).
func (r *Registry) MarkExited(clients []types.Client, idx types.ClientIndex, reason types.ExitReason) {
	clients[idx].Exited = true
	clients[idx].ExitReason = reason
	delete(r.byID, clients[idx].Identity)
}

// ActiveIndices returns the indices of every non-exited client, in
// slice order.
func ActiveIndices(clients []types.Client) []types.ClientIndex {
	out := make([]types.ClientIndex, 0, len(clients))
	for i, c := range clients {
		if !c.Exited {
			out = append(out, types.ClientIndex(i))
		}
	}
	return out
}

package registry

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/psyche-run/coordinator/common/types"
)

func idOf(b byte) types.ClientIdentity {
	var id types.ClientIdentity
	id[0] = b
	return id
}

func TestEnqueuePendingRejectsDuplicate(t *testing.T) {
	r := New()
	require.NoError(t, r.EnqueuePending(idOf(1), 100))
	require.ErrorIs(t, r.EnqueuePending(idOf(1), 101), types.ErrAlreadyMember)
}

func TestEnqueuePendingRejectsAlreadyActive(t *testing.T) {
	r := New()
	clients := []types.Client{{Identity: idOf(1)}}
	r.Rebuild(clients)
	require.ErrorIs(t, r.EnqueuePending(idOf(1), 100), types.ErrAlreadyMember)
}

func TestDrainPendingFIFOOrder(t *testing.T) {
	r := New()
	require.NoError(t, r.EnqueuePending(idOf(1), 1))
	require.NoError(t, r.EnqueuePending(idOf(2), 2))
	require.NoError(t, r.EnqueuePending(idOf(3), 3))

	drained := r.DrainPending()
	require.Len(t, drained, 3)
	require.Equal(t, idOf(1), drained[0].Identity)
	require.Equal(t, idOf(2), drained[1].Identity)
	require.Equal(t, idOf(3), drained[2].Identity)
	require.Equal(t, 0, r.PendingLen())
}

func TestAdmitIndexesNewClients(t *testing.T) {
	r := New()
	clients := []types.Client{{Identity: idOf(1)}}
	r.Rebuild(clients)

	clients = r.Admit(clients, []types.PendingJoin{{Identity: idOf(2)}}, 3)
	require.Len(t, clients, 2)

	idx, ok := r.Lookup(idOf(2))
	require.True(t, ok)
	require.Equal(t, types.ClientIndex(1), idx)
	require.Equal(t, uint32(3), clients[1].JoinEpoch)
}

func TestMarkExitedRemovesFromLookupButKeepsSlot(t *testing.T) {
	r := New()
	clients := []types.Client{{Identity: idOf(1)}, {Identity: idOf(2)}}
	r.Rebuild(clients)

	r.MarkExited(clients, 0, types.ExitReasonInactive)
	require.True(t, clients[0].Exited)
	require.Equal(t, types.ExitReasonInactive, clients[0].ExitReason)

	_, ok := r.Lookup(idOf(1))
	require.False(t, ok)

	// slot 1 is untouched, and the slice retained its length.
	require.Len(t, clients, 2)
	require.False(t, clients[1].Exited)
}

func TestActiveIndicesSkipsExited(t *testing.T) {
	clients := []types.Client{
		{Identity: idOf(1)},
		{Identity: idOf(2), Exited: true},
		{Identity: idOf(3)},
	}
	require.Equal(t, []types.ClientIndex{0, 2}, ActiveIndices(clients))
}

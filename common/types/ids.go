package types

import (
	"bytes"
	"encoding/hex"
)

// RunId uniquely identifies a Coordinator instance for the lifetime of
// a run. Opaque, short, stable.
type RunId string

// MaxRunIdLen bounds the serialized length of a RunId.
const MaxRunIdLen = 64

// ClientIdentity is an opaque 32-byte signer key. Equality and
// ordering are derived from the raw bytes, mirroring the teacher's
// types.NodeID.
type ClientIdentity [32]byte

// Bytes returns the identity's raw byte representation.
func (id ClientIdentity) Bytes() []byte {
	return id[:]
}

// Less reports whether id sorts strictly before other under
// byte-wise lexicographic order.
func (id ClientIdentity) Less(other ClientIdentity) bool {
	return bytes.Compare(id[:], other[:]) < 0
}

// Equal reports byte-wise identity equality.
func (id ClientIdentity) Equal(other ClientIdentity) bool {
	return id == other
}

// String renders a truncated hex form suitable for log lines, mirroring
// the teacher's NodeID.ShortString().
func (id ClientIdentity) String() string {
	return hex.EncodeToString(id[:4])
}

// ClientIndex is a position within CoordinatorState.Clients at the
// start of a round; committees are expressed purely in terms of these
// indices so that mid-round exits cannot invalidate committee
// membership (§4.4).
type ClientIndex uint32

// EmptyIdentity is the zero-value ClientIdentity, never a legitimate key.
var EmptyIdentity = ClientIdentity{}

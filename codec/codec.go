// Package codec wraps github.com/spacemeshos/go-scale with the
// version-tagged encode/decode helpers used throughout the Coordinator
// (codec.Encode, codec.Decode, codec.MustEncode), the same call shape
// the teacher uses in hare3/hare.go ("codec.Decode(buf, msg)",
// "codec.MustEncode(proof)"). Decoding additionally enforces the
// leading version header discipline spec.md §4.5/§6 requires: a
// decoder must reject any input whose declared version it does not
// implement, adapted from the teacher's sql.LoadDBSchemaScript
// "PRAGMA user_version" versioning (sql/schema.go) translated to an
// in-band header since the Coordinator performs no I/O of its own.
package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/spacemeshos/go-scale"

	"github.com/psyche-run/coordinator/common/types"
)

// Encodable is implemented by every scale-encodable type in this module.
type Encodable interface {
	EncodeScale(*scale.Encoder) (int, error)
}

// Decodable is implemented by every scale-decodable type in this module.
type Decodable interface {
	DecodeScale(*scale.Decoder) (int, error)
}

// Encode serializes v with go-scale. Used for values that don't carry
// their own version header (messages); CoordinatorState uses
// EncodeState/DecodeState instead.
func Encode(v Encodable) ([]byte, error) {
	var buf bytes.Buffer
	enc := scale.NewEncoder(&buf)
	if _, err := v.EncodeScale(enc); err != nil {
		return nil, fmt.Errorf("codec encode: %w", err)
	}
	return buf.Bytes(), nil
}

// MustEncode panics on encode failure; reserved for values the caller
// has already validated (mirrors the teacher's codec.MustEncode used
// for signed, pre-validated payloads).
func MustEncode(v Encodable) []byte {
	b, err := Encode(v)
	if err != nil {
		panic(err)
	}
	return b
}

// Decode deserializes buf into v with go-scale.
func Decode(buf []byte, v Decodable) error {
	dec := scale.NewDecoder(bytes.NewReader(buf))
	if _, err := v.DecodeScale(dec); err != nil {
		return fmt.Errorf("%w: %s", types.ErrMalformedMessage, err)
	}
	return nil
}

// EncodeState serializes a CoordinatorState with a leading 2-byte
// little-endian version header, per spec.md §6 ("readers identify
// version from a leading u16 and may refuse unknown versions").
func EncodeState(s *types.CoordinatorState) ([]byte, error) {
	body, err := Encode(s)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 2, 2+len(body))
	binary.LittleEndian.PutUint16(out, types.StateEncodingVersion)
	return append(out, body...), nil
}

// DecodeState reads the version header and, if supported, decodes the
// remainder into a CoordinatorState. Unknown versions are a fatal,
// non-recoverable condition per spec.md §7 ("Version/serialization
// errors are fatal: the host must refuse to run").
func DecodeState(buf []byte) (*types.CoordinatorState, error) {
	if len(buf) < 2 {
		return nil, fmt.Errorf("%w: truncated state header", types.ErrMalformedMessage)
	}
	version := binary.LittleEndian.Uint16(buf[:2])
	if version != types.StateEncodingVersion {
		return nil, fmt.Errorf("%w: got version %d, support %d", types.ErrVersionMismatch, version, types.StateEncodingVersion)
	}
	state := &types.CoordinatorState{}
	if err := Decode(buf[2:], state); err != nil {
		return nil, err
	}
	return state, nil
}

// Package ledgeraccount implements the binary layout of the on-ledger
// DID account: a fixed little-endian header followed by
// a variable-length public key vector.
package ledgeraccount

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/solwall/soldid/internal/keys"
)

// CurrentVersion is the data version this program writes and accepts.
const CurrentVersion uint16 = 1

// State is the coarse on-ledger DID state.
type State uint8

const (
	StateInception State = iota
	StateRotated
	StateDecommissioned
)

func (s State) String() string {
	switch s {
	case StateInception:
		return "inception"
	case StateRotated:
		return "rotated"
	case StateDecommissioned:
		return "decommissioned"
	default:
		return "unknown"
	}
}

// Header byte offsets.
const (
	offInitialized = 0
	offVersion     = 1
	offState       = 3
	offKeyType     = 4
	offAuthority   = 5
	offPrefix      = 37
	offBump        = 69
	offKeyCount    = 70
	offKeys        = 74

	headerSize  = offKeys
	pubKeySize  = 32
)

// Errors returned while packing/unpacking a record.
var (
	ErrDataVersionInvalid = errors.New("DID account data version invalid")
	ErrBufferTooSmall     = errors.New("account buffer too small for record")
)

// Record mirrors the on-ledger DID account exactly.
type Record struct {
	Initialized bool
	Version     uint16
	State       State
	KeyType     keys.Type
	Authority   [32]byte
	Prefix      [32]byte
	Bump        uint8
	Keys        [][32]byte
}

// Size returns the number of bytes Pack needs to serialize r.
func (r *Record) Size() int {
	return headerSize + len(r.Keys)*pubKeySize
}

// Pack serializes r into data, growing/truncating is the caller's
// responsibility (data must be at least r.Size() bytes).
func (r *Record) Pack(data []byte) error {
	need := r.Size()
	if len(data) < need {
		return fmt.Errorf("%w: need %d, have %d", ErrBufferTooSmall, need, len(data))
	}

	if r.Initialized {
		data[offInitialized] = 1
	} else {
		data[offInitialized] = 0
	}
	binary.LittleEndian.PutUint16(data[offVersion:], r.Version)
	data[offState] = byte(r.State)
	data[offKeyType] = byte(r.KeyType)
	copy(data[offAuthority:offAuthority+32], r.Authority[:])
	copy(data[offPrefix:offPrefix+32], r.Prefix[:])
	data[offBump] = r.Bump
	binary.LittleEndian.PutUint32(data[offKeyCount:], uint32(len(r.Keys)))

	for i, k := range r.Keys {
		start := offKeys + i*pubKeySize
		copy(data[start:start+pubKeySize], k[:])
	}
	return nil
}

// Unpack deserializes a Record from data. It does not reject a version
// mismatch itself — that is a program-level policy decision
// (ledgerprogram checks CurrentVersion before trusting the record).
func Unpack(data []byte) (*Record, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrBufferTooSmall, headerSize, len(data))
	}

	r := &Record{
		Initialized: data[offInitialized] != 0,
		Version:     binary.LittleEndian.Uint16(data[offVersion:]),
		State:       State(data[offState]),
		KeyType:     keys.Type(data[offKeyType]),
		Bump:        data[offBump],
	}
	copy(r.Authority[:], data[offAuthority:offAuthority+32])
	copy(r.Prefix[:], data[offPrefix:offPrefix+32])

	count := binary.LittleEndian.Uint32(data[offKeyCount:])
	need := offKeys + int(count)*pubKeySize
	if len(data) < need {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrBufferTooSmall, need, len(data))
	}

	r.Keys = make([][32]byte, count)
	for i := range r.Keys {
		start := offKeys + i*pubKeySize
		copy(r.Keys[i][:], data[start:start+pubKeySize])
	}
	return r, nil
}

// OverAllocatedSize returns the storage size to request at inception:
// a generous multiple of the initial record size so later rotations
// with larger key vectors fit without reallocation — one of two valid
// account re-sizing policies; this package also supports growing the
// buffer on Repack for the other.
func OverAllocatedSize(initialKeyCount int, multiplier int) int {
	r := Record{Keys: make([][32]byte, initialKeyCount)}
	return r.Size() * multiplier
}

// Repack grows data if needed to fit r, preserving the
// initialized/version/state/authority/prefix prefix, and packs r into
// the (possibly grown) result.
func Repack(data []byte, r *Record) ([]byte, error) {
	need := r.Size()
	if len(data) < need {
		grown := make([]byte, need)
		copy(grown, data)
		data = grown
	}
	if err := r.Pack(data); err != nil {
		return nil, err
	}
	return data, nil
}

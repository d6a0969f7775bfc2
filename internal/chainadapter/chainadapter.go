// Package chainadapter abstracts the ledger: inception/rotation/
// decommission instructions, signer identity, program identifier, and
// account fetch. A small interface — one error sentinel set,
// context-based calls — with a single concrete implementation living
// in a sibling package (internal/simchain).
package chainadapter

import (
	"context"
	"errors"

	"github.com/solwall/soldid/internal/keys"
	"github.com/solwall/soldid/internal/kerievent"
)

// Errors surfaced by Adapter implementations.
var (
	ErrDIDAccountExists    = errors.New("DID account already exists")
	ErrDIDAccountNotExists = errors.New("DID account does not exist")
	ErrInvalidAuthority    = errors.New("signer is not the DID's authority")
	ErrInvalidDidReference = errors.New("key type or prefix does not match stored record")
)

// AccountRecord is the subset of the on-ledger DID account exposed to
// callers through Fetch, independent of the program's wire layout.
type AccountRecord struct {
	Initialized bool
	Version     uint16
	State       string
	KeyType     keys.Type
	Authority   string
	Prefix      [32]byte
	Keys        [][32]byte
}

// Adapter is the chain collaborator. It is optional: unit tests pass a
// nil Adapter to exercise pure event construction without submission,
// expressed as an explicit nullable parameter at every call site that
// uses it, never a hidden default.
type Adapter interface {
	// InceptionInst computes the DID's PDA, emits the signature
	// verification + inception instructions, submits, and returns
	// the transaction signature and the resulting account identifier.
	InceptionInst(ctx context.Context, ks *keys.KeySet, event *kerievent.EventMessage) (txSignature, account string, err error)

	// RotationInst emits the signature verification + rotation
	// instructions against the DID identified by inceptionDigest.
	RotationInst(ctx context.Context, inceptionDigest string, ks *keys.KeySet, event *kerievent.EventMessage) (txSignature string, err error)

	// DecommissionInst emits the signature verification +
	// decommission instructions against the DID identified by
	// inceptionDigest. ks carries the key type the DID was incepted
	// with, needed to match the stored record's KeyType.
	DecommissionInst(ctx context.Context, inceptionDigest string, ks *keys.KeySet, event *kerievent.EventMessage) (txSignature string, err error)

	// Fetch returns the current on-ledger record for a DID.
	Fetch(ctx context.Context, inceptionDigest string) (*AccountRecord, error)

	// Close closes the ledger account backing a DID (admin operation).
	Close(ctx context.Context, inceptionDigest string) error

	URL() string
	ProgramID() string
	InstSigner() string
	Version() uint16
}

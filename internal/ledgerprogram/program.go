// Package ledgerprogram implements the on-ledger DID program: entry
// instruction dispatch, signer/authority/version/state checks, and
// re-serialization of internal/ledgeraccount records. It follows a
// single-writer, mutex-guarded store shape, backing an in-memory
// PDA-keyed account map instead of a SQL table.
package ledgerprogram

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"sync"

	"github.com/solwall/soldid/internal/keys"
	"github.com/solwall/soldid/internal/ledgeraccount"
	"github.com/solwall/soldid/pkg/helpers"
)

// Errors returned by the program's handlers.
var (
	ErrMissingSignature      = errors.New("missing signature")
	ErrDidInvalidKey         = errors.New("invalid PDA derivation")
	ErrDidAlreadyInitialized = errors.New("DID account already initialized")
	ErrDidNotInitialized     = errors.New("DID account not initialized")
	ErrDidDataVersionInvalid = errors.New("DID account data version invalid")
	ErrInvalidAuthority      = errors.New("signer is not the stored authority")
	ErrInvalidDidReference   = errors.New("key type or prefix does not match stored record")
	ErrInvalidState          = errors.New("DID is not in a state that accepts this instruction")
)

// storageMultiplier is the over-allocation factor applied to newly
// created accounts (either over-allocation or reallocation is an
// acceptable resize policy; this program does both).
const storageMultiplier = 10

// account is one simulated PDA's raw bytes plus its derivation bump.
type account struct {
	data []byte
	bump uint8
}

// Program is the ledger program's in-memory account store. One
// Program instance models the entire on-chain program: accounts are
// addressed by their 32-byte prefix (the PDA seed), and only one
// instruction mutates a given account at a time.
type Program struct {
	mu        sync.Mutex
	accounts  map[[32]byte]*account
	programID [32]byte
}

// New creates an empty program keyed by programID (the PDA derivation
// domain separator).
func New(programID [32]byte) *Program {
	return &Program{
		accounts:  make(map[[32]byte]*account),
		programID: programID,
	}
}

// FindProgramAddress is a deterministic stand-in for Solana's
// find_program_address: it seeds on the prefix and this program's ID.
// The real primitive (bump search over an off-curve point) is an
// out-of-scope external collaborator; this
// hash-based derivation preserves the property callers depend on —
// same prefix always yields the same PDA and bump.
func (p *Program) FindProgramAddress(prefix [32]byte) (pda [32]byte, bump uint8) {
	h := sha256.New()
	h.Write(prefix[:])
	h.Write(p.programID[:])
	sum := h.Sum(nil)
	copy(pda[:], sum)
	return pda, sum[32%len(sum)]
}

// InceptionInput is the signer-verified inception instruction payload.
type InceptionInput struct {
	Signer  [32]byte
	KeyType keys.Type
	Prefix  [32]byte
	Keys    [][32]byte
}

// Inception allocates and initializes the PDA for prefix: signer
// required, PDA and bump derived here from the prefix (no
// caller-supplied address is checked), account must be empty, then
// the initial record is written.
func (p *Program) Inception(signed bool, in InceptionInput) ([32]byte, error) {
	if !signed {
		return [32]byte{}, ErrMissingSignature
	}

	pda, bump := p.FindProgramAddress(in.Prefix)

	p.mu.Lock()
	defer p.mu.Unlock()

	if existing, ok := p.accounts[pda]; ok && len(existing.data) > 0 {
		return [32]byte{}, fmt.Errorf("%w", ErrDidAlreadyInitialized)
	}

	rec := &ledgeraccount.Record{
		Initialized: true,
		Version:     ledgeraccount.CurrentVersion,
		State:       ledgeraccount.StateInception,
		KeyType:     in.KeyType,
		Authority:   in.Signer,
		Prefix:      in.Prefix,
		Bump:        bump,
		Keys:        in.Keys,
	}

	storage := ledgeraccount.OverAllocatedSize(len(in.Keys), storageMultiplier)
	data := make([]byte, storage)
	if err := rec.Pack(data); err != nil {
		return [32]byte{}, err
	}

	p.accounts[pda] = &account{data: data, bump: bump}
	return pda, nil
}

// MutationInput is the signer-verified rotation/decommission
// instruction payload.
type MutationInput struct {
	Signer  [32]byte
	KeyType keys.Type
	Prefix  [32]byte
	Keys    [][32]byte // empty for decommission
}

// Rotation overwrites the active key set and marks the account Rotated.
func (p *Program) Rotation(signed bool, in MutationInput) error {
	return p.mutate(signed, in, ledgeraccount.StateRotated)
}

// Decommission empties the active key set and marks the account
// Decommissioned. No further mutation is accepted afterward.
func (p *Program) Decommission(signed bool, in MutationInput) error {
	in.Keys = nil
	return p.mutate(signed, in, ledgeraccount.StateDecommissioned)
}

func (p *Program) mutate(signed bool, in MutationInput, newState ledgeraccount.State) error {
	if !signed {
		return ErrMissingSignature
	}

	pda, _ := p.FindProgramAddress(in.Prefix)

	p.mu.Lock()
	defer p.mu.Unlock()

	acc, ok := p.accounts[pda]
	if !ok {
		return ErrDidNotInitialized
	}

	rec, err := ledgeraccount.Unpack(acc.data)
	if err != nil {
		return err
	}
	if !rec.Initialized {
		return ErrDidNotInitialized
	}
	if rec.Version != ledgeraccount.CurrentVersion {
		return ErrDidDataVersionInvalid
	}
	if !helpers.ConstantTimeCompare(rec.Authority[:], in.Signer[:]) {
		return ErrInvalidAuthority
	}
	if rec.KeyType != in.KeyType || rec.Prefix != in.Prefix {
		return ErrInvalidDidReference
	}
	if rec.State == ledgeraccount.StateDecommissioned {
		return ErrInvalidState
	}

	rec.State = newState
	rec.Keys = in.Keys

	grown, err := ledgeraccount.Repack(acc.data, rec)
	if err != nil {
		return err
	}
	acc.data = grown
	return nil
}

// Fetch returns the unpacked record for prefix.
func (p *Program) Fetch(prefix [32]byte) (*ledgeraccount.Record, error) {
	pda, _ := p.FindProgramAddress(prefix)

	p.mu.Lock()
	defer p.mu.Unlock()

	acc, ok := p.accounts[pda]
	if !ok {
		return nil, ErrDidNotInitialized
	}
	return ledgeraccount.Unpack(acc.data)
}

// Close removes the account backing prefix (admin operation, mirrors
// the CLI's did-close subcommand).
func (p *Program) Close(prefix [32]byte) error {
	pda, _ := p.FindProgramAddress(prefix)

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.accounts[pda]; !ok {
		return ErrDidNotInitialized
	}
	delete(p.accounts, pda)
	return nil
}

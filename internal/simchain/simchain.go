// Package simchain is an in-process chainadapter.Adapter: it drives an
// internal/ledgerprogram.Program directly instead of signing and
// broadcasting Solana transactions over RPC. It exists so the rest of
// the wallet can be developed and tested against a real instruction
// dispatcher without a live cluster (the concrete transport is left
// an implementation choice).
package simchain

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/solwall/soldid/internal/chainadapter"
	"github.com/solwall/soldid/internal/keys"
	"github.com/solwall/soldid/internal/kerievent"
	"github.com/solwall/soldid/internal/ledgeraccount"
	"github.com/solwall/soldid/internal/ledgerprogram"
)

// Chain is a simulated ledger: one ledgerprogram.Program plus a single
// signer identity, standing in for a wallet keypair that would sign
// real Solana transactions.
type Chain struct {
	program   *ledgerprogram.Program
	programID [32]byte
	signer    [32]byte
	url       string
}

// New creates a Chain with a random signer identity and program ID,
// addressed by url (informational only, no network I/O is performed).
func New(url string) (*Chain, error) {
	var programID, signer [32]byte
	if _, err := rand.Read(programID[:]); err != nil {
		return nil, fmt.Errorf("generate program id: %w", err)
	}
	if _, err := rand.Read(signer[:]); err != nil {
		return nil, fmt.Errorf("generate signer: %w", err)
	}
	return &Chain{
		program:   ledgerprogram.New(programID),
		programID: programID,
		signer:    signer,
		url:       url,
	}, nil
}

var _ chainadapter.Adapter = (*Chain)(nil)

func decodePrefix(prefix string) ([32]byte, error) {
	var out [32]byte
	raw, err := base58.Decode(prefix)
	if err != nil {
		return out, fmt.Errorf("decode prefix: %w", err)
	}
	if len(raw) != 32 {
		return out, fmt.Errorf("decode prefix: want 32 bytes, got %d", len(raw))
	}
	copy(out[:], raw)
	return out, nil
}

func decodeKeys(encoded []string, decodeFn func(string) ([32]byte, error)) ([][32]byte, error) {
	out := make([][32]byte, len(encoded))
	for i, s := range encoded {
		pk, err := decodeFn(s)
		if err != nil {
			return nil, err
		}
		out[i] = pk
	}
	return out, nil
}

// txSignature fabricates a deterministic-looking opaque handle for a
// simulated instruction; the real adapter would return the cluster's
// transaction signature here.
func txSignature(digest [32]byte) string {
	return hex.EncodeToString(digest[:])
}

// InceptionInst implements chainadapter.Adapter.
func (c *Chain) InceptionInst(ctx context.Context, ks *keys.KeySet, event *kerievent.EventMessage) (string, string, error) {
	prefix, err := decodePrefix(event.Event.Prefix)
	if err != nil {
		return "", "", err
	}
	pubKeys, err := decodeKeys(event.Event.CurrentPublicKeys, ks.Type.DecodePublic)
	if err != nil {
		return "", "", err
	}

	pda, err := c.program.Inception(true, ledgerprogram.InceptionInput{
		Signer:  c.signer,
		KeyType: ks.Type,
		Prefix:  prefix,
		Keys:    pubKeys,
	})
	if err != nil {
		return "", "", translate(err)
	}
	return txSignature(event.Digest), hex.EncodeToString(pda[:]), nil
}

// RotationInst implements chainadapter.Adapter.
func (c *Chain) RotationInst(ctx context.Context, inceptionDigest string, ks *keys.KeySet, event *kerievent.EventMessage) (string, error) {
	prefix, err := decodePrefix(event.Event.Prefix)
	if err != nil {
		return "", err
	}
	pubKeys, err := decodeKeys(event.Event.CurrentPublicKeys, ks.Type.DecodePublic)
	if err != nil {
		return "", err
	}

	err = c.program.Rotation(true, ledgerprogram.MutationInput{
		Signer:  c.signer,
		KeyType: ks.Type,
		Prefix:  prefix,
		Keys:    pubKeys,
	})
	if err != nil {
		return "", translate(err)
	}
	return txSignature(event.Digest), nil
}

// DecommissionInst implements chainadapter.Adapter.
func (c *Chain) DecommissionInst(ctx context.Context, inceptionDigest string, ks *keys.KeySet, event *kerievent.EventMessage) (string, error) {
	prefix, err := decodePrefix(event.Event.Prefix)
	if err != nil {
		return "", err
	}

	err = c.program.Decommission(true, ledgerprogram.MutationInput{
		Signer:  c.signer,
		KeyType: ks.Type,
		Prefix:  prefix,
	})
	if err != nil {
		return "", translate(err)
	}
	return txSignature(event.Digest), nil
}

// Fetch implements chainadapter.Adapter.
func (c *Chain) Fetch(ctx context.Context, inceptionDigest string) (*chainadapter.AccountRecord, error) {
	prefix, err := decodePrefix(inceptionDigest)
	if err != nil {
		return nil, err
	}
	rec, err := c.program.Fetch(prefix)
	if err != nil {
		return nil, translate(err)
	}
	return &chainadapter.AccountRecord{
		Initialized: rec.Initialized,
		Version:     rec.Version,
		State:       rec.State.String(),
		KeyType:     rec.KeyType,
		Authority:   hex.EncodeToString(rec.Authority[:]),
		Prefix:      rec.Prefix,
		Keys:        rec.Keys,
	}, nil
}

// Close implements chainadapter.Adapter.
func (c *Chain) Close(ctx context.Context, inceptionDigest string) error {
	prefix, err := decodePrefix(inceptionDigest)
	if err != nil {
		return err
	}
	return translate(c.program.Close(prefix))
}

// URL implements chainadapter.Adapter.
func (c *Chain) URL() string { return c.url }

// ProgramID implements chainadapter.Adapter.
func (c *Chain) ProgramID() string { return hex.EncodeToString(c.programID[:]) }

// InstSigner implements chainadapter.Adapter.
func (c *Chain) InstSigner() string { return hex.EncodeToString(c.signer[:]) }

// Version implements chainadapter.Adapter.
func (c *Chain) Version() uint16 { return ledgeraccount.CurrentVersion }

// translate maps ledgerprogram's error taxonomy onto chainadapter's,
// the boundary between the concrete ledger program and the abstract
// collaborator the rest of the wallet depends on.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ledgerprogram.ErrDidAlreadyInitialized):
		return fmt.Errorf("%w: %v", chainadapter.ErrDIDAccountExists, err)
	case errors.Is(err, ledgerprogram.ErrDidNotInitialized):
		return fmt.Errorf("%w: %v", chainadapter.ErrDIDAccountNotExists, err)
	case errors.Is(err, ledgerprogram.ErrInvalidAuthority):
		return fmt.Errorf("%w: %v", chainadapter.ErrInvalidAuthority, err)
	case errors.Is(err, ledgerprogram.ErrInvalidDidReference):
		return fmt.Errorf("%w: %v", chainadapter.ErrInvalidDidReference, err)
	default:
		return err
	}
}

package ledgerprogram

import (
	"errors"
	"testing"

	"github.com/solwall/soldid/internal/keys"
)

func testProgram() *Program {
	return New([32]byte{0xDE, 0xAD, 0xBE, 0xEF})
}

func TestInceptionCreatesAccount(t *testing.T) {
	p := testProgram()
	signer := [32]byte{1}
	prefix := [32]byte{2}
	keySet := [][32]byte{{3}, {4}}

	pda, err := p.Inception(true, InceptionInput{
		Signer:  signer,
		KeyType: keys.Ed25519,
		Prefix:  prefix,
		Keys:    keySet,
	})
	if err != nil {
		t.Fatalf("Inception() error = %v", err)
	}

	rec, err := p.Fetch(prefix)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !rec.Initialized || rec.Authority != signer || rec.Prefix != prefix {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if len(rec.Keys) != 2 {
		t.Fatalf("Keys len = %d, want 2", len(rec.Keys))
	}

	wantPDA, _ := p.FindProgramAddress(prefix)
	if pda != wantPDA {
		t.Error("returned PDA does not match FindProgramAddress")
	}
}

func TestInceptionRequiresSignature(t *testing.T) {
	p := testProgram()
	_, err := p.Inception(false, InceptionInput{Prefix: [32]byte{1}})
	if !errors.Is(err, ErrMissingSignature) {
		t.Errorf("error = %v, want ErrMissingSignature", err)
	}
}

func TestInceptionRejectsDuplicate(t *testing.T) {
	p := testProgram()
	in := InceptionInput{Signer: [32]byte{1}, Prefix: [32]byte{2}, Keys: [][32]byte{{3}}}
	if _, err := p.Inception(true, in); err != nil {
		t.Fatalf("first Inception() error = %v", err)
	}
	if _, err := p.Inception(true, in); !errors.Is(err, ErrDidAlreadyInitialized) {
		t.Errorf("second Inception() error = %v, want ErrDidAlreadyInitialized", err)
	}
}

func TestRotationUpdatesKeysAndState(t *testing.T) {
	p := testProgram()
	signer := [32]byte{1}
	prefix := [32]byte{2}

	if _, err := p.Inception(true, InceptionInput{
		Signer: signer, KeyType: keys.Ed25519, Prefix: prefix, Keys: [][32]byte{{3}},
	}); err != nil {
		t.Fatalf("Inception() error = %v", err)
	}

	newKeys := [][32]byte{{5}, {6}, {7}}
	err := p.Rotation(true, MutationInput{
		Signer: signer, KeyType: keys.Ed25519, Prefix: prefix, Keys: newKeys,
	})
	if err != nil {
		t.Fatalf("Rotation() error = %v", err)
	}

	rec, err := p.Fetch(prefix)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if rec.State.String() != "rotated" {
		t.Errorf("State = %v, want rotated", rec.State)
	}
	if len(rec.Keys) != 3 {
		t.Errorf("Keys len = %d, want 3", len(rec.Keys))
	}
}

func TestRotationRejectsWrongAuthority(t *testing.T) {
	p := testProgram()
	prefix := [32]byte{2}
	if _, err := p.Inception(true, InceptionInput{
		Signer: [32]byte{1}, Prefix: prefix, Keys: [][32]byte{{3}},
	}); err != nil {
		t.Fatalf("Inception() error = %v", err)
	}

	err := p.Rotation(true, MutationInput{Signer: [32]byte{9}, Prefix: prefix, Keys: [][32]byte{{4}}})
	if !errors.Is(err, ErrInvalidAuthority) {
		t.Errorf("error = %v, want ErrInvalidAuthority", err)
	}
}

func TestRotationRejectsUnknownAccount(t *testing.T) {
	p := testProgram()
	err := p.Rotation(true, MutationInput{Signer: [32]byte{1}, Prefix: [32]byte{99}})
	if !errors.Is(err, ErrDidNotInitialized) {
		t.Errorf("error = %v, want ErrDidNotInitialized", err)
	}
}

func TestDecommissionEmptiesKeysAndIsTerminal(t *testing.T) {
	p := testProgram()
	signer := [32]byte{1}
	prefix := [32]byte{2}
	if _, err := p.Inception(true, InceptionInput{
		Signer: signer, Prefix: prefix, Keys: [][32]byte{{3}},
	}); err != nil {
		t.Fatalf("Inception() error = %v", err)
	}

	if err := p.Decommission(true, MutationInput{Signer: signer, Prefix: prefix}); err != nil {
		t.Fatalf("Decommission() error = %v", err)
	}

	rec, err := p.Fetch(prefix)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if rec.State.String() != "decommissioned" {
		t.Errorf("State = %v, want decommissioned", rec.State)
	}
	if len(rec.Keys) != 0 {
		t.Errorf("Keys len = %d, want 0", len(rec.Keys))
	}

	err = p.Rotation(true, MutationInput{Signer: signer, Prefix: prefix, Keys: [][32]byte{{9}}})
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("post-decommission Rotation() error = %v, want ErrInvalidState", err)
	}
}

func TestDecommissionRejectsMismatchedKeyType(t *testing.T) {
	p := testProgram()
	signer := [32]byte{1}
	prefix := [32]byte{2}
	if _, err := p.Inception(true, InceptionInput{
		Signer: signer, KeyType: keys.Pasta, Prefix: prefix, Keys: [][32]byte{{3}},
	}); err != nil {
		t.Fatalf("Inception() error = %v", err)
	}

	err := p.Decommission(true, MutationInput{Signer: signer, Prefix: prefix})
	if !errors.Is(err, ErrInvalidDidReference) {
		t.Errorf("error = %v, want ErrInvalidDidReference", err)
	}

	if err := p.Decommission(true, MutationInput{Signer: signer, KeyType: keys.Pasta, Prefix: prefix}); err != nil {
		t.Fatalf("Decommission() with matching KeyType error = %v", err)
	}
}

func TestCloseRemovesAccount(t *testing.T) {
	p := testProgram()
	prefix := [32]byte{2}
	if _, err := p.Inception(true, InceptionInput{Signer: [32]byte{1}, Prefix: prefix}); err != nil {
		t.Fatalf("Inception() error = %v", err)
	}
	if err := p.Close(prefix); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := p.Fetch(prefix); !errors.Is(err, ErrDidNotInitialized) {
		t.Errorf("Fetch() after Close() error = %v, want ErrDidNotInitialized", err)
	}
}

func TestFindProgramAddressIsDeterministic(t *testing.T) {
	p := testProgram()
	prefix := [32]byte{7, 7, 7}
	pda1, bump1 := p.FindProgramAddress(prefix)
	pda2, bump2 := p.FindProgramAddress(prefix)
	if pda1 != pda2 || bump1 != bump2 {
		t.Error("FindProgramAddress() is not deterministic for the same prefix")
	}
}

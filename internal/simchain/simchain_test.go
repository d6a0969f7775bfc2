package simchain

import (
	"context"
	"errors"
	"testing"

	"github.com/solwall/soldid/internal/chainadapter"
	"github.com/solwall/soldid/internal/kerievent"
	"github.com/solwall/soldid/internal/keys"
)

func TestInceptionThenRotationThenDecommission(t *testing.T) {
	ctx := context.Background()
	chain, err := New("sim://local")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ks, err := keys.NewFor(keys.Ed25519, 1)
	if err != nil {
		t.Fatalf("NewFor() error = %v", err)
	}

	builder := kerievent.Builder{}
	icp, err := builder.Inception(ks, 1)
	if err != nil {
		t.Fatalf("Inception() error = %v", err)
	}

	txSig, account, err := chain.InceptionInst(ctx, ks, icp)
	if err != nil {
		t.Fatalf("InceptionInst() error = %v", err)
	}
	if txSig == "" || account == "" {
		t.Fatal("InceptionInst() returned empty signature or account")
	}

	rec, err := chain.Fetch(ctx, icp.Event.Prefix)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !rec.Initialized || rec.State != "inception" {
		t.Fatalf("unexpected record after inception: %+v", rec)
	}

	currentPriv, nextPriv, err := ks.Rotate(nil)
	_ = currentPriv
	_ = nextPriv
	if err != nil {
		t.Fatalf("Rotate() error = %v", err)
	}

	rot, err := builder.Rotation(icp.Event.Prefix, icp.Event.Digest, icp.Event.SN, ks, 1)
	if err != nil {
		t.Fatalf("Rotation() error = %v", err)
	}
	if _, err := chain.RotationInst(ctx, icp.Event.Digest, ks, rot); err != nil {
		t.Fatalf("RotationInst() error = %v", err)
	}

	rec, err = chain.Fetch(ctx, icp.Event.Prefix)
	if err != nil {
		t.Fatalf("Fetch() after rotation error = %v", err)
	}
	if rec.State != "rotated" {
		t.Errorf("State after rotation = %v, want rotated", rec.State)
	}

	dec, err := builder.Decommission(icp.Event.Prefix, rot.Event.Digest, rot.Event.SN)
	if err != nil {
		t.Fatalf("Decommission() error = %v", err)
	}
	if _, err := chain.DecommissionInst(ctx, icp.Event.Digest, ks, dec); err != nil {
		t.Fatalf("DecommissionInst() error = %v", err)
	}

	rec, err = chain.Fetch(ctx, icp.Event.Prefix)
	if err != nil {
		t.Fatalf("Fetch() after decommission error = %v", err)
	}
	if rec.State != "decommissioned" || len(rec.Keys) != 0 {
		t.Errorf("unexpected record after decommission: %+v", rec)
	}
}

func TestFetchUnknownPrefixTranslatesError(t *testing.T) {
	chain, err := New("sim://local")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ks, err := keys.NewFor(keys.Ed25519, 1)
	if err != nil {
		t.Fatalf("NewFor() error = %v", err)
	}
	icp, err := (kerievent.Builder{}).Inception(ks, 1)
	if err != nil {
		t.Fatalf("Inception() error = %v", err)
	}

	_, err = chain.Fetch(context.Background(), icp.Event.Prefix)
	if !errors.Is(err, chainadapter.ErrDIDAccountNotExists) {
		t.Errorf("error = %v, want ErrDIDAccountNotExists", err)
	}
}

func TestCloseThenFetchFails(t *testing.T) {
	ctx := context.Background()
	chain, err := New("sim://local")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ks, err := keys.NewFor(keys.Ed25519, 1)
	if err != nil {
		t.Fatalf("NewFor() error = %v", err)
	}
	icp, err := (kerievent.Builder{}).Inception(ks, 1)
	if err != nil {
		t.Fatalf("Inception() error = %v", err)
	}
	if _, _, err := chain.InceptionInst(ctx, ks, icp); err != nil {
		t.Fatalf("InceptionInst() error = %v", err)
	}
	if err := chain.Close(ctx, icp.Event.Prefix); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := chain.Fetch(ctx, icp.Event.Prefix); !errors.Is(err, chainadapter.ErrDIDAccountNotExists) {
		t.Errorf("Fetch() after Close() error = %v, want ErrDIDAccountNotExists", err)
	}
}

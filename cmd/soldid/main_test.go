package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func runCLI(t *testing.T, walletDir string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(append([]string{"-w", walletDir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestDIDLifecycleThroughCLI(t *testing.T) {
	dir := t.TempDir()

	if _, err := runCLI(t, dir, "did-create", "-n", "alice", "-k", "2", "-t", "1"); err != nil {
		t.Fatalf("did-create error = %v", err)
	}

	if _, err := runCLI(t, dir, "did-rotate", "-n", "alice"); err != nil {
		t.Fatalf("did-rotate error = %v", err)
	}

	if _, err := runCLI(t, dir, "did-decommission", "-n", "alice"); err != nil {
		t.Fatalf("did-decommission error = %v", err)
	}

	if _, err := runCLI(t, dir, "did-rotate", "-n", "alice"); err == nil {
		t.Fatal("did-rotate after decommission succeeded, want state error")
	} else {
		var ee *exitError
		if !errors.As(err, &ee) || ee.code != 3 {
			t.Errorf("error = %v, want exitError code 3", err)
		}
	}
}

func TestDIDCreateRejectsDuplicateName(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, dir, "did-create", "-n", "bob")
	if err != nil {
		t.Fatalf("first did-create error = %v", err)
	}
	if !strings.Contains(out, "did:solana:") {
		t.Errorf("did-create output = %q, want it to include a did:solana: URI", out)
	}

	_, err = runCLI(t, dir, "did-create", "-n", "bob")
	var ee *exitError
	if !errors.As(err, &ee) || ee.code != 2 {
		t.Errorf("error = %v, want exitError code 2", err)
	}
}

func TestKeysListRequiresNameOrAll(t *testing.T) {
	dir := t.TempDir()
	if _, err := runCLI(t, dir, "did-create", "-n", "carol"); err != nil {
		t.Fatalf("did-create error = %v", err)
	}

	if _, err := runCLI(t, dir, "keys-list"); err == nil {
		t.Fatal("keys-list with neither -n nor -a succeeded")
	}

	out, err := runCLI(t, dir, "keys-list", "-n", "carol")
	if err != nil {
		t.Fatalf("keys-list -n error = %v", err)
	}
	if !strings.Contains(out, "carol") {
		t.Errorf("output = %q, want it to mention carol", out)
	}
}

func TestDIDListShowsLatestState(t *testing.T) {
	dir := t.TempDir()
	if _, err := runCLI(t, dir, "did-create", "-n", "dana"); err != nil {
		t.Fatalf("did-create error = %v", err)
	}

	out, err := runCLI(t, dir, "did-list")
	if err != nil {
		t.Fatalf("did-list error = %v", err)
	}
	if !strings.Contains(out, "dana") {
		t.Errorf("output = %q, want it to mention dana", out)
	}
	if !strings.Contains(out, "did:solana:") {
		t.Errorf("output = %q, want it to include a did:solana: URI", out)
	}
}

package walletkeys

import "testing"

func TestDIDStringFormatsPrefixAsSolanaDID(t *testing.T) {
	k := &Keys{Prefix: "abc123"}
	if got, want := k.DIDString(), "did:solana:abc123"; got != want {
		t.Errorf("DIDString() = %q, want %q", got, want)
	}
}

package kerievent

import "testing"

func TestDIDURIFormatsPrefixAsSolanaDID(t *testing.T) {
	e := Event{Prefix: "abc123"}
	if got, want := e.DIDURI(), "did:solana:abc123"; got != want {
		t.Errorf("DIDURI() = %q, want %q", got, want)
	}
}

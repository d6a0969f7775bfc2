package kerievent

import (
	"errors"
	"testing"

	"github.com/solwall/soldid/internal/keys"
)

func mustKeySet(t *testing.T, count int) *keys.KeySet {
	t.Helper()
	ks, err := keys.NewFor(keys.Ed25519, count)
	if err != nil {
		t.Fatalf("keys.NewFor() error = %v", err)
	}
	return ks
}

func TestInceptionDigestSelfConsistent(t *testing.T) {
	ks := mustKeySet(t, 2)
	msg, err := Builder{}.Inception(ks, 1)
	if err != nil {
		t.Fatalf("Inception() error = %v", err)
	}
	if err := VerifySelfConsistent(msg.Event); err != nil {
		t.Errorf("P1 violated: %v", err)
	}
	if msg.Event.Prefix != msg.Event.Digest {
		t.Errorf("inception prefix %q should equal digest %q", msg.Event.Prefix, msg.Event.Digest)
	}
}

func TestInceptionThresholdOverCountFails(t *testing.T) {
	ks := mustKeySet(t, 2)
	_, err := Builder{}.Inception(ks, 3)
	if !errors.Is(err, ErrThreshold) {
		t.Errorf("Inception(threshold=3, |keys|=2) error = %v, want ErrThreshold", err)
	}
}

func TestRotationChainsAndBindsCommitment(t *testing.T) {
	ks := mustKeySet(t, 2)
	icp, err := Builder{}.Inception(ks, 1)
	if err != nil {
		t.Fatalf("Inception() error = %v", err)
	}

	_, _, err = ks.Rotate(nil)
	if err != nil {
		t.Fatalf("Rotate() error = %v", err)
	}

	rot, err := Builder{}.Rotation(icp.Event.Prefix, icp.Event.Digest, icp.Event.SN, ks, 1)
	if err != nil {
		t.Fatalf("Rotation() error = %v", err)
	}

	if err := VerifySelfConsistent(rot.Event); err != nil {
		t.Errorf("P1 violated on rotation: %v", err)
	}
	if rot.Event.SN != icp.Event.SN+1 {
		t.Errorf("rot.SN = %d, want %d", rot.Event.SN, icp.Event.SN+1)
	}
	if rot.Event.PriorDigest != icp.Event.Digest {
		t.Errorf("P2 violated: rot.PriorDigest = %q, want %q", rot.Event.PriorDigest, icp.Event.Digest)
	}
	if rot.Event.Prefix != icp.Event.Prefix {
		t.Errorf("prefix changed across rotation: %q != %q", rot.Event.Prefix, icp.Event.Prefix)
	}

	// P3: icp.threshold ‖ rot.current_public_keys must hash to icp's commitment.
	recomputed := nextKeyCommitment(icp.Event.Threshold, decodeKeysForTest(t, rot.Event.CurrentPublicKeys))
	if base58Encode(recomputed[:]) != icp.Event.NextKeyCommitment {
		t.Error("P3 violated: next key commitment does not bind successor's current keys")
	}
}

func decodeKeysForTest(t *testing.T, b58 []string) [][32]byte {
	t.Helper()
	out := make([][32]byte, len(b58))
	for i, s := range b58 {
		raw, err := base58Decode(s)
		if err != nil {
			t.Fatalf("base58Decode() error = %v", err)
		}
		copy(out[i][:], raw)
	}
	return out
}

func TestRotationToEmptyNextFails(t *testing.T) {
	ks := keys.NewEmpty(keys.Ed25519)
	_, err := Builder{}.Rotation("prefix", "digest", 0, ks, 0)
	if !errors.Is(err, ErrRotationToEmpty) {
		t.Errorf("Rotation() with empty next error = %v, want ErrRotationToEmpty", err)
	}
}

func TestDecommissionProducesEmptyCurrentAndZeroThreshold(t *testing.T) {
	ks := mustKeySet(t, 1)
	icp, err := Builder{}.Inception(ks, 1)
	if err != nil {
		t.Fatalf("Inception() error = %v", err)
	}
	dec, err := Builder{}.Decommission(icp.Event.Prefix, icp.Event.Digest, icp.Event.SN)
	if err != nil {
		t.Fatalf("Decommission() error = %v", err)
	}
	if len(dec.Event.CurrentPublicKeys) != 0 {
		t.Errorf("decommission current keys = %v, want empty", dec.Event.CurrentPublicKeys)
	}
	if dec.Event.Threshold != 0 {
		t.Errorf("decommission threshold = %d, want 0", dec.Event.Threshold)
	}
	if err := VerifySelfConsistent(dec.Event); err != nil {
		t.Errorf("P1 violated on decommission: %v", err)
	}
}

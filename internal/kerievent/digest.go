package kerievent

import (
	"encoding/json"
	"fmt"

	"github.com/mr-tron/base58"
	"lukechampine.com/blake3"
)

func base58Encode(b []byte) string {
	return base58.Encode(b)
}

func base58Decode(s string) ([]byte, error) {
	return base58.Decode(s)
}

// blake3_256 hashes b with Blake3 truncated to a 256-bit digest, the
// self-addressing hash used throughout this package.
func blake3_256(b []byte) [32]byte {
	return blake3.Sum256(b)
}

// marshalFinal marshals ev as-is (Digest field populated), producing
// the bytes that are persisted and transmitted.
func marshalFinal(ev Event) ([]byte, error) {
	b, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return b, nil
}

// canonicalBytes marshals ev with its Digest field forced to "" —
// the placeholder slot the self-addressing digest is computed over.
// For an inception event the Prefix field is blanked as well, since
// the inception digest is itself the prefix.
func canonicalBytes(ev Event) ([]byte, error) {
	draft := ev
	draft.Digest = ""
	if draft.EventType == EventTypeInception {
		draft.Prefix = ""
	}
	b, err := json.Marshal(draft)
	if err != nil {
		return nil, fmt.Errorf("canonicalize event: %w", err)
	}
	return b, nil
}

// Digest recomputes the self-addressing digest of ev from its
// canonical bytes (Digest field, and Prefix on inception, treated as
// the placeholder slot).
// Used both to build new events and to verify P1 self-consistency on
// events received from disk or the ledger.
func Digest(ev Event) ([32]byte, []byte, error) {
	canon, err := canonicalBytes(ev)
	if err != nil {
		return [32]byte{}, nil, err
	}
	return blake3_256(canon), canon, nil
}

// VerifySelfConsistent recomputes ev's digest and checks it against
// the embedded Digest field (property P1).
func VerifySelfConsistent(ev Event) error {
	digest, _, err := Digest(ev)
	if err != nil {
		return err
	}
	want := base58Encode(digest[:])
	if ev.Digest != want {
		return fmt.Errorf("%w: embedded %q, recomputed %q", ErrDigestMismatch, ev.Digest, want)
	}
	return nil
}

// nextKeyCommitment computes Blake3_256(threshold ‖ each next public
// key's canonical bytes in order) — the pre-rotation commitment that
// hides the next keys while binding their future use (property P3).
func nextKeyCommitment(threshold int, nextPublic [][32]byte) [32]byte {
	buf := make([]byte, 0, 8+32*len(nextPublic))
	buf = appendUvarint(buf, uint64(threshold))
	for _, pk := range nextPublic {
		buf = append(buf, pk[:]...)
	}
	return blake3_256(buf)
}

func appendUvarint(buf []byte, v uint64) []byte {
	var tmp [10]byte
	n := 0
	for v >= 0x80 {
		tmp[n] = byte(v) | 0x80
		v >>= 7
		n++
	}
	tmp[n] = byte(v)
	return append(buf, tmp[:n+1]...)
}

package kerievent

import (
	"fmt"

	"github.com/solwall/soldid/internal/keys"
)

// Builder constructs and digests inception and rotation events. It is
// pure — no I/O, deterministic given inputs — and carries no state of
// its own; the zero value is ready to use.
type Builder struct{}

// Inception builds sn=0, event_type=icp. Fails with ErrThreshold if
// threshold is out of [0, |current|].
func (Builder) Inception(ks *keys.KeySet, threshold int) (*EventMessage, error) {
	current := ks.CurrentPublicKeys()
	if threshold < 0 || threshold > len(current) {
		return nil, fmt.Errorf("%w: threshold %d over %d keys", ErrThreshold, threshold, len(current))
	}

	commitment := nextKeyCommitment(threshold, ks.NextPublicKeys())

	draft := Event{
		EventType:         EventTypeInception,
		SN:                0,
		PriorDigest:       "",
		CurrentPublicKeys: encodeKeys(current),
		Threshold:         threshold,
		NextKeyCommitment: base58Encode(commitment[:]),
	}

	digest, _, err := Digest(draft)
	if err != nil {
		return nil, err
	}
	prefix := base58Encode(digest[:])
	draft.Prefix = prefix
	draft.Digest = prefix // self-addressing: the inception digest IS the prefix

	final, err := finalize(draft)
	if err != nil {
		return nil, err
	}
	return &EventMessage{Event: draft, CanonicalBytes: final, Digest: digest}, nil
}

// Rotation builds sn=priorSN+1, event_type=rot, prior_digest=priorDigest.
// Fails with ErrRotationToEmpty if the key set's next vector is empty
// at build time (the caller must use Decommission for that case), and
// ErrThreshold if threshold is out of range.
func (Builder) Rotation(prefix, priorDigest string, priorSN uint64, ks *keys.KeySet, threshold int) (*EventMessage, error) {
	if len(ks.Next) == 0 {
		return nil, ErrRotationToEmpty
	}
	current := ks.CurrentPublicKeys()
	if threshold < 0 || threshold > len(current) {
		return nil, fmt.Errorf("%w: threshold %d over %d keys", ErrThreshold, threshold, len(current))
	}

	commitment := nextKeyCommitment(threshold, ks.NextPublicKeys())

	draft := Event{
		EventType:         EventTypeRotation,
		Prefix:            prefix,
		SN:                priorSN + 1,
		PriorDigest:       priorDigest,
		CurrentPublicKeys: encodeKeys(current),
		Threshold:         threshold,
		NextKeyCommitment: base58Encode(commitment[:]),
	}

	digest, _, err := Digest(draft)
	if err != nil {
		return nil, err
	}
	draft.Digest = base58Encode(digest[:])

	final, err := finalize(draft)
	if err != nil {
		return nil, err
	}
	return &EventMessage{Event: draft, CanonicalBytes: final, Digest: digest}, nil
}

// Decommission builds a terminal rotation: threshold=0, current_public_keys=∅,
// next_key_commitment = hash of empty. Unlike Rotation, an empty next
// set is the intended, terminal case and is never rejected.
func (Builder) Decommission(prefix, priorDigest string, priorSN uint64) (*EventMessage, error) {
	commitment := nextKeyCommitment(0, nil)

	draft := Event{
		EventType:         EventTypeRotation,
		Prefix:            prefix,
		SN:                priorSN + 1,
		PriorDigest:       priorDigest,
		CurrentPublicKeys: []string{},
		Threshold:         0,
		NextKeyCommitment: base58Encode(commitment[:]),
	}

	digest, _, err := Digest(draft)
	if err != nil {
		return nil, err
	}
	draft.Digest = base58Encode(digest[:])

	final, err := finalize(draft)
	if err != nil {
		return nil, err
	}
	return &EventMessage{Event: draft, CanonicalBytes: final, Digest: digest}, nil
}

// finalize re-serializes the final event (with its real Digest/Prefix
// filled in) and verifies the digest is reproducible bit-for-bit — a
// mismatch on re-serialization is fatal per spec.
func finalize(ev Event) ([]byte, error) {
	recomputed, canon, err := Digest(ev)
	if err != nil {
		return nil, err
	}
	if base58Encode(recomputed[:]) != ev.Digest {
		return nil, fmt.Errorf("%w: event digest changed on finalize", ErrDigestMismatch)
	}
	_ = canon
	return marshalFinal(ev)
}

func encodeKeys(pubs [][32]byte) []string {
	out := make([]string, len(pubs))
	for i, pk := range pubs {
		out[i] = base58Encode(pk[:])
	}
	return out
}

// Package kerievent builds and digests KERI-style inception and
// rotation events: canonical serialization, self-addressing digest
// derivation, and pre-rotation commitment.
package kerievent

// EventType tags an event as inception or rotation (decommission is a
// rotation with threshold 0 and an empty current key set).
type EventType string

const (
	EventTypeInception EventType = "icp"
	EventTypeRotation  EventType = "rot"
)

// Event is the canonical, deterministically-serializable KERI event.
// Field order here IS the canonical field order: encoding/json
// preserves Go struct declaration order, so this struct's shape is the
// wire format's shape.
type Event struct {
	EventType         EventType `json:"t"`
	Prefix            string    `json:"i"`
	SN                uint64    `json:"s"`
	PriorDigest       string    `json:"p"`
	CurrentPublicKeys []string  `json:"k"`
	Threshold         int       `json:"kt"`
	NextKeyCommitment string    `json:"n"`
	Digest            string    `json:"d"`
}

// EventMessage pairs a built Event with its canonical wire bytes and
// raw digest, as produced by Builder.
type EventMessage struct {
	Event          Event
	CanonicalBytes []byte
	Digest         [32]byte
}

// DigestBase58 is the base58 form of the event's digest.
func (m *EventMessage) DigestBase58() string {
	return base58Encode(m.Digest[:])
}

// DIDURI returns the did:solana:<prefix> form of the event's identifier.
func (e Event) DIDURI() string {
	return "did:solana:" + e.Prefix
}

// Package walletkeys implements the append-only ChainEvent log (C3)
// and the Keys state machine that owns a DID's identity through
// inception, rotation, and decommission (C4).
package walletkeys

import (
	"time"

	"github.com/solwall/soldid/internal/keys"
	"github.com/solwall/soldid/internal/kerievent"
)

// ChainEventType tags a wallet log entry by the lifecycle step it
// records.
type ChainEventType string

const (
	ChainEventInception      ChainEventType = "inception"
	ChainEventRotation       ChainEventType = "rotation"
	ChainEventDecommissioned ChainEventType = "decommissioned"
)

// KeyBlock identifies which group a key snapshot belongs to within a
// ChainEvent.
type KeyBlock string

const (
	KeyBlockNone    KeyBlock = "none"
	KeyBlockCurrent KeyBlock = "current"
	KeyBlockNext    KeyBlock = "next"
	KeyBlockPast    KeyBlock = "past"
)

// KeyState is the wallet-local lifecycle tag carried per key snapshot.
// It is used only in the wallet's log; the ledger tracks a coarser
// per-DID state.
type KeyState string

const (
	KeyStatePreInception   KeyState = "pre_inception"
	KeyStateIncepted       KeyState = "incepted"
	KeyStateNextRotation   KeyState = "next_rotation"
	KeyStateRotated        KeyState = "rotated"
	KeyStateRotatedOut     KeyState = "rotated_out"
	KeyStateDecommissioned KeyState = "decommissioned"
	KeyStateRevoked        KeyState = "revoked"
)

// KeySnapshot is one (state, key type, base58 private key) tuple
// recorded in a ChainEvent's keysets.
type KeySnapshot struct {
	State      KeyState
	Type       keys.Type
	PrivateB58 string
}

// ChainEvent is one append-only entry in a DID's wallet log.
type ChainEvent struct {
	EventType   ChainEventType
	SN          uint64
	Digest      string
	PriorDigest string
	KeyType     keys.Type
	Timestamp   time.Time
	TxSignature string
	Event       kerievent.Event
	KeySets     map[KeyBlock][]KeySnapshot
}

// GetKeysFor returns the key snapshot vector for the given block, or
// ErrKeySetIncoherence if that block is absent.
func (c *ChainEvent) GetKeysFor(block KeyBlock) ([]KeySnapshot, error) {
	snaps, ok := c.KeySets[block]
	if !ok {
		return nil, ErrKeySetIncoherence
	}
	return snaps, nil
}

// PrivateKeysB58 projects a key snapshot vector to its base58 private
// key strings.
func PrivateKeysB58(snaps []KeySnapshot) []string {
	out := make([]string, len(snaps))
	for i, s := range snaps {
		out[i] = s.PrivateB58
	}
	return out
}

func snapshotsFor(t keys.Type, state KeyState, kps []keys.KeyPair) ([]KeySnapshot, error) {
	out := make([]KeySnapshot, len(kps))
	for i, kp := range kps {
		b58, err := t.EncodePrivate(kp.Private)
		if err != nil {
			return nil, err
		}
		out[i] = KeySnapshot{State: state, Type: t, PrivateB58: b58}
	}
	return out, nil
}

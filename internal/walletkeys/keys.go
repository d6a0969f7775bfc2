package walletkeys

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/solwall/soldid/internal/chainadapter"
	"github.com/solwall/soldid/internal/keys"
	"github.com/solwall/soldid/internal/kerievent"
)

// nowFunc is overridable in tests; production code always uses
// time.Now via the default set in clock.go.
var nowFunc = defaultNow

// Keys owns a single DID's identity: name, self-addressing prefix,
// ledger account, signing threshold, and its ChainEvent log. It is the
// state machine:
//
//	(none) --incept--> Incepted --rotate--> Rotated --rotate--> ...
//	                       |
//	                  decommission
//	                       v
//	                 Decommissioned (terminal)
type Keys struct {
	Name        string
	Prefix      string
	Account     string
	Threshold   int
	ChainEvents []*ChainEvent
	Dirty       bool
}

// DIDString returns the did:solana:<prefix> form of this entry's
// identifier, the same form kerievent.Event.DIDURI derives from the
// event that incepted it.
func (k *Keys) DIDString() string {
	return kerievent.Event{Prefix: k.Prefix}.DIDURI()
}

var builder = kerievent.Builder{}

// InceptKeys builds the inception event for ks, optionally submits it
// to chain, and returns a freshly-minted Keys entry. If chain is nil,
// inception is built without submission (event construction is always
// pure I/O-free; chain is an explicit nullable collaborator).
func InceptKeys(ctx context.Context, name string, chain chainadapter.Adapter, ks *keys.KeySet, threshold int) (*Keys, error) {
	msg, err := builder.Inception(ks, threshold)
	if err != nil {
		return nil, err
	}

	txSig, account, err := submitInception(ctx, chain, ks, msg)
	if err != nil {
		return nil, err
	}

	current, err := snapshotsFor(ks.Type, KeyStateIncepted, ks.Current)
	if err != nil {
		return nil, err
	}
	next, err := snapshotsFor(ks.Type, KeyStateNextRotation, ks.Next)
	if err != nil {
		return nil, err
	}

	ce := &ChainEvent{
		EventType:   ChainEventInception,
		SN:          0,
		Digest:      msg.Event.Digest,
		PriorDigest: "",
		KeyType:     ks.Type,
		Timestamp:   nowFunc(),
		TxSignature: txSig,
		Event:       msg.Event,
		KeySets: map[KeyBlock][]KeySnapshot{
			KeyBlockCurrent: current,
			KeyBlockNext:    next,
		},
	}

	return &Keys{
		Name:        name,
		Prefix:      msg.Event.Prefix,
		Account:     account,
		Threshold:   threshold,
		ChainEvents: []*ChainEvent{ce},
		Dirty:       true,
	}, nil
}

func submitInception(ctx context.Context, chain chainadapter.Adapter, ks *keys.KeySet, msg *kerievent.EventMessage) (txSig, account string, err error) {
	if chain == nil {
		return uuid.New().String(), "", nil
	}
	return chain.InceptionInst(ctx, ks, msg)
}

// lastEvent returns the most recent ChainEvent, or nil if none.
func (k *Keys) lastEvent() *ChainEvent {
	if len(k.ChainEvents) == 0 {
		return nil
	}
	return k.ChainEvents[len(k.ChainEvents)-1]
}

// canRotate is true iff the last event is an inception or a (non-terminal) rotation.
func canRotate(t ChainEventType) bool {
	return t == ChainEventInception || t == ChainEventRotation
}

// RotateKeys advances the state machine: current <- next, mint or
// adopt a new next set, and append a rotation ChainEvent. A new key set
// is hydrated from the last event's recorded key material; barren
// supplies only its key type and is left unchanged.
func (k *Keys) RotateKeys(ctx context.Context, barren *keys.KeySet, newNext []string, newThreshold *int, chain chainadapter.Adapter) error {
	last := k.lastEvent()
	if last == nil {
		return ErrRotationIncoherence
	}
	if !canRotate(last.EventType) {
		return ErrRotationIncompatible
	}

	hydrated, err := hydrateFromEvent(barren, last)
	if err != nil {
		return err
	}

	current, next, err := hydrated.Rotate(newNext)
	if err != nil {
		return err
	}

	threshold := k.Threshold
	if newThreshold != nil {
		threshold = *newThreshold
	}

	msg, err := builder.Rotation(k.Prefix, last.Digest, last.SN, hydrated, threshold)
	if err != nil {
		return err
	}

	txSig, err := submitRotation(ctx, chain, k.Prefix, hydrated, msg)
	if err != nil {
		return err
	}

	currentSnap, err := snapshotsFor(hydrated.Type, KeyStateRotated, current)
	if err != nil {
		return err
	}
	nextSnap, err := snapshotsFor(hydrated.Type, KeyStateNextRotation, next)
	if err != nil {
		return err
	}
	pastSnap, err := last.GetKeysFor(KeyBlockCurrent)
	if err != nil {
		return err
	}
	pastSnap = markState(pastSnap, KeyStateRotatedOut)

	ce := &ChainEvent{
		EventType:   ChainEventRotation,
		SN:          msg.Event.SN,
		Digest:      msg.Event.Digest,
		PriorDigest: last.Digest,
		KeyType:     hydrated.Type,
		Timestamp:   nowFunc(),
		TxSignature: txSig,
		Event:       msg.Event,
		KeySets: map[KeyBlock][]KeySnapshot{
			KeyBlockCurrent: currentSnap,
			KeyBlockNext:    nextSnap,
			KeyBlockPast:    pastSnap,
		},
	}

	k.ChainEvents = append(k.ChainEvents, ce)
	k.Threshold = threshold
	k.Dirty = true
	return nil
}

func submitRotation(ctx context.Context, chain chainadapter.Adapter, prefix string, ks *keys.KeySet, msg *kerievent.EventMessage) (string, error) {
	if chain == nil {
		return uuid.New().String(), nil
	}
	return chain.RotationInst(ctx, prefix, ks, msg)
}

// DecommissionKeys appends a terminal decommission ChainEvent: empty
// current/next key sets, threshold 0, no further mutation accepted
// afterward (canRotate rejects it).
func (k *Keys) DecommissionKeys(ctx context.Context, barren *keys.KeySet, chain chainadapter.Adapter) error {
	last := k.lastEvent()
	if last == nil {
		return ErrRotationIncoherence
	}
	if !canRotate(last.EventType) {
		return ErrRotationIncompatible
	}

	if _, err := hydrateFromEvent(barren, last); err != nil {
		return err
	}

	msg, err := builder.Decommission(k.Prefix, last.Digest, last.SN)
	if err != nil {
		return err
	}

	txSig, err := submitDecommission(ctx, chain, k.Prefix, barren, msg)
	if err != nil {
		return err
	}

	pastCurrent, err := last.GetKeysFor(KeyBlockCurrent)
	if err != nil {
		return err
	}
	pastNext, err := last.GetKeysFor(KeyBlockNext)
	if err != nil {
		return err
	}
	past := markState(append(append([]KeySnapshot{}, pastCurrent...), pastNext...), KeyStateDecommissioned)

	ce := &ChainEvent{
		EventType:   ChainEventDecommissioned,
		SN:          msg.Event.SN,
		Digest:      msg.Event.Digest,
		PriorDigest: last.Digest,
		KeyType:     barren.Type,
		Timestamp:   nowFunc(),
		TxSignature: txSig,
		Event:       msg.Event,
		KeySets: map[KeyBlock][]KeySnapshot{
			KeyBlockCurrent: {},
			KeyBlockNext:    {},
			KeyBlockPast:    past,
		},
	}

	k.ChainEvents = append(k.ChainEvents, ce)
	k.Dirty = true
	return nil
}

func submitDecommission(ctx context.Context, chain chainadapter.Adapter, prefix string, ks *keys.KeySet, msg *kerievent.EventMessage) (string, error) {
	if chain == nil {
		return uuid.New().String(), nil
	}
	return chain.DecommissionInst(ctx, prefix, ks, msg)
}

func hydrateFromEvent(barren *keys.KeySet, last *ChainEvent) (*keys.KeySet, error) {
	currentSnap, err := last.GetKeysFor(KeyBlockCurrent)
	if err != nil {
		return nil, err
	}
	nextSnap, err := last.GetKeysFor(KeyBlockNext)
	if err != nil {
		return nil, err
	}
	hydrated, err := keys.From(barren.Type, PrivateKeysB58(currentSnap), PrivateKeysB58(nextSnap))
	if err != nil {
		return nil, fmt.Errorf("hydrate key set from chain event: %w", err)
	}
	return hydrated, nil
}

func markState(snaps []KeySnapshot, state KeyState) []KeySnapshot {
	out := make([]KeySnapshot, len(snaps))
	for i, s := range snaps {
		s.State = state
		out[i] = s
	}
	return out
}

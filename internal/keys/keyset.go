package keys

import "errors"

// ErrRotationToEmpty is returned by Rotate when the caller explicitly
// supplies a zero-length next set; that path belongs to decommission,
// not rotation.
var ErrRotationToEmpty = errors.New("rotation to empty next set is not rotation, use decommission")

// KeySet holds the current and next keypairs for one DID, for a single
// key type. |current| == |next| whenever the set is non-barren.
type KeySet struct {
	Type    Type
	Current []KeyPair
	Next    []KeyPair
}

// NewEmpty creates a barren KeySet of the given type: "please refill
// from history".
func NewEmpty(t Type) *KeySet {
	return &KeySet{Type: t}
}

// NewFor creates count current and count next keypairs drawn from a
// cryptographically secure RNG.
func NewFor(t Type, count int) (*KeySet, error) {
	current, err := generateN(t, count)
	if err != nil {
		return nil, err
	}
	next, err := generateN(t, count)
	if err != nil {
		return nil, err
	}
	return &KeySet{Type: t, Current: current, Next: next}, nil
}

func generateN(t Type, count int) ([]KeyPair, error) {
	out := make([]KeyPair, count)
	for i := 0; i < count; i++ {
		kp, err := t.Generate()
		if err != nil {
			return nil, err
		}
		out[i] = kp
	}
	return out, nil
}

// IsBarren is true iff current and next are both empty.
func (k *KeySet) IsBarren() bool {
	return len(k.Current) == 0 && len(k.Next) == 0
}

// From reconstitutes both vectors from base58-encoded private key
// strings. The result is non-barren whenever either vector is non-empty.
func From(t Type, currentB58, nextB58 []string) (*KeySet, error) {
	current, err := decodeAll(t, currentB58)
	if err != nil {
		return nil, err
	}
	next, err := decodeAll(t, nextB58)
	if err != nil {
		return nil, err
	}
	return &KeySet{Type: t, Current: current, Next: next}, nil
}

func decodeAll(t Type, b58 []string) ([]KeyPair, error) {
	out := make([]KeyPair, len(b58))
	for i, s := range b58 {
		priv, err := t.DecodePrivate(s)
		if err != nil {
			return nil, err
		}
		pub, err := t.PublicOf(priv)
		if err != nil {
			return nil, err
		}
		out[i] = KeyPair{Type: t, Public: pub, Private: priv}
	}
	return out, nil
}

// Rotate assigns current <- next; if newNext is supplied it is decoded
// as the new next set, otherwise a fresh set of the same count is
// generated. Returns the private-key vectors after the swap.
//
// Supplying a non-nil but empty newNext is not rotation — the caller
// must route that to decommission instead.
func (k *KeySet) Rotate(newNext []string) (currentPrivates, nextPrivates []KeyPair, err error) {
	if newNext != nil && len(newNext) == 0 {
		return nil, nil, ErrRotationToEmpty
	}

	current := k.Next
	var next []KeyPair
	if newNext != nil {
		next, err = decodeAll(k.Type, newNext)
		if err != nil {
			return nil, nil, err
		}
	} else {
		next, err = generateN(k.Type, len(current))
		if err != nil {
			return nil, nil, err
		}
	}

	k.Current = current
	k.Next = next
	return k.Current, k.Next, nil
}

// CurrentPublicKeys projects the current set to public keys, in
// construction order (never sorted).
func (k *KeySet) CurrentPublicKeys() [][32]byte { return projectPublic(k.Current) }

// NextPublicKeys projects the next set to public keys, in construction order.
func (k *KeySet) NextPublicKeys() [][32]byte { return projectPublic(k.Next) }

// CurrentPrivateKeys returns the current set's raw private keys, in
// construction order.
func (k *KeySet) CurrentPrivateKeys() [][]byte { return projectPrivate(k.Current) }

// NextPrivateKeys returns the next set's raw private keys, in
// construction order.
func (k *KeySet) NextPrivateKeys() [][]byte { return projectPrivate(k.Next) }

func projectPublic(kps []KeyPair) [][32]byte {
	out := make([][32]byte, len(kps))
	for i, kp := range kps {
		out[i] = kp.Public
	}
	return out
}

func projectPrivate(kps []KeyPair) [][]byte {
	out := make([][]byte, len(kps))
	for i, kp := range kps {
		out[i] = kp.Private
	}
	return out
}

// CurrentPrivateKeysB58 base58-encodes the current set's private keys.
func (k *KeySet) CurrentPrivateKeysB58() ([]string, error) {
	return encodeAllPrivate(k.Type, k.Current)
}

// NextPrivateKeysB58 base58-encodes the next set's private keys.
func (k *KeySet) NextPrivateKeysB58() ([]string, error) {
	return encodeAllPrivate(k.Type, k.Next)
}

func encodeAllPrivate(t Type, kps []KeyPair) ([]string, error) {
	out := make([]string, len(kps))
	for i, kp := range kps {
		s, err := t.EncodePrivate(kp.Private)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

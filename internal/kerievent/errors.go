package kerievent

import "errors"

// Errors returned by Builder and the verification helpers.
var (
	ErrThreshold          = errors.New("threshold out of range")
	ErrRotationToEmpty    = errors.New("rotation with empty next key set")
	ErrDigestMismatch     = errors.New("digest mismatch")
	ErrCommitmentMismatch = errors.New("next key commitment does not bind successor's current keys")
)

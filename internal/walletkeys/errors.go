package walletkeys

import "errors"

// Errors returned by the ChainEvent log and Keys state machine.
var (
	ErrKeySetIncoherence    = errors.New("key set incoherence: requested block not present in chain event")
	ErrRotationIncoherence  = errors.New("rotation incoherence: no prior chain event")
	ErrRotationIncompatible = errors.New("rotation incompatible: last event cannot be rotated from")
)

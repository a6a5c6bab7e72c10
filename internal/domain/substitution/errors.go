package substitution

import "errors"

// Sentinel rejection reasons surfaced to the caller. The messages are the
// human-readable reasons shown to the scorer.
var (
	ErrLimitReached    = errors.New("set substitution limit reached")
	ErrNotOnCourt      = errors.New("player leaving is not on court")
	ErrAlreadyOnCourt  = errors.New("player entering is already on court")
	ErrPairedElsewhere = errors.New("already paired with a different player")
	ErrPairExhausted   = errors.New("pair exhausted")
)

package service

import "errors"

// Sentinel kinds for action-intake rejections. These are precondition
// violations in the domain sense: no event is appended and match state is
// unaffected.
var (
	ErrUnknownMatch  = errors.New("match not loaded")
	ErrMatchFinished = errors.New("match already finished")
	ErrSetFinished   = errors.New("set already finished")
	ErrNoLineup      = errors.New("no lineup set for the current set")
	ErrTimeoutLimit  = errors.New("timeout limit reached for this set")
	ErrNothingToUndo = errors.New("event log is empty")
	ErrNotStarted    = errors.New("service not started")
)

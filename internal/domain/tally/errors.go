package tally

import "errors"

// Sentinel kinds for tally contract violations.
var (
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidParticipant = errors.New("invalid participant")
)

package reporter

import (
	"errors"

	"github.com/okian/ringside/internal/domain/feedback"
	"github.com/okian/ringside/internal/domain/tally"
)

// Sentinel kinds for reporter errors.
var (
	ErrIOFailure      = errors.New("destination i/o failure")
	ErrHeaderMismatch = errors.New("existing header does not match universe")
	ErrClosed         = errors.New("reporter closed")
	ErrInvalidRow     = errors.New("invalid row")
)

// Errors surfaced from the domain packages, re-exported so callers of the
// reporter need a single import.
var (
	ErrInvalidCategory    = tally.ErrInvalidCategory
	ErrInvalidParticipant = tally.ErrInvalidParticipant
	ErrEmptyUniverse      = feedback.ErrEmptyUniverse
)

package feedback

import "errors"

// Sentinel kinds for feedback selection.
var (
	ErrEmptyUniverse = errors.New("empty category universe")
	ErrCatalog       = errors.New("invalid feedback catalog")
)

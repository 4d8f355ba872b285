package category

import "errors"

// Sentinel kinds for universe construction.
var (
	ErrInvalidUniverse = errors.New("invalid category universe")
)

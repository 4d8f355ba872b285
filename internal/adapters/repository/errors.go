package repository

import "errors"

// Sentinel kinds for destination errors.
var (
	ErrClosed = errors.New("destination closed")
	ErrOpen   = errors.New("open destination")
)

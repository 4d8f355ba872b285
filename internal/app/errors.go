package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted   = errors.New("session not started")
	ErrBackpressure = errors.New("event queue full")
	ErrRender       = errors.New("render feedback")
)

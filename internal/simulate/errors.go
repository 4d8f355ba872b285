package simulate

import "errors"

// Sentinel errors returned by the simulator.
var (
	ErrInvalidConfig = errors.New("invalid simulator config")
	ErrUnhealthy     = errors.New("service is not healthy")
	ErrRequest       = errors.New("request failed")
)

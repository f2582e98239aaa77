package gbm

import "errors"

// Domain errors for simulation parameters.
var (
	// ErrInvalidParameter indicates a simulation parameter outside its
	// valid range. Validation runs before any rendering begins.
	ErrInvalidParameter = errors.New("gbm: invalid parameter")
)

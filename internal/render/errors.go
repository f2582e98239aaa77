package render

import (
	"errors"
	"fmt"
)

// Domain errors for frame rendering.
var (
	// ErrFrameIndex indicates a frame index outside [0, horizon].
	ErrFrameIndex = errors.New("render: frame index out of range")
)

// FrameError wraps a render failure with the failing time index.
type FrameError struct {
	T   int
	Err error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("render frame %d: %v", e.T, e.Err)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

package uart

import (
	"errors"
	"fmt"
)

// FramingSentinel replaces a byte received with a framing error.
const FramingSentinel byte = 0

var (
	// ErrOverrun indicates the receiver dropped bytes because they were
	// not read in time. Reception stops until the receiver is reset.
	ErrOverrun = errors.New("receiver overrun")
	// ErrClosed indicates the transport is closed.
	ErrClosed = errors.New("transport closed")
)

// FramingError indicates a byte was received without a valid stop bit.
type FramingError struct {
	// Data is the corrupted byte which was discarded.
	Data byte
}

// Error implements error.
func (e *FramingError) Error() string {
	return fmt.Sprintf("framing error, discarded 0x%02x", e.Data)
}

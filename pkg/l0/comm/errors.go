package comm

import (
	"errors"
	"fmt"
)

var (
	// ErrShortFrame indicates fewer bytes than a frame are available.
	ErrShortFrame = errors.New("short frame")
	// ErrNoSyncMarker indicates the window doesn't start with the sync marker.
	ErrNoSyncMarker = errors.New("no sync marker")
	// ErrChecksum indicates checksum mismatch.
	ErrChecksum = errors.New("checksum mismatch")
)

// UnsupportedTypeError indicates a frame with unknown message type.
type UnsupportedTypeError struct {
	Type byte
}

// Error implements error.
func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported message type 0x%02x", e.Type)
}

// FrameSizeError indicates the size registered for a message type doesn't
// match the frame window.
type FrameSizeError struct {
	Type     byte
	Expected int
	Actual   int
}

// Error implements error.
func (e *FrameSizeError) Error() string {
	return fmt.Sprintf("message type 0x%02x expects %d bytes frame, got %d", e.Type, e.Expected, e.Actual)
}

// TransportError wraps a failure of the underlying byte stream.
// It's fatal to the session.
type TransportError struct {
	Err error
}

// Error implements error.
func (e *TransportError) Error() string {
	return "transport error: " + e.Err.Error()
}

// Unwrap returns the cause.
func (e *TransportError) Unwrap() error {
	return e.Err
}

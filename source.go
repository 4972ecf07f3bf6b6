package usertrack

import (
	"errors"
	"fmt"

	"github.com/gokinect/go-usertrack/tracker"
)

// WaitMode selects how WaitFrame blocks on the sensor's stream
// generators
type WaitMode int

const (
	// WaitAny returns as soon as any required stream has a new frame
	WaitAny WaitMode = iota
	// WaitAll waits until every required stream has a new frame
	WaitAll
)

// ErrClosed is returned by source operations after Close
var ErrClosed = errors.New("source is closed")

// SourceError wraps a failure reported by the sensor middleware.  It is
// the only fatal error category, everything else the pipeline absorbs
// locally
type SourceError struct {
	Op  string
	Err error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("sensor source %s: %v", e.Op, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Source is the per frame surface of the sensor middleware.  Frame
// accessors return buffers valid until the next WaitFrame call, the
// caller must copy anything it keeps
type Source interface {
	// WaitFrame blocks until new frame data is ready per the wait mode
	WaitFrame(mode WaitMode) error

	// Bounds returns the map output resolution
	Bounds() (width, height int)

	// DepthFrame is the row major depth sample map, 0 means no reading
	DepthFrame() []uint16

	// UserLabelFrame parallels DepthFrame with a user ID per pixel,
	// 0 for background
	UserLabelFrame() []uint16

	// ColorFrame is the RGB24 camera image
	ColorFrame() []uint8

	// IRFrame is the raw infrared intensity map
	IRFrame() []uint16

	// Events returns the user lifecycle notifications raised since the
	// last call and clears them
	Events() []tracker.Event

	// Close stops generation and releases the device
	Close() error
}

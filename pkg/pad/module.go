// Package pad reads absolute axis events from a gamepad.
package pad

import (
	"errors"
	"fmt"
)

// AxisCode identifies a physical axis. The values are the Linux evdev ABS_*
// codes, which are also what most gamepad drivers report.
type AxisCode uint16

const (
	AxisLeftX        AxisCode = 0x00 // ABS_X
	AxisLeftY        AxisCode = 0x01 // ABS_Y
	AxisLeftTrigger  AxisCode = 0x02 // ABS_Z
	AxisRightX       AxisCode = 0x03 // ABS_RX
	AxisRightY       AxisCode = 0x04 // ABS_RY
	AxisRightTrigger AxisCode = 0x05 // ABS_RZ
)

func (a AxisCode) String() string {
	switch a {
	case AxisLeftX:
		return "ABS_X"
	case AxisLeftY:
		return "ABS_Y"
	case AxisLeftTrigger:
		return "ABS_Z"
	case AxisRightX:
		return "ABS_RX"
	case AxisRightY:
		return "ABS_RY"
	case AxisRightTrigger:
		return "ABS_RZ"
	}
	return fmt.Sprintf("ABS_%#x", uint16(a))
}

// Known reports whether the axis is one of the six the controller tracks.
func (a AxisCode) Known() bool {
	return a <= AxisRightTrigger
}

type Event struct {
	Axis  AxisCode
	Value int32
}

// Device is a source of raw axis events.
type Device interface {
	Name() string
	// Read blocks until at least one event is available and returns every
	// event that could be read without blocking again.
	Read() ([]Event, error)
	Close() error
}

// Opener opens the configured device. It is called again after every
// device failure.
type Opener func() (Device, error)

var (
	ErrNoDevice    = errors.New("no gamepad found")
	ErrUnsupported = errors.New("gamepad input is only supported on linux")
)

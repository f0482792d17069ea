// Package protocol defines the control message exchanged over the link and
// the codecs that put it on the wire.
package protocol

import (
	"fmt"

	"github.com/cfoust/padlink/pkg/controller"
	"github.com/cfoust/padlink/pkg/failure"
)

const (
	MIN_VALUE = -1.0
	MAX_VALUE = 1.0
)

// ControlMessage is a bounded motion command. Every field is in [-1, 1];
// the only ways to obtain one are NewControlMessage, FromState and Decode,
// all of which enforce the bound.
type ControlMessage struct {
	x   float64
	y   float64
	z   float64
	rot float64
}

// wireMessage is the on-the-wire shape used for encoding.
type wireMessage struct {
	X   *float64 `json:"x" cbor:"x"`
	Y   *float64 `json:"y" cbor:"y"`
	Z   *float64 `json:"z" cbor:"z"`
	Rot *float64 `json:"rot" cbor:"rot"`
}

func inBounds(value float64) bool {
	// NaN fails both comparisons.
	return value >= MIN_VALUE && value <= MAX_VALUE
}

func NewControlMessage(x, y, z, rot float64) (ControlMessage, error) {
	for _, field := range []struct {
		name  string
		value float64
	}{
		{"x", x},
		{"y", y},
		{"z", z},
		{"rot", rot},
	} {
		if !inBounds(field.value) {
			return ControlMessage{}, failure.Newf(
				failure.KindValidation,
				"field %s out of range [%g, %g]: %g",
				field.name,
				MIN_VALUE,
				MAX_VALUE,
				field.value,
			)
		}
	}

	return ControlMessage{x: x, y: y, z: z, rot: rot}, nil
}

// FromState maps controller axes onto a command:
//
//	x   =  left stick x   (strafe)
//	y   = -left stick y   (forward/back)
//	z   =  right stick y  (vertical)
//	rot =  right stick x  (yaw)
//
// Triggers are not transmitted.
func FromState(state controller.State) (ControlMessage, error) {
	return NewControlMessage(
		state.LeftStick.X,
		-state.LeftStick.Y,
		state.RightStick.Y,
		state.RightStick.X,
	)
}

func (m ControlMessage) X() float64   { return m.x }
func (m ControlMessage) Y() float64   { return m.y }
func (m ControlMessage) Z() float64   { return m.z }
func (m ControlMessage) Rot() float64 { return m.rot }

func (m ControlMessage) String() string {
	return fmt.Sprintf("x=%.4f y=%.4f z=%.4f rot=%.4f", m.x, m.y, m.z, m.rot)
}

func (m ControlMessage) wire() wireMessage {
	return wireMessage{X: &m.x, Y: &m.y, Z: &m.z, Rot: &m.rot}
}

var FIELDS = [4]string{"x", "y", "z", "rot"}

// fromFields builds a message from a decoded object. Keys must match
// exactly; both encoding/json and cbor would otherwise match them without
// regard to case.
func fromFields[R any](fields map[string]R, unmarshal func(R, interface{}) error) (ControlMessage, error) {
	var values [4]float64
	for i, name := range FIELDS {
		raw, ok := fields[name]
		if !ok {
			return ControlMessage{}, failure.Newf(failure.KindValidation, "missing field %s", name)
		}

		var value *float64
		if err := unmarshal(raw, &value); err != nil {
			return ControlMessage{}, failure.Wrap(failure.KindValidation, "field "+name, err)
		}
		if value == nil {
			return ControlMessage{}, failure.Newf(failure.KindValidation, "missing field %s", name)
		}
		values[i] = *value
	}

	return NewControlMessage(values[0], values[1], values[2], values[3])
}

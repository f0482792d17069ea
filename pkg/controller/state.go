package controller

import (
	"math"
	"sync/atomic"
)

type Stick struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Triggers struct {
	Left  float64 `json:"left"`
	Right float64 `json:"right"`
}

// State is an immutable copy of every normalized axis. Stick axes are in
// [-1, 1] and triggers in [0, 1].
type State struct {
	LeftStick  Stick    `json:"leftStick"`
	RightStick Stick    `json:"rightStick"`
	Triggers   Triggers `json:"triggers"`
}

// axis is a float64 that can be written by the sampler and read by the
// snapshot builder without a lock. Axes are independent, so a snapshot may
// mix values written at slightly different times.
type axis struct {
	bits atomic.Uint64
}

func (a *axis) Load() float64 {
	return math.Float64frombits(a.bits.Load())
}

func (a *axis) Store(value float64) {
	a.bits.Store(math.Float64bits(value))
}

type axes struct {
	leftX        axis
	leftY        axis
	rightX       axis
	rightY       axis
	leftTrigger  axis
	rightTrigger axis
}

func (a *axes) snapshot() State {
	return State{
		LeftStick: Stick{
			X: a.leftX.Load(),
			Y: a.leftY.Load(),
		},
		RightStick: Stick{
			X: a.rightX.Load(),
			Y: a.rightY.Load(),
		},
		Triggers: Triggers{
			Left:  a.leftTrigger.Load(),
			Right: a.rightTrigger.Load(),
		},
	}
}

// Package controller keeps a normalized view of a gamepad's axes current by
// sampling its raw events in the background.
package controller

import (
	"context"

	"github.com/cfoust/padlink/pkg/failure"
	"github.com/cfoust/padlink/pkg/pad"
	"github.com/cfoust/padlink/pkg/retry"
	"github.com/cfoust/padlink/pkg/utils"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Controller owns the sampler goroutine and the axis values it writes.
// There is exactly one writer (the sampler) and callers of Snapshot only
// read.
type Controller struct {
	open    pad.Opener
	policy  *retry.Policy
	log     zerolog.Logger
	axes    axes
	session *utils.Session
}

func New(open pad.Opener, policy *retry.Policy) *Controller {
	logger := log.With().Str("component", "sampler").Logger()
	if policy == nil {
		policy = retry.New(retry.DEFAULT_DELAY, logger)
	}

	return &Controller{
		open:   open,
		policy: policy,
		log:    logger,
	}
}

// Snapshot copies the current axis values. It never blocks and never fails.
func (c *Controller) Snapshot() State {
	return c.axes.snapshot()
}

// Start launches the sampler. It returns the session that joins it; Stop
// does the same.
func (c *Controller) Start(ctx context.Context) *utils.Session {
	c.session = utils.NewSession(ctx)
	c.session.Go(c.sample)
	return c.session
}

// Stop signals the sampler and waits for it to exit.
func (c *Controller) Stop() {
	if c.session == nil {
		return
	}
	c.session.Stop()
}

// Apply stores one raw event into the matching axis.
func (c *Controller) Apply(event pad.Event) {
	switch event.Axis {
	case pad.AxisLeftX:
		c.axes.leftX.Store(NormalizeStick(event.Value))
	case pad.AxisLeftY:
		c.axes.leftY.Store(NormalizeStick(event.Value))
	case pad.AxisRightX:
		c.axes.rightX.Store(NormalizeStick(event.Value))
	case pad.AxisRightY:
		c.axes.rightY.Store(NormalizeStick(event.Value))
	case pad.AxisLeftTrigger:
		c.axes.leftTrigger.Store(NormalizeTrigger(event.Value))
	case pad.AxisRightTrigger:
		c.axes.rightTrigger.Store(NormalizeTrigger(event.Value))
	}
}

func (c *Controller) sample(ctx context.Context) {
	var device pad.Device
	var release func() bool

	closeDevice := func() {
		if device == nil {
			return
		}
		release()
		device.Close()
		device = nil
	}
	defer closeDevice()

	for ctx.Err() == nil {
		if device == nil {
			opened, err := c.open()
			if err != nil {
				if c.policy.OnFailure(ctx, failure.Wrap(failure.KindDevice, "open", err)) != nil {
					return
				}
				continue
			}

			device = opened
			// Closing the device unblocks a pending Read on shutdown.
			release = context.AfterFunc(ctx, func() {
				opened.Close()
			})
			c.log.Info().Str("device", device.Name()).Msg("gamepad connected")
		}

		events, err := device.Read()
		if err != nil {
			closeDevice()
			if ctx.Err() != nil {
				return
			}
			if c.policy.OnFailure(ctx, failure.Wrap(failure.KindDevice, "read", err)) != nil {
				return
			}
			continue
		}

		for _, event := range events {
			c.Apply(event)
		}
	}
}

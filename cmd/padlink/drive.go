package main

import (
	"github.com/cfoust/padlink/pkg/config"
	"github.com/cfoust/padlink/pkg/controller"
	"github.com/cfoust/padlink/pkg/pad"
	"github.com/cfoust/padlink/pkg/protocol"
	"github.com/cfoust/padlink/pkg/retry"
	"github.com/cfoust/padlink/pkg/uplink"

	"github.com/rs/zerolog/log"
)

func drive(settings config.DriveSettings) error {
	// A missing endpoint is a precondition failure, not something to retry.
	if err := settings.Validate(); err != nil {
		return err
	}

	codec, err := protocol.CodecByName(settings.Codec)
	if err != nil {
		return err
	}

	ctx, cancel := interrupted()
	defer cancel()

	gamepad := controller.New(
		pad.EvdevOpener(settings.Device),
		retry.New(settings.RetryDelay, log.With().Str("component", "sampler").Logger()),
	)

	link := uplink.New(gamepad, uplink.Options{
		Endpoint:     settings.Endpoint,
		Interval:     settings.Interval,
		WriteTimeout: settings.WriteTimeout,
		Codec:        codec,
		Policy:       retry.New(settings.RetryDelay, log.With().Str("component", "uplink").Logger()),
	})

	status := link.Status()
	defer status.Done()

	sampling := gamepad.Start(ctx)
	streaming := link.Start(ctx)

	log.Info().
		Str("endpoint", settings.Endpoint).
		Str("codec", codec.Name()).
		Dur("interval", settings.Interval).
		Msg("streaming controller")

	for {
		select {
		case state := <-status.Recv():
			if state == uplink.StatusDisconnected {
				log.Debug().Msg("link down")
			}
		case <-ctx.Done():
			log.Info().Msg("stopping")
			streaming.Stop()
			sampling.Stop()
			return nil
		}
	}
}

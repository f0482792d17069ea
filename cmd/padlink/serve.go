package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/cfoust/padlink/pkg/config"
	"github.com/cfoust/padlink/pkg/ingress"
	"github.com/cfoust/padlink/pkg/netwait"
	"github.com/cfoust/padlink/pkg/retry"
	"github.com/cfoust/padlink/pkg/sink"
	"github.com/cfoust/padlink/pkg/web"

	opt "github.com/repeale/fp-go/option"
	"github.com/rs/zerolog/log"
)

func buildSinks(settings config.SinkSettings) (sink.Multi, error) {
	logger := log.With().Str("component", "sink").Logger()
	sinks := sink.Multi{}

	if settings.Log {
		sinks = append(sinks, sink.NewLog(logger))
	}

	if settings.Serial.Port != "" {
		serial, err := sink.OpenSerial(settings.Serial)
		if err != nil {
			sinks.Close()
			return nil, err
		}
		logger.Info().Str("port", settings.Serial.Port).Msg("forwarding commands to serial")
		sinks = append(sinks, serial)
	}

	if settings.Redis.Address != "" {
		logger.Info().Str("address", settings.Redis.Address).Msg("publishing commands to redis")
		sinks = append(sinks, sink.NewRedis(settings.Redis))
	}

	if settings.Record.Path != "" {
		recorder, err := sink.OpenRecorder(settings.Record.Path)
		if err != nil {
			sinks.Close()
			return nil, err
		}
		logger.Info().Str("path", settings.Record.Path).Msg("recording commands")
		sinks = append(sinks, recorder)
	}

	return sinks, nil
}

func serve(settings config.ServeSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	ctx, cancel := interrupted()
	defer cancel()

	network := settings.Network()
	if opt.IsSome(network) {
		log.Info().Str("ssid", network.Value.SSID).Msg("waiting for network")
	}

	policy := retry.New(settings.RetryDelay, log.With().Str("component", "netwait").Logger())
	ip, err := netwait.Wait(ctx, settings.Interface, nil, policy)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
	log.Info().Str("ip", ip.String()).Msg("network ready")

	sinks, err := buildSinks(settings.Sinks)
	if err != nil {
		return err
	}
	defer sinks.Close()

	wsIngress := ingress.NewWSIngress(sinks)

	mux := http.NewServeMux()
	mux.Handle("/", NoStore(web.Site(settings.Path, wsIngress.Active)))
	mux.Handle(settings.Path, wsIngress)

	listen, err := net.Listen("tcp", settings.Address)
	if err != nil {
		log.Error().Err(err).Msg("failed to bind port")
		return err
	}

	log.Info().Msgf("listening on http://%v%s", listen.Addr(), settings.Path)

	httpServer := &http.Server{
		Handler: mux,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	errc := make(chan error, 1)
	go func() {
		errc <- httpServer.Serve(listen)
	}()

	select {
	case err := <-errc:
		log.Error().Err(err).Msg("failed to serve")
		return err
	case <-ctx.Done():
		log.Info().Msg("terminating")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return httpServer.Shutdown(shutdownCtx)
}

// Package uplink streams controller snapshots to the receiver over a
// persistent WebSocket, reconnecting whenever the link fails.
package uplink

import (
	"context"
	"fmt"
	"time"

	"github.com/cfoust/padlink/pkg/controller"
	"github.com/cfoust/padlink/pkg/failure"
	"github.com/cfoust/padlink/pkg/protocol"
	"github.com/cfoust/padlink/pkg/retry"
	"github.com/cfoust/padlink/pkg/utils"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"nhooyr.io/websocket"
)

const (
	DEFAULT_INTERVAL      = 50 * time.Millisecond
	DEFAULT_WRITE_TIMEOUT = 5 * time.Second
)

type Status uint8

const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusConnected
	StatusStopped
)

func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusStopped:
		return "stopped"
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// Source is anything that can produce a controller snapshot.
type Source interface {
	Snapshot() controller.State
}

type Options struct {
	Endpoint     string
	Interval     time.Duration
	WriteTimeout time.Duration
	Codec        protocol.Codec
	Policy       *retry.Policy
}

type Uplink struct {
	endpoint     string
	interval     time.Duration
	writeTimeout time.Duration
	codec        protocol.Codec
	policy       *retry.Policy
	source       Source
	log          zerolog.Logger
	status       *utils.Topic[Status]
	session      *utils.Session
}

func New(source Source, options Options) *Uplink {
	logger := log.With().Str("component", "uplink").Str("endpoint", options.Endpoint).Logger()

	uplink := &Uplink{
		endpoint:     options.Endpoint,
		interval:     options.Interval,
		writeTimeout: options.WriteTimeout,
		codec:        options.Codec,
		policy:       options.Policy,
		source:       source,
		log:          logger,
		status:       utils.NewTopic[Status](),
	}

	if uplink.interval <= 0 {
		uplink.interval = DEFAULT_INTERVAL
	}
	if uplink.writeTimeout <= 0 {
		uplink.writeTimeout = DEFAULT_WRITE_TIMEOUT
	}
	if uplink.codec == nil {
		uplink.codec = protocol.JSON
	}
	if uplink.policy == nil {
		uplink.policy = retry.New(retry.DEFAULT_DELAY, logger)
	}

	return uplink
}

// Status subscribes to connection state transitions.
func (u *Uplink) Status() *utils.Subscriber[Status] {
	return u.status.Subscribe()
}

func (u *Uplink) setStatus(status Status) {
	u.log.Debug().Stringer("status", status).Msg("link state")
	u.status.Publish(status)
}

func (u *Uplink) Start(ctx context.Context) *utils.Session {
	u.session = utils.NewSession(ctx)
	u.session.Go(func(ctx context.Context) {
		u.Run(ctx)
	})
	return u.session
}

// Stop signals the connection loop and waits for it to exit. A send that is
// already in flight completes first.
func (u *Uplink) Stop() {
	if u.session == nil {
		return
	}
	u.session.Stop()
}

// Run connects, streams and reconnects until ctx is cancelled. Transport
// failures never end the loop.
func (u *Uplink) Run(ctx context.Context) {
	defer u.setStatus(StatusStopped)

	for ctx.Err() == nil {
		u.setStatus(StatusConnecting)
		conn, err := u.dial(ctx)
		if err != nil {
			u.setStatus(StatusDisconnected)
			if ctx.Err() != nil {
				return
			}
			if u.policy.OnFailure(ctx, err) != nil {
				return
			}
			continue
		}

		u.log.Info().Msg("connected to receiver")
		u.setStatus(StatusConnected)

		err = u.stream(ctx, conn)
		u.setStatus(StatusDisconnected)
		if err == nil {
			conn.Close(websocket.StatusNormalClosure, "controller stopping")
			return
		}

		conn.Close(websocket.StatusGoingAway, "reconnecting")
		if u.policy.OnFailure(ctx, err) != nil {
			return
		}
	}
}

func (u *Uplink) dial(ctx context.Context) (*websocket.Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, u.writeTimeout)
	defer cancel()

	conn, _, err := websocket.Dial(dialCtx, u.endpoint, nil)
	if err != nil {
		return nil, failure.Wrap(failure.KindTransport, "dial", err)
	}
	return conn, nil
}

// stream sends one snapshot per interval. It returns nil once ctx is
// cancelled and a transport error if the connection fails.
func (u *Uplink) stream(ctx context.Context, conn *websocket.Conn) error {
	// The receiver never sends data; reading in the background processes
	// control frames and cancels connCtx when the peer goes away. connCtx is
	// not derived from ctx so that cancellation never aborts a send midway.
	connCtx := conn.CloseRead(context.Background())

	frame := websocket.MessageText
	if u.codec.Frame() == protocol.FrameBinary {
		frame = websocket.MessageBinary
	}

	ticker := time.NewTicker(u.interval)
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			return nil
		}

		if err := u.send(connCtx, conn, frame); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-connCtx.Done():
			return failure.Newf(failure.KindTransport, "receiver closed the connection")
		case <-ticker.C:
		}
	}
}

func (u *Uplink) send(connCtx context.Context, conn *websocket.Conn, frame websocket.MessageType) error {
	message, err := protocol.FromState(u.source.Snapshot())
	if err != nil {
		// The sampler clamps every axis, so this is a bug rather than
		// something the link can recover from. Skip the tick.
		u.log.Error().Err(err).Msg("snapshot produced an invalid command")
		return nil
	}

	data, err := u.codec.Encode(message)
	if err != nil {
		return failure.Wrap(failure.KindTransport, "encode", err)
	}

	writeCtx, cancel := context.WithTimeout(connCtx, u.writeTimeout)
	defer cancel()

	if err := conn.Write(writeCtx, frame, data); err != nil {
		return failure.Wrap(failure.KindTransport, "send", err)
	}
	return nil
}

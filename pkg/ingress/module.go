// Package ingress accepts the controller's WebSocket and forwards every
// command that passes validation to a sink.
package ingress

import (
	"context"
	"errors"
	"net/http"

	"github.com/cfoust/padlink/pkg/failure"
	"github.com/cfoust/padlink/pkg/protocol"
	"github.com/cfoust/padlink/pkg/sink"

	"github.com/mileusna/useragent"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sasha-s/go-deadlock"
	"nhooyr.io/websocket"
)

// WSIngress serves exactly one controller connection at a time. There is
// no authentication: anyone who can reach the endpoint can issue commands.
type WSIngress struct {
	sink   sink.Sink
	log    zerolog.Logger
	mutex  deadlock.Mutex
	active bool
}

func NewWSIngress(target sink.Sink) *WSIngress {
	return &WSIngress{
		sink: target,
		log:  log.With().Str("component", "ingress").Logger(),
	}
}

func (server *WSIngress) acquire() bool {
	server.mutex.Lock()
	defer server.mutex.Unlock()

	if server.active {
		return false
	}
	server.active = true
	return true
}

func (server *WSIngress) release() {
	server.mutex.Lock()
	server.active = false
	server.mutex.Unlock()
}

// Active reports whether a controller is currently connected.
func (server *WSIngress) Active() bool {
	server.mutex.Lock()
	defer server.mutex.Unlock()
	return server.active
}

// HandleClient receives commands until the peer leaves or sends something
// invalid. A clean close returns nil; an invalid command closes the
// connection and returns a validation error.
func (server *WSIngress) HandleClient(ctx context.Context, c *websocket.Conn, logger zerolog.Logger) error {
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				logger.Info().Msg("controller disconnected")
				return nil
			}
			return failure.Wrap(failure.KindTransport, "read", err)
		}

		frame := protocol.FrameText
		if typ == websocket.MessageBinary {
			frame = protocol.FrameBinary
		}

		message, err := protocol.Decode(frame, data)
		if err != nil {
			c.Close(websocket.StatusPolicyViolation, "invalid command")
			return err
		}

		if err := server.sink.Handle(ctx, message); err != nil {
			logger.Error().Err(err).Msg("command sink failed")
		}
	}
}

func (server *WSIngress) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !server.acquire() {
		server.log.Warn().Str("host", r.RemoteAddr).Msg("rejecting second controller")
		http.Error(w, "a controller is already connected", http.StatusServiceUnavailable)
		return
	}
	defer server.release()

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		server.log.Error().Err(err).Msg("error accepting controller connection")
		return
	}

	defer c.Close(websocket.StatusInternalError, "operational fault during relay")

	// Proxies put the original address here, so check it first
	hostname := r.RemoteAddr
	original, ok := r.Header["X-Forwarded-For"]
	if ok {
		hostname = original[0]
	}

	agent := useragent.Parse(r.UserAgent())
	logger := server.log.With().Str("host", hostname).Logger()
	logger.Info().
		Str("agent", agent.Name).
		Str("os", agent.OS).
		Msg("controller connected")

	err = server.HandleClient(r.Context(), c, logger)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}

	switch failure.ActionFor(err) {
	case failure.ActionDrop:
		logger.Warn().Err(err).Msg("dropped controller after invalid command")
	default:
		logger.Error().Err(err).Msg("controller connection failed")
	}
}

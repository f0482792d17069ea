// Package sink contains the consumers that receive validated commands on
// the receiving side of the link.
package sink

import (
	"context"
	"errors"

	"github.com/cfoust/padlink/pkg/protocol"

	"github.com/rs/zerolog"
)

type Sink interface {
	Handle(ctx context.Context, message protocol.ControlMessage) error
}

type SinkFunc func(ctx context.Context, message protocol.ControlMessage) error

func (f SinkFunc) Handle(ctx context.Context, message protocol.ControlMessage) error {
	return f(ctx, message)
}

// Log writes every command at debug level.
type Log struct {
	log zerolog.Logger
}

func NewLog(logger zerolog.Logger) *Log {
	return &Log{log: logger}
}

func (l *Log) Handle(ctx context.Context, message protocol.ControlMessage) error {
	l.log.Debug().
		Float64("x", message.X()).
		Float64("y", message.Y()).
		Float64("z", message.Z()).
		Float64("rot", message.Rot()).
		Msg("command")
	return nil
}

// Multi hands each command to every sink in order. A failing sink does not
// stop the others; their errors are joined.
type Multi []Sink

func (m Multi) Handle(ctx context.Context, message protocol.ControlMessage) error {
	var errs []error
	for _, sink := range m {
		if err := sink.Handle(ctx, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink that holds a resource.
func (m Multi) Close() error {
	var errs []error
	for _, sink := range m {
		closer, ok := sink.(interface{ Close() error })
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

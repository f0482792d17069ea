package utils

import (
	"context"
	"sync"
)

// Session owns a cancellable context and the goroutines started under it.
type Session struct {
	context context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewSession(ctx context.Context) *Session {
	ctx, cancel := context.WithCancel(ctx)
	return &Session{
		context: ctx,
		cancel:  cancel,
	}
}

func (s *Session) IsDone() bool {
	return s.context.Err() != nil
}

// Go runs fn in a goroutine tracked by the session.
func (s *Session) Go(fn func(ctx context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn(s.context)
	}()
}

// Stop cancels the session and waits for every goroutine to return.
func (s *Session) Stop() {
	s.cancel()
	s.wg.Wait()
}

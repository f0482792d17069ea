package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// interrupted returns a context that is cancelled on SIGINT or SIGTERM.
func interrupted() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

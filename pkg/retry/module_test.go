package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cfoust/padlink/pkg/failure"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDelay(t *testing.T) {
	policy := New(0, zerolog.Nop())
	assert.Equal(t, time.Second, policy.Delay)
}

func TestFixedDelay(t *testing.T) {
	policy := New(20*time.Millisecond, zerolog.Nop())
	err := failure.Wrap(failure.KindTransport, "dial", errors.New("refused"))

	// The delay does not grow between calls.
	for i := 0; i < 3; i++ {
		start := time.Now()
		require.NoError(t, policy.OnFailure(context.Background(), err))
		elapsed := time.Since(start)
		assert.GreaterOrEqual(t, elapsed, 20*time.Millisecond)
		assert.Less(t, elapsed, 500*time.Millisecond)
	}
}

func TestCancelledWait(t *testing.T) {
	policy := New(time.Hour, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := policy.OnFailure(ctx, errors.New("device gone"))
	assert.ErrorIs(t, err, context.Canceled)
}

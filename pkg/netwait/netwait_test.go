package netwait

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/cfoust/padlink/pkg/retry"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitForAddress(t *testing.T) {
	calls := 0
	lookup := func(name string) ([]net.IP, error) {
		calls++
		assert.Equal(t, "wlan0", name)
		switch calls {
		case 1:
			return nil, errors.New("no such interface")
		case 2:
			return nil, nil
		}
		return []net.IP{net.IPv4(192, 168, 4, 1)}, nil
	}

	ip, err := Wait(context.Background(), "wlan0", lookup, retry.New(time.Millisecond, zerolog.Nop()))
	require.NoError(t, err)
	assert.Equal(t, "192.168.4.1", ip.String())
	assert.Equal(t, 3, calls)
}

func TestWaitCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	lookup := func(name string) ([]net.IP, error) { return nil, nil }
	_, err := Wait(ctx, "", lookup, retry.New(5*time.Millisecond, zerolog.Nop()))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSystemLookupSkipsLoopback(t *testing.T) {
	addrs, err := SystemLookup("")
	require.NoError(t, err)
	for _, ip := range addrs {
		assert.False(t, ip.IsLoopback())
		assert.NotNil(t, ip.To4())
	}
}

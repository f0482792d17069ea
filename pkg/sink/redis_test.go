package sink

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisHandle(t *testing.T) {
	server := miniredis.RunT(t)
	subscriber := server.NewSubscriber()
	defer subscriber.Close()
	subscriber.Subscribe("rover:commands")

	r := NewRedisWithClient(
		redis.NewClient(&redis.Options{Addr: server.Addr()}),
		RedisSettings{Channel: "rover:commands", Key: "rover:latest"},
	)
	defer r.Close()

	ctx := context.Background()
	require.NoError(t, r.Handle(ctx, mustMessage(t, 0.5, -1, 0, 0.25)))

	latest, err := server.Get("rover:latest")
	require.NoError(t, err)
	assert.JSONEq(t, `{"x":0.5,"y":-1,"z":0,"rot":0.25}`, latest)

	select {
	case message := <-subscriber.Messages():
		assert.Equal(t, "rover:commands", message.Channel)
		assert.JSONEq(t, latest, message.Message)
	case <-time.After(time.Second):
		t.Fatal("no command published")
	}

	require.NoError(t, r.Handle(ctx, mustMessage(t, 0, 0, 1, 0)))
	latest, err = server.Get("rover:latest")
	require.NoError(t, err)
	assert.JSONEq(t, `{"x":0,"y":0,"z":1,"rot":0}`, latest)
}

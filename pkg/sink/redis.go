package sink

import (
	"context"
	"encoding/json"

	"github.com/cfoust/padlink/pkg/protocol"

	"github.com/go-redis/redis/v9"
)

type RedisSettings struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// Commands are published on this channel.
	Channel string `yaml:"channel"`
	// The latest command is stored under this key.
	Key string `yaml:"key"`
}

const (
	DEFAULT_CHANNEL = "padlink:commands"
	DEFAULT_KEY     = "padlink:latest"
)

type redisCommand struct {
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	Z   float64 `json:"z"`
	Rot float64 `json:"rot"`
}

// Redis stores the most recent command and publishes every command so other
// processes on the vehicle can follow the link.
type Redis struct {
	client  *redis.Client
	channel string
	key     string
}

func NewRedis(settings RedisSettings) *Redis {
	return NewRedisWithClient(
		redis.NewClient(&redis.Options{
			Addr:     settings.Address,
			Password: settings.Password,
			DB:       settings.DB,
		}),
		settings,
	)
}

func NewRedisWithClient(client *redis.Client, settings RedisSettings) *Redis {
	channel := settings.Channel
	if channel == "" {
		channel = DEFAULT_CHANNEL
	}
	key := settings.Key
	if key == "" {
		key = DEFAULT_KEY
	}

	return &Redis{
		client:  client,
		channel: channel,
		key:     key,
	}
}

func (r *Redis) Handle(ctx context.Context, message protocol.ControlMessage) error {
	data, err := json.Marshal(redisCommand{
		X:   message.X(),
		Y:   message.Y(),
		Z:   message.Z(),
		Rot: message.Rot(),
	})
	if err != nil {
		return err
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, r.key, data, 0)
	pipe.Publish(ctx, r.channel, data)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *Redis) Close() error {
	return r.client.Close()
}

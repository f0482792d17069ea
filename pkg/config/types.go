package config

import (
	"time"

	"github.com/cfoust/padlink/pkg/sink"
)

type DriveSettings struct {
	Endpoint     string        `yaml:"endpoint"`
	Device       string        `yaml:"device"`
	Interval     time.Duration `yaml:"interval"`
	RetryDelay   time.Duration `yaml:"retryDelay"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	Codec        string        `yaml:"codec"`
}

type WLANSettings struct {
	SSID     string `yaml:"ssid"`
	Password string `yaml:"password"`
}

type RecordSettings struct {
	Path string `yaml:"path"`
}

type SinkSettings struct {
	Log    bool               `yaml:"log"`
	Serial sink.PortOptions   `yaml:"serial"`
	Redis  sink.RedisSettings `yaml:"redis"`
	Record RecordSettings     `yaml:"record"`
}

type ServeSettings struct {
	Address    string        `yaml:"address"`
	Path       string        `yaml:"path"`
	Interface  string        `yaml:"interface"`
	RetryDelay time.Duration `yaml:"retryDelay"`
	WLAN       *WLANSettings `yaml:"wlan"`
	Sinks      SinkSettings  `yaml:"sinks"`
}

type Config struct {
	Drive DriveSettings `yaml:"drive"`
	Serve ServeSettings `yaml:"serve"`
}

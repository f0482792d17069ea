package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/cfoust/padlink/pkg/failure"
	"github.com/cfoust/padlink/pkg/protocol"

	opt "github.com/repeale/fp-go/option"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DEFAULT []byte

func decode(name string, data []byte, config *Config) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	err := decoder.Decode(config)
	if errors.Is(err, io.EOF) {
		// Empty file
		return nil
	}
	if err != nil {
		return fmt.Errorf("could not parse %s: %w", name, err)
	}
	return nil
}

func readFile(path string, config *Config) error {
	extension := filepath.Ext(path)
	switch extension {
	case ".yaml", ".yml", ".json":
	default:
		return fmt.Errorf("not in a valid format")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if extension == ".json" {
		// Round-trip through YAML so both formats share one decoder and
		// its duration handling.
		var value interface{}
		if err := json.Unmarshal(data, &value); err != nil {
			return err
		}
		data, err = yaml.Marshal(value)
		if err != nil {
			return err
		}
	}

	return decode(path, data, config)
}

// Process starts from the default configuration and merges the provided
// configuration files over it in order.
func Process(configPaths []string) (*Config, error) {
	config := Config{}
	if err := decode("<default>", DEFAULT, &config); err != nil {
		return nil, fmt.Errorf("invalid default config file: %v", err)
	}

	for _, path := range configPaths {
		if err := readFile(path, &config); err != nil {
			return nil, fmt.Errorf(
				"could not process config file %s: %v",
				path,
				err,
			)
		}
	}

	return &config, nil
}

// Validate checks the settings the controller cannot start without. The
// error it returns is a configuration failure and is never retried.
func (d DriveSettings) Validate() error {
	if d.Endpoint == "" {
		return failure.Newf(failure.KindConfiguration, "drive.endpoint is required")
	}

	uri, err := url.Parse(d.Endpoint)
	if err != nil {
		return failure.Wrap(failure.KindConfiguration, "parse drive.endpoint", err)
	}

	scheme := strings.ToLower(uri.Scheme)
	if scheme != "ws" && scheme != "wss" {
		return failure.Newf(failure.KindConfiguration, "drive.endpoint must be a ws:// or wss:// URI, got %q", d.Endpoint)
	}
	if uri.Host == "" {
		return failure.Newf(failure.KindConfiguration, "drive.endpoint has no host: %q", d.Endpoint)
	}

	if _, err := protocol.CodecByName(d.Codec); err != nil {
		return failure.Wrap(failure.KindConfiguration, "drive.codec", err)
	}

	return nil
}

func (s ServeSettings) Validate() error {
	if s.Address == "" {
		return failure.Newf(failure.KindConfiguration, "serve.address is required")
	}
	if !strings.HasPrefix(s.Path, "/") {
		return failure.Newf(failure.KindConfiguration, "serve.path must start with /, got %q", s.Path)
	}
	if s.Path == "/" || s.Path == "/home" {
		return failure.Newf(failure.KindConfiguration, "serve.path %q collides with the web pages", s.Path)
	}
	return nil
}

// Network returns the bootstrap credentials if any were configured.
func (s ServeSettings) Network() opt.Option[WLANSettings] {
	if s.WLAN == nil || s.WLAN.SSID == "" {
		return opt.None[WLANSettings]()
	}
	return opt.Some(*s.WLAN)
}

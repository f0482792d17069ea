package main

import (
	"fmt"
	"os"
	"time"

	"github.com/cfoust/padlink/pkg/config"
	"github.com/cfoust/padlink/pkg/version"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var CLI struct {
	Version bool `help:"Print version information and exit." short:"v"`
	Debug   bool `help:"Whether to enable debug logging."`

	Drive struct {
		Configs  []string `arg:"" optional:"" name:"configs" help:"Configuration files, merged in order." type:"existingfile"`
		Endpoint string   `help:"WebSocket URI of the receiver." env:"PADLINK_ENDPOINT"`
		Device   string   `help:"Input device path (default: first joystick)." env:"PADLINK_DEVICE"`
	} `cmd:"" help:"Stream the local gamepad to a receiver."`

	Serve struct {
		Configs []string `arg:"" optional:"" name:"configs" help:"Configuration files, merged in order." type:"existingfile"`
		Address string   `help:"Address to listen on." env:"PADLINK_ADDRESS"`
	} `cmd:"" help:"Receive commands from a controller."`

	Config struct {
	} `cmd:"" help:"Write padlink's default configuration to standard output."`
}

func writeError(err error) {
	fmt.Fprintf(os.Stderr, "%s\n", err)
	os.Exit(1)
}

func loadConfig(paths []string) *config.Config {
	cfg, err := config.Process(paths)
	if err != nil {
		writeError(err)
	}
	return cfg
}

func main() {
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	log.Logger = log.Output(consoleWriter)

	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	ctx := kong.Parse(&CLI,
		kong.Name("padlink"),
		kong.Description("bridge a gamepad to a remote vehicle over WebSocket"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))

	if CLI.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Warn().Msg("debug logging enabled")
	}

	if CLI.Version {
		fmt.Printf(
			"padlink %s (commit %s)\n",
			version.Version,
			version.GitCommit,
		)
		fmt.Printf(
			"built %s\n",
			version.BuildTime,
		)
		os.Exit(0)
	}

	switch ctx.Command() {
	case "drive", "drive <configs>":
		cfg := loadConfig(CLI.Drive.Configs)
		if CLI.Drive.Endpoint != "" {
			cfg.Drive.Endpoint = CLI.Drive.Endpoint
		}
		if CLI.Drive.Device != "" {
			cfg.Drive.Device = CLI.Drive.Device
		}

		if err := drive(cfg.Drive); err != nil {
			writeError(err)
		}
	case "serve", "serve <configs>":
		cfg := loadConfig(CLI.Serve.Configs)
		if CLI.Serve.Address != "" {
			cfg.Serve.Address = CLI.Serve.Address
		}

		if err := serve(cfg.Serve); err != nil {
			writeError(err)
		}
	case "config":
		os.Stdout.Write(config.DEFAULT)
	}
}

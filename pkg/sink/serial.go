package sink

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/cfoust/padlink/pkg/protocol"

	"go.bug.st/serial"
)

// PortOptions describes the serial line to the motor controller.
type PortOptions struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baudRate"`
	DataBits int    `yaml:"dataBits"`
	StopBits int    `yaml:"stopBits"`
	Parity   string `yaml:"parity"`
}

// Normalize validates the options and applies defaults for any unset values.
func (o PortOptions) Normalize() (PortOptions, error) {
	opts := o

	if opts.BaudRate <= 0 {
		opts.BaudRate = 115200
	}

	if opts.DataBits == 0 {
		opts.DataBits = 8
	}
	if opts.DataBits < 5 || opts.DataBits > 8 {
		return opts, fmt.Errorf("invalid data bits %d: must be between 5 and 8", opts.DataBits)
	}

	if opts.StopBits == 0 {
		opts.StopBits = 1
	}
	if opts.StopBits != 1 && opts.StopBits != 2 {
		return opts, fmt.Errorf("invalid stop bits %d: supported values are 1 or 2", opts.StopBits)
	}

	parity := strings.TrimSpace(strings.ToUpper(opts.Parity))
	switch parity {
	case "", "N", "NONE":
		parity = "N"
	case "E", "EVEN":
		parity = "E"
	case "O", "ODD":
		parity = "O"
	default:
		return opts, fmt.Errorf("unsupported parity %q: expected N, E, or O", opts.Parity)
	}

	opts.Parity = parity
	return opts, nil
}

func (o PortOptions) mode() *serial.Mode {
	mode := &serial.Mode{
		BaudRate: o.BaudRate,
		DataBits: o.DataBits,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	switch o.Parity {
	case "E":
		mode.Parity = serial.EvenParity
	case "O":
		mode.Parity = serial.OddParity
	}

	if o.StopBits == 2 {
		mode.StopBits = serial.TwoStopBits
	}

	return mode
}

// Serial writes one "x y z rot" line per command to a motor controller.
type Serial struct {
	port  io.WriteCloser
	mutex sync.Mutex
}

func OpenSerial(options PortOptions) (*Serial, error) {
	opts, err := options.Normalize()
	if err != nil {
		return nil, err
	}

	port, err := serial.Open(opts.Port, opts.mode())
	if err != nil {
		return nil, fmt.Errorf("could not open serial port %s: %w", opts.Port, err)
	}

	return NewSerial(port), nil
}

func NewSerial(port io.WriteCloser) *Serial {
	return &Serial{port: port}
}

func FormatLine(message protocol.ControlMessage) string {
	return fmt.Sprintf(
		"%.4f %.4f %.4f %.4f\n",
		message.X(),
		message.Y(),
		message.Z(),
		message.Rot(),
	)
}

func (s *Serial) Handle(ctx context.Context, message protocol.ControlMessage) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	_, err := io.WriteString(s.port, FormatLine(message))
	return err
}

func (s *Serial) Close() error {
	return s.port.Close()
}

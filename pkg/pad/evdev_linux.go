//go:build linux

package pad

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"unsafe"

	opt "github.com/repeale/fp-go/option"
	"golang.org/x/sys/unix"
)

const (
	evAbs = 0x03

	// Events read per syscall.
	READ_BATCH = 64
)

// struct input_event from linux/input.h
type inputEvent struct {
	Time  unix.Timeval
	Type  uint16
	Code  uint16
	Value int32
}

var inputEventSize = int(unsafe.Sizeof(inputEvent{}))

type evdevDevice struct {
	file *os.File
	name string
	path string
	buf  []byte
}

// OpenEvdev opens an evdev character device such as /dev/input/event3.
func OpenEvdev(path string) (Device, error) {
	file, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}

	name, err := deviceName(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("%s is not an input device: %w", path, err)
	}

	return &evdevDevice{
		file: file,
		name: name,
		path: path,
		buf:  make([]byte, inputEventSize*READ_BATCH),
	}, nil
}

// EvdevOpener returns an Opener for path, or for the first discovered
// joystick if path is empty.
func EvdevOpener(path string) Opener {
	return func() (Device, error) {
		target := path
		if target == "" {
			found := Discover()
			if opt.IsNone(found) {
				return nil, ErrNoDevice
			}
			target = found.Value
		}
		return OpenEvdev(target)
	}
}

func (d *evdevDevice) Name() string {
	return fmt.Sprintf("%s (%s)", d.name, d.path)
}

func (d *evdevDevice) Read() ([]Event, error) {
	n, err := d.file.Read(d.buf)
	if err != nil {
		return nil, err
	}
	if n%inputEventSize != 0 {
		return nil, fmt.Errorf("short read from %s: %d bytes", d.path, n)
	}

	reader := bytes.NewReader(d.buf[:n])
	events := make([]Event, 0, n/inputEventSize)
	for reader.Len() > 0 {
		var raw inputEvent
		if err := binary.Read(reader, binary.LittleEndian, &raw); err != nil {
			return nil, err
		}

		if raw.Type != evAbs || !AxisCode(raw.Code).Known() {
			continue
		}

		events = append(events, Event{
			Axis:  AxisCode(raw.Code),
			Value: raw.Value,
		})
	}

	return events, nil
}

func (d *evdevDevice) Close() error {
	return d.file.Close()
}

// EVIOCGNAME(len) = _IOC(_IOC_READ, 'E', 0x06, len)
func eviocgname(size uintptr) uintptr {
	return 2<<30 | size<<16 | 'E'<<8 | 0x06
}

func deviceName(file *os.File) (string, error) {
	buf := make([]byte, 256)

	conn, err := file.SyscallConn()
	if err != nil {
		return "", err
	}

	var errno unix.Errno
	err = conn.Control(func(fd uintptr) {
		_, _, errno = unix.Syscall(
			unix.SYS_IOCTL,
			fd,
			eviocgname(uintptr(len(buf))),
			uintptr(unsafe.Pointer(&buf[0])),
		)
	})
	if err != nil {
		return "", err
	}
	if errno != 0 {
		return "", errno
	}

	if end := bytes.IndexByte(buf, 0); end >= 0 {
		buf = buf[:end]
	}
	return string(buf), nil
}

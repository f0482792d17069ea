//go:build !linux

package pad

func OpenEvdev(path string) (Device, error) {
	return nil, ErrUnsupported
}

func EvdevOpener(path string) Opener {
	return func() (Device, error) {
		return nil, ErrUnsupported
	}
}

// Package netwait blocks until the host has an address the receiver can
// bind to. Joining the network is the platform's job; this only waits for
// the result.
package netwait

import (
	"context"
	"fmt"
	"net"

	"github.com/cfoust/padlink/pkg/failure"
	"github.com/cfoust/padlink/pkg/retry"
)

// Lookup returns the IPv4 addresses of the named interface, or of every
// up, non-loopback interface if name is empty.
type Lookup func(name string) ([]net.IP, error)

func SystemLookup(name string) ([]net.IP, error) {
	var interfaces []net.Interface
	if name != "" {
		iface, err := net.InterfaceByName(name)
		if err != nil {
			return nil, err
		}
		interfaces = []net.Interface{*iface}
	} else {
		all, err := net.Interfaces()
		if err != nil {
			return nil, err
		}
		interfaces = all
	}

	var result []net.IP
	for _, iface := range interfaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			if ip := ipNet.IP.To4(); ip != nil && !ip.IsLoopback() {
				result = append(result, ip)
			}
		}
	}

	return result, nil
}

// Wait polls lookup until it yields an address, waiting out the policy's
// delay between attempts.
func Wait(ctx context.Context, name string, lookup Lookup, policy *retry.Policy) (net.IP, error) {
	if lookup == nil {
		lookup = SystemLookup
	}

	for {
		addrs, err := lookup(name)
		if err == nil && len(addrs) > 0 {
			return addrs[0], nil
		}
		if err == nil {
			err = fmt.Errorf("no IPv4 address on %q", name)
		}

		if waitErr := policy.OnFailure(ctx, failure.Wrap(failure.KindTransport, "address", err)); waitErr != nil {
			return nil, waitErr
		}
	}
}

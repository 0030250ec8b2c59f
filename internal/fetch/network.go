package fetch

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"syscall"
	"time"
)

const (
	dialTimeout   = 10 * time.Second
	dialKeepAlive = 30 * time.Second
)

var ErrForbiddenAddress = errors.New("address is not publicly routable")

// sharedAddressSpace is the carrier-grade NAT range (RFC 6598).
var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

type Option func(*Fetcher)

// AllowPrivateNetworks lets the Fetcher reach loopback, private and
// link-local addresses.
func AllowPrivateNetworks() Option {
	return func(f *Fetcher) {
		f.allowPrivate = true
	}
}

// newTransport dials only public addresses unless allowPrivate is set. The
// check runs on the resolved address of every connection, redirects included.
func newTransport(allowPrivate bool) *http.Transport {
	transport := http.DefaultTransport.(*http.Transport).Clone() //nolint:forcetypeassert // Always *http.Transport.

	dialer := &net.Dialer{
		Timeout:   dialTimeout,
		KeepAlive: dialKeepAlive,
	}
	if !allowPrivate {
		dialer.Control = publicOnly
		// A proxy would be dialed instead of the target.
		transport.Proxy = nil
	}
	transport.DialContext = dialer.DialContext

	return transport
}

func publicOnly(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("split host port: %w", err)
	}

	ip, err := netip.ParseAddr(host)
	if err != nil {
		return fmt.Errorf("parse address: %w", err)
	}

	if !isPublicAddr(ip) {
		return fmt.Errorf("%w: %s", ErrForbiddenAddress, ip)
	}

	return nil
}

func isPublicAddr(ip netip.Addr) bool {
	ip = ip.Unmap()

	switch {
	case !ip.IsValid(),
		ip.IsUnspecified(),
		ip.IsLoopback(),
		ip.IsPrivate(),
		ip.IsLinkLocalUnicast(),
		ip.IsLinkLocalMulticast(),
		ip.IsInterfaceLocalMulticast(),
		ip.IsMulticast(),
		sharedAddressSpace.Contains(ip):
		return false
	default:
		return true
	}
}

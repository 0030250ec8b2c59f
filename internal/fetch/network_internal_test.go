package fetch

import (
	"errors"
	"net/netip"
	"testing"
)

func TestIsPublicAddr(t *testing.T) {
	tests := []struct {
		addr string
		want bool
	}{
		{"93.184.216.34", true},
		{"2606:2800:220:1:248:1893:25c8:1946", true},
		{"127.0.0.1", false},
		{"::1", false},
		{"10.1.2.3", false},
		{"172.16.0.1", false},
		{"192.168.1.1", false},
		{"169.254.169.254", false},
		{"fe80::1", false},
		{"fc00::1", false},
		{"100.64.0.1", false},
		{"0.0.0.0", false},
		{"::ffff:127.0.0.1", false},
		{"224.0.0.1", false},
	}

	for _, tt := range tests {
		if got := isPublicAddr(netip.MustParseAddr(tt.addr)); got != tt.want {
			t.Errorf("isPublicAddr(%s) = %v, want %v", tt.addr, got, tt.want)
		}
	}
}

func TestPublicOnlyControl(t *testing.T) {
	if err := publicOnly("tcp4", "169.254.169.254:80", nil); !errors.Is(err, ErrForbiddenAddress) {
		t.Fatalf("publicOnly(metadata) error = %v, want ErrForbiddenAddress", err)
	}

	if err := publicOnly("tcp6", "[::1]:443", nil); !errors.Is(err, ErrForbiddenAddress) {
		t.Fatalf("publicOnly(loopback) error = %v, want ErrForbiddenAddress", err)
	}

	if err := publicOnly("tcp4", "93.184.216.34:443", nil); err != nil {
		t.Fatalf("publicOnly(public) error = %v", err)
	}

	if err := publicOnly("tcp4", "no-port", nil); err == nil {
		t.Fatalf("expected an error for a malformed address")
	}
}

func TestNewTransportKeepsProxyOnlyWhenPrivateAllowed(t *testing.T) {
	if newTransport(false).Proxy != nil {
		t.Fatalf("restricted transport must not use a proxy")
	}
	if newTransport(true).Proxy == nil {
		t.Fatalf("unrestricted transport should keep the environment proxy")
	}
}

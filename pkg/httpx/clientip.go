package httpx

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// FallbackClientIP is reported when no address can be derived from a request.
const FallbackClientIP = "127.0.0.1"

// DefaultTrustedProxies covers loopback and the private ranges a reverse
// proxy normally sits in.
var DefaultTrustedProxies = []netip.Prefix{
	netip.MustParsePrefix("127.0.0.0/8"),
	netip.MustParsePrefix("::1/128"),
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
	netip.MustParsePrefix("fc00::/7"),
}

// TrustedProxies lists the peers whose forwarding headers ClientIP believes.
// Requests from any other peer are attributed to the socket address.
var TrustedProxies = DefaultTrustedProxies

// ParseTrustedProxies parses a comma-separated list of CIDR prefixes or bare
// addresses. A bare address is treated as a single-host prefix.
func ParseTrustedProxies(list string) ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for _, entry := range strings.Split(list, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}

		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// ClientIP returns the address of the client that issued r. When the socket
// peer is a trusted proxy, the headers CF-Connecting-IP, X-Real-IP and the
// first entry of X-Forwarded-For are consulted in that order. Otherwise the
// peer address is used as is.
func ClientIP(r *http.Request) string {
	peer := peerHost(r.RemoteAddr)

	if isTrustedProxy(peer) {
		if ip := strings.TrimSpace(r.Header.Get("CF-Connecting-IP")); ip != "" {
			return ip
		}
		if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
			return ip
		}
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}

	if peer == "" {
		return FallbackClientIP
	}
	return peer
}

func peerHost(remoteAddr string) string {
	if remoteAddr == "" {
		return ""
	}
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}

func isTrustedProxy(peer string) bool {
	addr, err := netip.ParseAddr(peer)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range TrustedProxies {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

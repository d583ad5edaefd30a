// Package privnet detects hosts that resolve to loopback, private or
// link-local networks so the crawler never fetches internal resources.
package privnet

import (
	"context"
	"net"
	"net/netip"
	"time"

	"github.com/mycok/webscout/crawler"
)

// Static and compile-time check to ensure NetDetector implements
// crawler.PrivateNetworkDetector interface.
var _ crawler.PrivateNetworkDetector = (*NetDetector)(nil)

var defaultPrivateCIDRs = []string{
	// Loopback.
	"127.0.0.0/8",
	"::1/128",
	// RFC1918 private networks.
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	// Link-local, including cloud metadata endpoints.
	"169.254.0.0/16",
	"fe80::/10",
	// Misc.
	"0.0.0.0/8",
	"100.64.0.0/10", // carrier-grade NAT
	"255.255.255.255/32",
	"fc00::/7", // IPv6 unique local
}

const lookupTimeout = 5 * time.Second

// Resolver looks up the addresses of a host. *net.Resolver satisfies it.
type Resolver interface {
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
}

// NetDetector checks whether a host resolves to a private network address.
type NetDetector struct {
	prefixes []netip.Prefix
	resolver Resolver
}

// NewDetector returns a NetDetector configured with the default list of
// private IPv4/IPv6 blocks.
func NewDetector() (*NetDetector, error) {
	return NewDetectorFromCIDRs(defaultPrivateCIDRs...)
}

// NewDetectorFromCIDRs returns a NetDetector that treats only the given
// CIDR blocks as private.
func NewDetectorFromCIDRs(cidrs ...string) (*NetDetector, error) {
	prefixes := make([]netip.Prefix, len(cidrs))
	for i, cidr := range cidrs {
		p, err := netip.ParsePrefix(cidr)
		if err != nil {
			return nil, err
		}
		prefixes[i] = p
	}

	return &NetDetector{prefixes: prefixes, resolver: net.DefaultResolver}, nil
}

// WithResolver replaces the resolver used for host name lookups.
func (d *NetDetector) WithResolver(r Resolver) *NetDetector {
	d.resolver = r
	return d
}

// IsNetworkPrivate reports whether any address host resolves to lies in a
// private block. IP literals are checked without a lookup.
func (d *NetDetector) IsNetworkPrivate(host string) (bool, error) {
	addrs, err := d.resolve(host)
	if err != nil {
		return false, err
	}

	for _, addr := range addrs {
		addr = addr.Unmap()
		for _, p := range d.prefixes {
			if p.Contains(addr) {
				return true, nil
			}
		}
	}

	return false, nil
}

func (d *NetDetector) resolve(host string) ([]netip.Addr, error) {
	if addr, err := netip.ParseAddr(host); err == nil {
		return []netip.Addr{addr}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()

	return d.resolver.LookupNetIP(ctx, "ip", host)
}

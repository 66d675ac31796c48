package resolver

import (
	"fmt"
	"net/netip"
	"strings"
)

// StripPrefixLength drops a trailing "/<prefix-length>" from an address.
// Input without a slash is returned unchanged.
func StripPrefixLength(address string) string {
	host, _, _ := strings.Cut(address, "/")

	return host
}

// ParseAddress validates an IPv4 or IPv6 literal, tolerating a prefix-length suffix.
func ParseAddress(raw string) (netip.Addr, error) {
	addr, err := netip.ParseAddr(StripPrefixLength(strings.TrimSpace(raw)))
	if err != nil {
		return netip.Addr{}, fmt.Errorf("parse address %q: %w", raw, err)
	}

	return addr, nil
}

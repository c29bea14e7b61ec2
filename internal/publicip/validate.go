package publicip

import (
	"net/netip"
	"strconv"
	"strings"
)

// IsValid reports whether s is a syntactically valid IP address. A string
// with exactly four dot-separated parts is judged as IPv4 only; anything
// else must parse as IPv6.
func IsValid(s string) bool {
	if parts := strings.Split(s, "."); len(parts) == 4 {
		return isIPv4Octets(parts)
	}
	return isIPv6(s)
}

// isIPv4Octets reports whether each part is a decimal integer in [0, 255].
func isIPv4Octets(parts []string) bool {
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > 255 {
			return false
		}
	}
	return true
}

// isIPv6 reports whether s parses under standard IPv6 presentation rules.
// Zoned addresses (fe80::1%eth0) are rejected: they are link-local and not
// usable as record content.
func isIPv6(s string) bool {
	addr, err := netip.ParseAddr(s)
	return err == nil && addr.Is6() && addr.Zone() == ""
}

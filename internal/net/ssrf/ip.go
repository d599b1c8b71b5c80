package ssrf

import "net"

// cgnatBlock is the carrier-grade NAT range (100.64.0.0/10), which net.IP
// has no dedicated predicate for.
var cgnatBlock = mustParseCIDR("100.64.0.0/10")

func mustParseCIDR(s string) *net.IPNet {
	_, ipnet, err := net.ParseCIDR(s)
	if err != nil {
		panic(err)
	}
	return ipnet
}

// IsPrivateIP reports whether ip falls in any range the web-fetch tool
// must refuse to dial: loopback, RFC1918 private, link-local, broadcast,
// unspecified, carrier-grade NAT, or (for IPv6) unique-local/link-local.
// IPv4-mapped IPv6 addresses are unwrapped to their IPv4 form first, so an
// address like ::ffff:127.0.0.1 is judged by the IPv4 rules.
func IsPrivateIP(ip net.IP) bool {
	if ip == nil {
		return false
	}
	if v4 := ip.To4(); v4 != nil {
		ip = v4
	}
	switch {
	case ip.IsLoopback(),
		ip.IsPrivate(),
		ip.IsLinkLocalUnicast(),
		ip.IsLinkLocalMulticast(),
		ip.IsUnspecified(),
		isBroadcast(ip):
		return true
	}
	return cgnatBlock.Contains(ip)
}

func isBroadcast(ip net.IP) bool {
	v4 := ip.To4()
	if v4 == nil {
		return false
	}
	return v4[0] == 255 && v4[1] == 255 && v4[2] == 255 && v4[3] == 255
}

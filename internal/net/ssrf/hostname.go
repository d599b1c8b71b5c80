package ssrf

import (
	"context"
	"fmt"
	"net"
	"strings"
)

var blockedHostnames = map[string]bool{
	"localhost":                true,
	"metadata.google.internal": true,
}

var blockedSuffixes = []string{".local", ".internal", ".localhost"}

// IsBlockedHostname reports whether hostname is explicitly disallowed
// (step 2 of the validation pipeline), independent of DNS resolution.
func IsBlockedHostname(hostname string) bool {
	h := normalizeHostname(hostname)
	if h == "" {
		return false
	}
	if blockedHostnames[h] {
		return true
	}
	for _, suffix := range blockedSuffixes {
		if strings.HasSuffix(h, suffix) {
			return true
		}
	}
	return false
}

// ResolveAndValidate runs the full validation pipeline for hostname and
// returns the resolved addresses pinned for dialing. If hostname is
// itself an IP literal, it is validated directly and returned as the sole
// address — no DNS lookup occurs.
func ResolveAndValidate(ctx context.Context, hostname string) ([]net.IP, error) {
	h := normalizeHostname(hostname)
	if h == "" {
		return nil, fmt.Errorf("ssrf: empty hostname")
	}

	if ip := net.ParseIP(h); ip != nil {
		if IsPrivateIP(ip) {
			return nil, NewBlockedError("blocked: private/internal IP address")
		}
		return []net.IP{ip}, nil
	}

	if IsBlockedHostname(h) {
		return nil, NewBlockedError(fmt.Sprintf("blocked hostname: %s", hostname))
	}

	var resolver net.Resolver
	addrs, err := resolver.LookupIPAddr(ctx, h)
	if err != nil {
		return nil, fmt.Errorf("ssrf: unable to resolve hostname %s: %w", hostname, err)
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("ssrf: DNS returned no addresses")
	}

	ips := make([]net.IP, 0, len(addrs))
	for _, a := range addrs {
		if IsPrivateIP(a.IP) {
			return nil, NewBlockedError("blocked: resolves to private/internal IP address")
		}
		ips = append(ips, a.IP)
	}
	return ips, nil
}

func normalizeHostname(hostname string) string {
	h := strings.TrimSpace(hostname)
	h = strings.ToLower(h)
	h = strings.TrimSuffix(h, ".")
	if strings.HasPrefix(h, "[") && strings.HasSuffix(h, "]") {
		h = h[1 : len(h)-1]
	}
	return h
}

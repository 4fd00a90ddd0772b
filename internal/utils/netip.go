package utils

import (
	"net"
	"net/http"
	"strings"
)

// HostNoPort returns the host part from "ip:port", "[v6]:port" or "ip".
func HostNoPort(s string) string {
	if s == "" {
		return ""
	}
	if h, _, err := net.SplitHostPort(s); err == nil {
		return h
	}
	return s
}

// firstForwardedFor returns the left-most IP from X-Forwarded-For.
func firstForwardedFor(xff string) string {
	xff = strings.TrimSpace(xff)
	if i := strings.IndexByte(xff, ','); i >= 0 {
		xff = xff[:i]
	}
	return strings.TrimSpace(xff)
}

// ClientIP resolves the real client IP. With trustProxy it prefers
// X-Forwarded-For (first hop) then X-Real-IP; otherwise RemoteAddr only.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if v := firstForwardedFor(r.Header.Get("X-Forwarded-For")); v != "" {
			if ip := HostNoPort(v); ip != "" {
				return ip
			}
		}
		if v := strings.TrimSpace(r.Header.Get("X-Real-IP")); v != "" {
			if ip := HostNoPort(v); ip != "" {
				return ip
			}
		}
	}
	return HostNoPort(r.RemoteAddr)
}

// IPMatcher answers whether an IP belongs to a configured allow-list of
// plain IPs and CIDRs.
type IPMatcher struct {
	ips  map[string]struct{}
	nets []*net.IPNet
}

// NewIPMatcher parses a mixed list of IPs and CIDRs. Invalid entries are
// dropped silently; an empty matcher allows everything.
func NewIPMatcher(allowed []string) *IPMatcher {
	m := &IPMatcher{ips: make(map[string]struct{})}
	for _, entry := range allowed {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			if _, ipnet, err := net.ParseCIDR(entry); err == nil {
				m.nets = append(m.nets, ipnet)
			}
			continue
		}
		if ip := net.ParseIP(entry); ip != nil {
			m.ips[ip.String()] = struct{}{}
		}
	}
	return m
}

// IsEmpty reports whether the matcher has no rules.
func (m *IPMatcher) IsEmpty() bool {
	return len(m.ips) == 0 && len(m.nets) == 0
}

// Allow reports whether the IP matches the allow-list.
func (m *IPMatcher) Allow(ipStr string) bool {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}
	if _, ok := m.ips[ip.String()]; ok {
		return true
	}
	for _, n := range m.nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

package http

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// trustedProxies defines networks that are trusted to set forwarding headers.
var trustedProxies = []*net.IPNet{
	parsecidr("127.0.0.0/8"),
	parsecidr("10.0.0.0/8"),
	parsecidr("172.16.0.0/12"),
	parsecidr("192.168.0.0/16"),
}

func parsecidr(cidr string) *net.IPNet {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		panic(fmt.Sprintf("failed to parse trusted proxy CIDR %s: %v", cidr, err))
	}
	return network
}

func isTrustedProxy(ip net.IP) bool {
	for _, network := range trustedProxies {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// extractClientIP returns the peer address, or the first forwarded address
// when the peer is a trusted proxy.
func extractClientIP(r *http.Request) string {
	directIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		directIP = r.RemoteAddr
	}

	parsedDirectIP := net.ParseIP(directIP)
	if parsedDirectIP == nil || !isTrustedProxy(parsedDirectIP) {
		return directIP
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		clientIP := strings.TrimSpace(strings.Split(xff, ",")[0])
		if net.ParseIP(clientIP) != nil {
			return clientIP
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" && net.ParseIP(xri) != nil {
		return xri
	}
	return directIP
}

// contentSecurityPolicy allows htmx from unpkg and nothing inline.
const contentSecurityPolicy = "default-src 'self'; script-src 'self' https://unpkg.com; style-src 'self'; img-src 'self' data:; connect-src 'self'"

func setSecurityHeaders(h http.Header) {
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("X-Frame-Options", "DENY")
	h.Set("Content-Security-Policy", contentSecurityPolicy)
	h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
}

var suspiciousPatterns = []string{
	"../", "..\\", ".env", ".git", "wp-admin", "phpmyadmin",
	"etc/passwd", "union select", "javascript:", "<script",
}

// isSuspicious flags probes for files or injection payloads in the path and
// query, unusual methods and oversized URLs. Form values are not inspected:
// transaction text is free-form and always escaped on output.
func isSuspicious(r *http.Request) bool {
	switch r.Method {
	case "TRACE", "TRACK", "DEBUG", http.MethodConnect:
		return true
	}
	if len(r.URL.String()) > 2048 {
		return true
	}
	target := strings.ToLower(r.URL.Path + "?" + r.URL.RawQuery)
	for _, p := range suspiciousPatterns {
		if strings.Contains(target, p) {
			return true
		}
	}
	return false
}

package security

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
)

const (
	maxURLLength   = 2048
	maxForwardHops = 5
)

// probePatterns are path and query fragments that betray vulnerability
// scans against surfaces this API does not have. Matched lowercased.
var probePatterns = []string{
	"../", "..\\", ".env", ".git", ".ssh",
	"wp-admin", "phpmyadmin", "admin.php", "config.php",
	"etc/passwd", "cmd.exe",
}

// injectionPatterns are fragments of script and SQL injection probes.
var injectionPatterns = []string{
	"<script", "javascript:", "eval(",
	"union select", "or 1=1", "base64,",
}

// scannerAgents are User-Agent substrings of known scanning tools.
// Plain HTTP clients like curl are legitimate API consumers and stay
// off this list.
var scannerAgents = []string{
	"sqlmap", "nmap", "nikto", "gobuster", "dirb",
	"masscan", "zgrab", "scanner",
}

// Private and loopback ranges. Forwarded headers from any other peer
// are ignored.
var defaultTrustedProxies = mustNetworks(
	"127.0.0.0/8",
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
)

func mustNetworks(cidrs ...string) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, cidr := range cidrs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(fmt.Sprintf("parse trusted proxy %s: %v", cidr, err))
		}
		nets = append(nets, network)
	}
	return nets
}

// Detector flags scanner-looking requests and resolves client
// addresses behind trusted proxies.
type Detector struct {
	trustedProxies []*net.IPNet
	suspicious     atomic.Int64
}

// NewDetector builds a detector trusting the private proxy ranges.
func NewDetector() *Detector {
	return &Detector{trustedProxies: defaultTrustedProxies}
}

// Inspect checks one request against the scanner heuristics and
// reports the first matching reason.
func (d *Detector) Inspect(r *http.Request) (string, bool) {
	reason, ok := match(r)
	if ok {
		d.suspicious.Add(1)
	}
	return reason, ok
}

func match(r *http.Request) (string, bool) {
	target := strings.ToLower(r.URL.Path + "?" + r.URL.RawQuery)
	for _, p := range probePatterns {
		if strings.Contains(target, p) {
			return "probe pattern " + p, true
		}
	}
	for _, p := range injectionPatterns {
		if strings.Contains(target, p) {
			return "injection pattern " + p, true
		}
	}

	agent := strings.ToLower(r.Header.Get("User-Agent"))
	for _, a := range scannerAgents {
		if strings.Contains(agent, a) {
			return "scanner user agent " + a, true
		}
	}

	switch r.Method {
	case "TRACE", "TRACK", "CONNECT":
		return "unusual method " + r.Method, true
	}

	if len(r.URL.String()) > maxURLLength {
		return "oversized url", true
	}
	if hops := strings.Count(r.Header.Get("X-Forwarded-For"), ","); hops > maxForwardHops {
		return "forwarding chain too long", true
	}
	return "", false
}

// ExtractClientIP resolves the client address, honoring forwarded
// headers only when the direct peer is a trusted proxy.
func (d *Detector) ExtractClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	peer := net.ParseIP(host)
	if peer == nil || !d.isTrustedProxy(peer) {
		return host
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); net.ParseIP(ip) != nil {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" && net.ParseIP(xri) != nil {
		return xri
	}
	return host
}

func (d *Detector) isTrustedProxy(ip net.IP) bool {
	for _, network := range d.trustedProxies {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// AddTrustedProxy extends the trusted proxy ranges.
func (d *Detector) AddTrustedProxy(cidr string) error {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		return fmt.Errorf("invalid CIDR %s: %w", cidr, err)
	}
	d.trustedProxies = append(d.trustedProxies, network)
	return nil
}

// Metrics is a point-in-time view of detection activity.
type Metrics struct {
	Suspicious int64
}

// Snapshot returns detection totals since startup.
func (d *Detector) Snapshot() Metrics {
	return Metrics{Suspicious: d.suspicious.Load()}
}

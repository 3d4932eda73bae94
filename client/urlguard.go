package client

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"
)

// Ranges that are neither private nor loopback in net/netip terms but still
// never host public images.
var reservedPrefixes = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"),
	netip.MustParsePrefix("192.0.0.0/24"),
	netip.MustParsePrefix("198.18.0.0/15"),
	netip.MustParsePrefix("240.0.0.0/4"),
}

// URLPolicy decides which image URLs may be downloaded. Only http and https
// are accepted, and hosts that are loopback, private or link-local are
// refused. A non-empty AllowedHosts further limits downloads to those hosts
// and their subdomains.
type URLPolicy struct {
	AllowedHosts []string
}

// Check reports whether rawURL may be fetched.
func (p URLPolicy) Check(rawURL string) error {
	const op = "CheckURL"

	u, err := url.Parse(rawURL)
	if err != nil {
		return NewRecognitionError(op, ErrURLNotAllowed, "malformed URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return NewRecognitionError(op, ErrURLNotAllowed, "scheme "+u.Scheme)
	}

	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if host == "" {
		return NewRecognitionError(op, ErrURLNotAllowed, "missing host")
	}
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return NewRecognitionError(op, ErrURLNotAllowed, "host "+host)
	}
	if ip, err := netip.ParseAddr(host); err == nil && !PublicAddr(ip) {
		return NewRecognitionError(op, ErrURLNotAllowed, "address "+ip.String())
	}

	if len(p.AllowedHosts) > 0 && !p.hostAllowed(host) {
		return NewRecognitionError(op, ErrURLNotAllowed, "host "+host)
	}
	return nil
}

func (p URLPolicy) hostAllowed(host string) bool {
	for _, allowed := range p.AllowedHosts {
		allowed = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(allowed)), ".")
		if allowed == "" {
			continue
		}
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}

// PublicAddr reports whether ip is a globally routable unicast address.
func PublicAddr(ip netip.Addr) bool {
	ip = ip.Unmap()
	if !ip.IsValid() || ip.IsUnspecified() || ip.IsLoopback() || ip.IsPrivate() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() || ip.IsMulticast() {
		return false
	}
	for _, p := range reservedPrefixes {
		if p.Contains(ip) {
			return false
		}
	}
	return true
}

// NewGuardedHTTPClient returns a client that checks every redirect against
// policy and refuses to connect to non-public addresses after DNS resolution.
// Proxies are disabled since they would hide the real destination.
func NewGuardedHTTPClient(timeout time.Duration, policy URLPolicy) *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
		Control:   guardDial,
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		return dialer.DialContext(ctx, network, addr)
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return fmt.Errorf("stopped after %d redirects", len(via))
			}
			return policy.Check(req.URL.String())
		},
	}
}

// guardDial runs after name resolution, so it sees the address actually dialed.
func guardDial(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return NewRecognitionError("DialImageHost", ErrURLNotAllowed, address)
	}
	ip, err := netip.ParseAddr(host)
	if err != nil || !PublicAddr(ip) {
		return NewRecognitionError("DialImageHost", ErrURLNotAllowed, "address "+host)
	}
	return nil
}

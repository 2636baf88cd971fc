package middleware

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strings"

	"github.com/isgasho/roa/router"
)

// ErrInvalidProxy is returned for a TrustedProxies entry that is neither an
// IP address nor a CIDR prefix.
var ErrInvalidProxy = errors.New("proxy headers: invalid proxy entry")

// DefaultTrustedProxies covers loopback, RFC 1918, CGNAT and IPv6 unique
// local ranges.
var DefaultTrustedProxies = []string{
	"127.0.0.0/8",
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"100.64.0.0/10",
	"::1/128",
	"fc00::/7",
}

type clientIPNamespace struct{}

func (clientIPNamespace) Namespace() string { return "client_ip" }

// ClientIP returns the client address resolved by ProxyHeadersMiddleware,
// or an empty string when the middleware did not run.
func ClientIP(ctx *router.Context) string {
	v, ok := ctx.Load(clientIPNamespace{}, "ip")
	if !ok {
		return ""
	}
	return v.Value
}

// ProxyHeadersConfig configures the Proxy Headers middleware behaviour.
type ProxyHeadersConfig struct {
	// TrustedProxies lists peers whose forwarding headers are honoured.
	// Defaults to DefaultTrustedProxies.
	TrustedProxies []string

	// EnableForwarded adds the RFC 7239 Forwarded header as a fallback
	// after X-Forwarded-* and X-Real-IP.
	EnableForwarded bool
}

// ProxyHeadersMiddleware returns a middleware that rewrites RemoteAddr,
// URL.Scheme and Host from reverse proxy headers when the peer is trusted,
// and publishes the resolved client IP for ClientIP.
//
// Client IP precedence is X-Forwarded-For (leftmost valid entry), then
// X-Real-IP, then Forwarded for=. Scheme comes from X-Forwarded-Proto or
// Forwarded proto= and must be http or https. Host comes from
// X-Forwarded-Host or Forwarded host=.
func ProxyHeadersMiddleware(cfg ProxyHeadersConfig) (router.MiddlewareFunc, error) {
	entries := cfg.TrustedProxies
	if len(entries) == 0 {
		entries = DefaultTrustedProxies
	}

	trusted, err := parsePrefixes(entries)
	if err != nil {
		return nil, err
	}

	return func(ctx *router.Context, next router.Next) error {
		r := ctx.Request
		peer := peerAddr(r.RemoteAddr)

		if !peer.IsValid() || !containsAddr(trusted, peer) {
			if peer.IsValid() {
				ctx.Store(clientIPNamespace{}, "ip", peer.String())
			}
			return next()
		}

		var fwd forwarded
		if cfg.EnableForwarded {
			fwd = parseForwarded(r.Header.Get("Forwarded"))
		}

		client := peer
		switch {
		case r.Header.Get("X-Forwarded-For") != "":
			if ip, ok := firstForwardedFor(r.Header.Get("X-Forwarded-For")); ok {
				client = ip
			}
		case r.Header.Get("X-Real-IP") != "":
			if ip, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
				client = ip
			}
		case fwd.client.IsValid():
			client = fwd.client
		}

		if client != peer {
			r.RemoteAddr = client.String()
		}
		ctx.Store(clientIPNamespace{}, "ip", client.String())

		scheme := normalizeScheme(r.Header.Get("X-Forwarded-Proto"))
		if scheme == "" {
			scheme = fwd.proto
		}
		if scheme != "" {
			u := *r.URL
			u.Scheme = scheme
			r.URL = &u
		}

		if host := r.Header.Get("X-Forwarded-Host"); host != "" {
			r.Host = host
		} else if fwd.host != "" {
			r.Host = fwd.host
		}

		return next()
	}, nil
}

func parsePrefixes(entries []string) ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(entries))

	for _, e := range entries {
		if strings.Contains(e, "/") {
			p, err := netip.ParsePrefix(e)
			if err != nil {
				return nil, fmt.Errorf("%w: %q", ErrInvalidProxy, e)
			}
			out = append(out, p.Masked())
			continue
		}

		a, err := netip.ParseAddr(e)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidProxy, e)
		}
		out = append(out, netip.PrefixFrom(a, a.BitLen()))
	}

	return out, nil
}

func containsAddr(prefixes []netip.Prefix, a netip.Addr) bool {
	a = a.Unmap()
	for _, p := range prefixes {
		if p.Contains(a) {
			return true
		}
	}
	return false
}

// peerAddr parses RemoteAddr with or without a port.
func peerAddr(remote string) netip.Addr {
	host, _, err := net.SplitHostPort(remote)
	if err != nil {
		host = remote
	}

	a, err := netip.ParseAddr(host)
	if err != nil {
		return netip.Addr{}
	}
	return a.Unmap()
}

func firstForwardedFor(header string) (netip.Addr, bool) {
	for part := range strings.SplitSeq(header, ",") {
		if a, err := netip.ParseAddr(strings.TrimSpace(part)); err == nil {
			return a, true
		}
	}
	return netip.Addr{}, false
}

func normalizeScheme(v string) string {
	switch s := strings.ToLower(strings.TrimSpace(v)); s {
	case "http", "https":
		return s
	default:
		return ""
	}
}

type forwarded struct {
	client netip.Addr
	proto  string
	host   string
}

// parseForwarded reads the first element of an RFC 7239 Forwarded header.
func parseForwarded(header string) forwarded {
	var out forwarded

	first, _, _ := strings.Cut(header, ",")
	for pair := range strings.SplitSeq(first, ";") {
		key, val, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			continue
		}
		val = strings.Trim(strings.TrimSpace(val), `"`)

		switch strings.ToLower(strings.TrimSpace(key)) {
		case "for":
			if host, _, err := net.SplitHostPort(val); err == nil {
				val = host
			}
			val = strings.TrimSuffix(strings.TrimPrefix(val, "["), "]")
			if a, err := netip.ParseAddr(val); err == nil {
				out.client = a
			}
		case "proto":
			out.proto = normalizeScheme(val)
		case "host":
			out.host = val
		}
	}

	return out
}

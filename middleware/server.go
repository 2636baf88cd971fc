package middleware

import (
	"os"

	"github.com/isgasho/roa/router"
)

// ServerConfig configures the Server middleware behaviour.
type ServerConfig struct {
	// Hostname is written to the X-Server-Hostname response header.
	// Resolution order: Hostname, then HostnameEnv, then os.Hostname.
	Hostname string

	// HostnameEnv lists environment variables checked in order, for
	// example POD_NAME. The first non-empty value wins.
	HostnameEnv []string
}

// ServerMiddleware returns a middleware that identifies the serving host.
// The hostname is resolved once, and an error is returned if it cannot be
// determined.
func ServerMiddleware(cfg ServerConfig) (router.MiddlewareFunc, error) {
	hostname := cfg.Hostname

	if hostname == "" {
		for _, env := range cfg.HostnameEnv {
			if v, ok := os.LookupEnv(env); ok && v != "" {
				hostname = v
				break
			}
		}
	}

	if hostname == "" {
		h, err := os.Hostname()
		if err != nil {
			return nil, err
		}

		hostname = h
	}

	return func(ctx *router.Context, next router.Next) error {
		ctx.Response.Header().Set("X-Server-Hostname", hostname)
		return next()
	}, nil
}

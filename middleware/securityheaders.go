package middleware

import (
	"errors"
	"fmt"

	"github.com/isgasho/roa/router"
)

// ErrInvalidFrameOption is returned when SecurityHeadersConfig.FrameOption
// is not "DENY", "SAMEORIGIN" or empty.
var ErrInvalidFrameOption = errors.New("security headers: frame option must be DENY, SAMEORIGIN, or empty")

// SecurityHeadersConfig configures the Security Headers middleware behaviour.
type SecurityHeadersConfig struct {
	// DisableContentTypeNosniff disables X-Content-Type-Options: nosniff.
	DisableContentTypeNosniff bool

	// FrameOption sets X-Frame-Options. Defaults to "DENY".
	FrameOption string

	// ReferrerPolicy defaults to "strict-origin-when-cross-origin".
	ReferrerPolicy string

	// HSTSMaxAge enables Strict-Transport-Security when greater than zero.
	HSTSMaxAge            int
	HSTSIncludeSubDomains bool
	HSTSPreload           bool

	// Optional headers, skipped when empty.
	CrossOriginOpenerPolicy string
	ContentSecurityPolicy   string
	PermissionsPolicy       string
}

// SecurityHeadersMiddleware returns a middleware that sets common security
// response headers before the rest of the chain runs, so they are present
// on error responses too.
//
// It returns ErrInvalidFrameOption for an unknown FrameOption.
func SecurityHeadersMiddleware(cfg SecurityHeadersConfig) (router.MiddlewareFunc, error) {
	switch cfg.FrameOption {
	case "":
		cfg.FrameOption = "DENY"
	case "DENY", "SAMEORIGIN":
	default:
		return nil, ErrInvalidFrameOption
	}

	if cfg.ReferrerPolicy == "" {
		cfg.ReferrerPolicy = "strict-origin-when-cross-origin"
	}

	headers := [][2]string{
		{"X-Frame-Options", cfg.FrameOption},
		{"Referrer-Policy", cfg.ReferrerPolicy},
	}

	if !cfg.DisableContentTypeNosniff {
		headers = append(headers, [2]string{"X-Content-Type-Options", "nosniff"})
	}

	if cfg.HSTSMaxAge > 0 {
		hsts := fmt.Sprintf("max-age=%d", cfg.HSTSMaxAge)
		if cfg.HSTSIncludeSubDomains {
			hsts += "; includeSubDomains"
		}
		if cfg.HSTSPreload {
			hsts += "; preload"
		}
		headers = append(headers, [2]string{"Strict-Transport-Security", hsts})
	}

	for _, h := range [][2]string{
		{"Cross-Origin-Opener-Policy", cfg.CrossOriginOpenerPolicy},
		{"Content-Security-Policy", cfg.ContentSecurityPolicy},
		{"Permissions-Policy", cfg.PermissionsPolicy},
	} {
		if h[1] != "" {
			headers = append(headers, h)
		}
	}

	return func(ctx *router.Context, next router.Next) error {
		h := ctx.Response.Header()
		for _, kv := range headers {
			h.Set(kv[0], kv[1])
		}

		return next()
	}, nil
}

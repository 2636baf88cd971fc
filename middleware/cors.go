package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/isgasho/roa/router"
	"github.com/isgasho/roa/status"
)

var (
	// ErrWildcardCredentials is returned when AllowedOrigins contains "*"
	// and AllowCredentials is set.
	ErrWildcardCredentials = errors.New("cors: wildcard origin cannot be used with credentials")
	// ErrInvalidOrigin is returned for an origin pattern with more than one
	// wildcard.
	ErrInvalidOrigin = errors.New("cors: invalid origin pattern")
)

// CORSConfig configures the CORS middleware behaviour.
type CORSConfig struct {
	// AllowedOrigins holds exact origins, "*", or patterns with a single
	// wildcard such as "https://*.example.com". Matching ignores case.
	AllowedOrigins []string

	// AllowOriginFunc is consulted when no entry of AllowedOrigins matches.
	AllowOriginFunc func(origin string) bool

	// AllowedMethods defaults to GET, HEAD, POST, PUT, PATCH and DELETE.
	AllowedMethods []string

	// AllowedHeaders for preflight. Empty or "*" reflects
	// Access-Control-Request-Headers.
	AllowedHeaders []string

	ExposeHeaders    []string
	AllowCredentials bool

	// MaxAge in seconds. Negative values send "0" and zero omits the
	// header.
	MaxAge int

	// OptionsStatusCode is the preflight status. Defaults to 204.
	OptionsStatusCode int

	// OptionsPassthrough continues the chain after answering a preflight.
	OptionsPassthrough bool
}

var defaultCORSMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
}

type originPattern struct {
	prefix, suffix string
}

type originMatcher struct {
	any      bool
	exact    map[string]struct{}
	patterns []originPattern
	fn       func(string) bool
}

func newOriginMatcher(cfg CORSConfig) (*originMatcher, error) {
	m := &originMatcher{exact: make(map[string]struct{}), fn: cfg.AllowOriginFunc}

	for _, o := range cfg.AllowedOrigins {
		lower := strings.ToLower(strings.TrimSpace(o))

		switch strings.Count(lower, "*") {
		case 0:
			m.exact[lower] = struct{}{}
		case 1:
			if lower == "*" {
				m.any = true
				continue
			}
			prefix, suffix, _ := strings.Cut(lower, "*")
			m.patterns = append(m.patterns, originPattern{prefix: prefix, suffix: suffix})
		default:
			return nil, fmt.Errorf("%w: %q", ErrInvalidOrigin, o)
		}
	}

	return m, nil
}

func (m *originMatcher) allowed(origin string) bool {
	if m.any {
		return true
	}

	lower := strings.ToLower(origin)
	if _, ok := m.exact[lower]; ok {
		return true
	}

	for _, p := range m.patterns {
		if len(lower) >= len(p.prefix)+len(p.suffix) &&
			strings.HasPrefix(lower, p.prefix) &&
			strings.HasSuffix(lower, p.suffix) {
			return true
		}
	}

	return m.fn != nil && m.fn(origin)
}

// CORSMiddleware returns a middleware implementing the CORS protocol of the
// Fetch standard. Preflight requests are answered by the middleware itself,
// so endpoints do not need an OPTIONS handler. Requests from origins that
// are not allowed pass through without CORS headers.
//
// Mount it on the router that owns the endpoints, not as global
// middleware, if unmatched paths should still return 404.
func CORSMiddleware(cfg CORSConfig) (router.MiddlewareFunc, error) {
	if cfg.AllowCredentials && slices.Contains(cfg.AllowedOrigins, "*") {
		return nil, ErrWildcardCredentials
	}

	origins, err := newOriginMatcher(cfg)
	if err != nil {
		return nil, err
	}

	methods := cfg.AllowedMethods
	if len(methods) == 0 {
		methods = defaultCORSMethods
	}
	allowMethods := strings.Join(methods, ", ")

	reflectHeaders := len(cfg.AllowedHeaders) == 0 || slices.Contains(cfg.AllowedHeaders, "*")
	allowHeaders := strings.Join(cfg.AllowedHeaders, ", ")
	exposeHeaders := strings.Join(cfg.ExposeHeaders, ", ")

	preflightStatus := cfg.OptionsStatusCode
	if preflightStatus == 0 {
		preflightStatus = http.StatusNoContent
	}

	specific := !origins.any

	return func(ctx *router.Context, next router.Next) error {
		h := ctx.Response.Header()
		origin := ctx.Request.Header.Get("Origin")

		if origin == "" {
			if specific {
				h.Add("Vary", "Origin")
			}
			return next()
		}

		if !origins.allowed(origin) {
			return next()
		}

		if origins.any && !cfg.AllowCredentials {
			h.Set("Access-Control-Allow-Origin", "*")
		} else {
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
		}

		if cfg.AllowCredentials {
			h.Set("Access-Control-Allow-Credentials", "true")
		}

		preflight := ctx.Method() == http.MethodOptions &&
			ctx.Request.Header.Get("Access-Control-Request-Method") != ""

		if !preflight {
			if exposeHeaders != "" {
				h.Set("Access-Control-Expose-Headers", exposeHeaders)
			}
			return next()
		}

		h.Set("Access-Control-Allow-Methods", allowMethods)

		if reflectHeaders {
			if requested := ctx.Request.Header.Get("Access-Control-Request-Headers"); requested != "" {
				h.Set("Access-Control-Allow-Headers", requested)
			}
		} else {
			h.Set("Access-Control-Allow-Headers", allowHeaders)
		}

		switch {
		case cfg.MaxAge > 0:
			h.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		case cfg.MaxAge < 0:
			h.Set("Access-Control-Max-Age", "0")
		}

		h.Add("Vary", "Access-Control-Request-Method")
		h.Add("Vary", "Access-Control-Request-Headers")

		if cfg.OptionsPassthrough {
			return next()
		}

		if preflightStatus < 200 || preflightStatus > 299 {
			return status.New(preflightStatus, "", false)
		}

		ctx.Response.WriteHeader(preflightStatus)
		return nil
	}, nil
}

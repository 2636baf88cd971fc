package middleware

import (
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/isgasho/roa/router"
	"github.com/isgasho/roa/status"
)

// ErrNoAllowedTypes is returned when ContentTypeCheckConfig.AllowedTypes is
// empty.
var ErrNoAllowedTypes = errors.New("content type check: at least one allowed content type is required")

// ContentTypeCheckConfig configures the Content-Type Check middleware behaviour.
type ContentTypeCheckConfig struct {
	// AllowedTypes are matched case-insensitively, ignoring parameters.
	// At least one is required.
	AllowedTypes []string

	// Methods that are checked. Defaults to POST, PUT and PATCH.
	Methods []string
}

var defaultCheckedMethods = []string{
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
}

// ContentTypeCheckMiddleware returns a middleware that ends the chain with
// a 415 status when a checked request has a missing, malformed or
// unlisted Content-Type.
//
// It returns ErrNoAllowedTypes if AllowedTypes is empty.
func ContentTypeCheckMiddleware(cfg ContentTypeCheckConfig) (router.MiddlewareFunc, error) {
	if len(cfg.AllowedTypes) == 0 {
		return nil, ErrNoAllowedTypes
	}

	methods := cfg.Methods
	if methods == nil {
		methods = defaultCheckedMethods
	}

	methodSet := make(map[string]struct{}, len(methods))
	for _, m := range methods {
		methodSet[strings.ToUpper(m)] = struct{}{}
	}

	allowedSet := make(map[string]struct{}, len(cfg.AllowedTypes))
	for _, t := range cfg.AllowedTypes {
		allowedSet[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}

	return func(ctx *router.Context, next router.Next) error {
		if _, check := methodSet[ctx.Method()]; !check {
			return next()
		}

		mediaType, _, err := mime.ParseMediaType(ctx.Request.Header.Get("Content-Type"))
		if err != nil {
			return status.New(http.StatusUnsupportedMediaType, "", false)
		}

		if _, ok := allowedSet[strings.ToLower(mediaType)]; !ok {
			return status.Errorf(http.StatusUnsupportedMediaType, true, "content type %s is not supported", mediaType)
		}

		return next()
	}, nil
}

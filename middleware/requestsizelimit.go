package middleware

import (
	"errors"
	"net/http"

	"github.com/isgasho/roa/router"
	"github.com/isgasho/roa/status"
)

// ErrInvalidMaxSize is returned when RequestSizeLimitConfig.MaxBytes is not
// greater than zero.
var ErrInvalidMaxSize = errors.New("request size limit: max size must be greater than zero")

// RequestSizeLimitConfig configures the Request Size Limit middleware behaviour.
type RequestSizeLimitConfig struct {
	// MaxBytes is the maximum request body size. Must be greater than zero.
	MaxBytes int64
}

// RequestSizeLimitMiddleware returns a middleware that caps the request
// body. A declared Content-Length over the limit is rejected with 413
// before the chain runs; otherwise the body is wrapped with
// http.MaxBytesReader and Context.Bind reports the overflow as 413.
//
// It returns ErrInvalidMaxSize if MaxBytes is not greater than zero.
func RequestSizeLimitMiddleware(cfg RequestSizeLimitConfig) (router.MiddlewareFunc, error) {
	if cfg.MaxBytes <= 0 {
		return nil, ErrInvalidMaxSize
	}

	maxBytes := cfg.MaxBytes

	return func(ctx *router.Context, next router.Next) error {
		if ctx.Request.ContentLength > maxBytes {
			return status.New(http.StatusRequestEntityTooLarge, "", false)
		}

		if ctx.Request.Body != nil {
			ctx.Request.Body = http.MaxBytesReader(ctx.Response, ctx.Request.Body, maxBytes)
		}

		return next()
	}, nil
}

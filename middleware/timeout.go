package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/isgasho/roa/router"
	"github.com/isgasho/roa/status"
)

// ErrInvalidTimeout is returned when TimeoutConfig.Duration is not greater
// than zero.
var ErrInvalidTimeout = errors.New("timeout: duration must be greater than zero")

// TimeoutConfig configures the Timeout middleware behaviour.
type TimeoutConfig struct {
	// Duration is the deadline for everything inside the middleware.
	// Must be greater than zero.
	Duration time.Duration

	// Message is exposed to the client on timeout. When empty, the
	// generic status text is used.
	Message string
}

// TimeoutMiddleware returns a middleware that puts a deadline on the rest
// of the chain. Inner stages observe it through ctx.Context(). When the
// deadline passes before a response is written, the chain ends with a 503
// status.
//
// It returns ErrInvalidTimeout if Duration is not greater than zero.
func TimeoutMiddleware(cfg TimeoutConfig) (router.MiddlewareFunc, error) {
	if cfg.Duration <= 0 {
		return nil, ErrInvalidTimeout
	}

	duration := cfg.Duration
	message := cfg.Message

	return func(ctx *router.Context, next router.Next) error {
		deadline, cancel := context.WithTimeout(ctx.Context(), duration)
		defer cancel()

		orig := ctx.Request
		ctx.Request = orig.WithContext(deadline)
		defer func() { ctx.Request = orig }()

		err := next()

		if errors.Is(deadline.Err(), context.DeadlineExceeded) && !ctx.Response.Written() {
			return status.Wrap(http.StatusServiceUnavailable, timeoutError(message), message != "")
		}

		return err
	}, nil
}

func timeoutError(message string) error {
	if message == "" {
		return context.DeadlineExceeded
	}
	return errors.New(message)
}

package middleware

import (
	"fmt"
	"net/http"

	"github.com/isgasho/roa/router"
	"github.com/isgasho/roa/status"
)

// RecoveryConfig configures the Recovery middleware behaviour.
type RecoveryConfig struct {
	// LogFunc is an optional callback invoked with the context and the
	// recovered value when a panic occurs.
	LogFunc func(ctx *router.Context, recovered any)
}

// RecoveryMiddleware returns a middleware that turns a panic anywhere
// inside it into a non-exposed 500 status.
func RecoveryMiddleware(cfg RecoveryConfig) router.MiddlewareFunc {
	logFunc := cfg.LogFunc

	return func(ctx *router.Context, next router.Next) (err error) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			if logFunc != nil {
				logFunc(ctx, rec)
			}

			if e, ok := rec.(error); ok {
				err = status.Wrap(http.StatusInternalServerError, fmt.Errorf("panic: %w", e), false)
				return
			}
			err = status.Errorf(http.StatusInternalServerError, false, "panic: %v", rec)
		}()

		return next()
	}
}

package middleware

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/isgasho/roa/router"
	"github.com/isgasho/roa/status"
)

// ErrNoLogger is returned when LoggingConfig.Logger is nil.
var ErrNoLogger = errors.New("logging: logger is required")

// LoggingConfig configures the access log middleware.
type LoggingConfig struct {
	Logger *zap.Logger

	// SkipPaths are request paths that are never logged, such as a
	// health check.
	SkipPaths []string
}

// LoggingMiddleware returns a middleware that writes one access log entry
// per request after the rest of the chain returns. Successful and
// redirected requests log at info, client errors at warn and everything
// else at error. The returned error is passed through unchanged.
//
// It returns ErrNoLogger if Logger is nil.
func LoggingMiddleware(cfg LoggingConfig) (router.MiddlewareFunc, error) {
	if cfg.Logger == nil {
		return nil, ErrNoLogger
	}

	logger := cfg.Logger
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[router.Standardize(p)] = struct{}{}
	}

	return func(ctx *router.Context, next router.Next) error {
		path := ctx.URI().Path
		if _, ok := skip[router.Standardize(path)]; ok {
			return next()
		}

		start := time.Now()
		err := next()

		code := outcomeCode(ctx, err)
		kind := status.Classify(code)

		ce := logger.Check(levelFor(kind), "request")
		if ce == nil {
			return err
		}

		remote := ctx.Request.RemoteAddr
		if ip := ClientIP(ctx); ip != "" {
			remote = ip
		}

		fields := []zap.Field{
			zap.String("method", ctx.Method()),
			zap.String("path", path),
			zap.Int("status", code),
			zap.Stringer("kind", kind),
			zap.Duration("duration", time.Since(start)),
			zap.Int("size", ctx.Response.Size()),
			zap.String("remote", remote),
		}

		if id := RequestID(ctx); id != "" {
			fields = append(fields, zap.String("request_id", id))
		}

		if err != nil {
			fields = append(fields, zap.Error(err))
		}

		ce.Write(fields...)

		return err
	}, nil
}

func levelFor(kind status.Kind) zapcore.Level {
	switch kind {
	case status.Informational, status.Successful, status.Redirection:
		return zapcore.InfoLevel
	case status.ClientError:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

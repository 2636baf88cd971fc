package middleware

import (
	"github.com/google/uuid"

	"github.com/isgasho/roa/router"
)

type requestIDNamespace struct{}

func (requestIDNamespace) Namespace() string { return "request_id" }

const requestIDKey = "id"

// RequestID returns the id published by RequestIDMiddleware, or an empty
// string.
func RequestID(ctx *router.Context) string {
	v, ok := ctx.Load(requestIDNamespace{}, requestIDKey)
	if !ok {
		return ""
	}
	return v.Value
}

// RequestIDConfig configures the Request ID middleware behaviour.
type RequestIDConfig struct {
	// HeaderName overrides the header used to propagate the request ID.
	// Defaults to "X-Request-ID" when empty.
	HeaderName string

	// GenerateFunc returns a new unique ID. Defaults to GenerateUUIDv4.
	GenerateFunc func(ctx *router.Context) string

	// TrustIncoming reuses an id already present on the request.
	TrustIncoming bool
}

// RequestIDMiddleware returns a middleware that assigns every request an
// id. The id is set on the request and response headers and published in
// the request store for RequestID.
func RequestIDMiddleware(cfg RequestIDConfig) router.MiddlewareFunc {
	headerName := cfg.HeaderName
	if headerName == "" {
		headerName = "X-Request-ID"
	}

	generate := cfg.GenerateFunc
	if generate == nil {
		generate = GenerateUUIDv4
	}

	trustIncoming := cfg.TrustIncoming

	return func(ctx *router.Context, next router.Next) error {
		id := ""
		if trustIncoming {
			id = ctx.Request.Header.Get(headerName)
		}

		if id == "" {
			id = generate(ctx)
		}

		if id != "" {
			ctx.Request.Header.Set(headerName, id)
			ctx.Response.Header().Set(headerName, id)
			ctx.Store(requestIDNamespace{}, requestIDKey, id)
		}

		return next()
	}
}

// GenerateUUIDv4 returns a new UUID v4 string (RFC 9562 Section 5.4).
func GenerateUUIDv4(_ *router.Context) string {
	return uuid.New().String()
}

// GenerateUUIDv7 returns a new time-ordered UUID v7 string (RFC 9562
// Section 5.7).
func GenerateUUIDv7(_ *router.Context) string {
	return uuid.Must(uuid.NewV7()).String()
}

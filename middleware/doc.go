// Package middleware provides onion stages for the roa router.
//
// Every constructor takes a config struct. Constructors whose config can
// be invalid also return an error. Stages that reject a request return a
// *status.Status instead of writing a response, so outer stages such as
// the access log still see the outcome.
//
// # Recovery Middleware
//
// RecoveryMiddleware turns panics raised further in into a non-exposed
// 500. It should be the outermost stage.
//
//	r.Use(middleware.RecoveryMiddleware(middleware.RecoveryConfig{}))
//
// # Request ID Middleware
//
// RequestIDMiddleware assigns an id to every request and publishes it in
// the request store:
//
//	r.Use(middleware.RequestIDMiddleware(middleware.RequestIDConfig{
//	    GenerateFunc: middleware.GenerateUUIDv7,
//	}))
//
//	id := middleware.RequestID(ctx)
//
// # Auth Middleware
//
// BasicAuthMiddleware (RFC 7617) and BearerAuthMiddleware (RFC 6750) end
// the chain with 401 and a WWW-Authenticate challenge when credentials are
// missing or invalid. On success the user or token subject is readable
// with Subject.
//
//	mw, err := middleware.BearerAuthMiddleware(middleware.BearerAuthConfig{
//	    Tokens: map[string]string{"s3cr3t": "ci"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	api.Use(mw)
//
// # CORS and Proxy Headers
//
// CORSMiddleware answers preflight requests itself, so endpoints need no
// OPTIONS handler. ProxyHeadersMiddleware trusts X-Forwarded-* only from
// configured peers; the resolved address is available through ClientIP
// and is used by the access log.
//
// # Timeout Middleware
//
// TimeoutMiddleware sets a deadline on the request context seen by inner
// stages. Handlers must watch ctx.Context() for it to have any effect.
//
// # Access Log and Metrics
//
// LoggingMiddleware writes a zap entry per request and MetricsMiddleware
// records a Prometheus counter and histogram. MetricsHandler serves the
// gathered metrics:
//
//	reg := prometheus.NewRegistry()
//	mw, err := middleware.MetricsMiddleware(middleware.MetricsConfig{Registerer: reg})
//	...
//	e.Get(middleware.MetricsHandler(reg))
package middleware

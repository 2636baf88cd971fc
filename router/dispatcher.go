package router

import (
	"io"
	"net/http"
	"net/url"
	"unicode/utf8"

	"github.com/armon/go-radix"
	"go.uber.org/zap"

	"github.com/isgasho/roa/status"
)

// ErrorHandler renders a status that escaped every chain.
type ErrorHandler func(ctx *Context, st *status.Status)

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger used for fault reporting.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithErrorHandler replaces RenderStatus.
func WithErrorHandler(h ErrorHandler) Option {
	return func(d *Dispatcher) {
		if h != nil {
			d.errorHandler = h
		}
	}
}

// WithGlobalMiddleware wraps every request in mw, including requests that
// match no route.
func WithGlobalMiddleware(mw ...Middleware) Option {
	return func(d *Dispatcher) {
		d.global = d.global.Append(mw...)
	}
}

// RouteInfo describes a compiled route.
type RouteInfo struct {
	Path    string
	Methods []string
	Dynamic bool
}

// Dispatcher is a compiled route table. It is read-only and safe for
// concurrent use.
type Dispatcher struct {
	static  *radix.Tree
	dynamic []*route
	routes  []*route

	global       Chain
	logger       *zap.Logger
	errorHandler ErrorHandler
}

func newDispatcher(routes []*route, opts ...Option) (*Dispatcher, error) {
	d := &Dispatcher{
		static:       radix.New(),
		routes:       routes,
		logger:       zap.NewNop(),
		errorHandler: RenderStatus,
	}

	for _, rt := range routes {
		if !rt.pattern.Static() {
			d.dynamic = append(d.dynamic, rt)
			continue
		}

		path := rt.pattern.Template()
		if _, exists := d.static.Get(path); exists {
			return nil, &ConflictError{Kind: ConflictPath, Path: path}
		}
		d.static.Insert(path, rt)
	}

	for _, opt := range opts {
		opt(d)
	}

	return d, nil
}

// Handle resolves the request path and runs the matched endpoint. next is
// never called: an unmatched path is a 404.
func (d *Dispatcher) Handle(ctx *Context, _ Next) error {
	path, err := requestPath(ctx.Request)
	if err != nil {
		return err
	}

	if v, ok := d.static.Get(path); ok {
		return v.(*route).handler.Handle(ctx, nil)
	}

	for _, rt := range d.dynamic {
		values, ok := rt.pattern.capture(path)
		if !ok {
			continue
		}

		for i, name := range rt.pattern.vars {
			ctx.Store(routerNamespace{}, name, values[i])
		}

		return rt.handler.Handle(ctx, nil)
	}

	return status.New(http.StatusNotFound, "", false)
}

// ServeHTTP runs the global chain around Handle and renders any status
// that comes back. Server errors are logged before rendering.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := NewContext(w, r)

	err := d.global.Handle(ctx, func() error {
		return d.Handle(ctx, nil)
	})
	if err == nil {
		return
	}

	st := status.From(err)
	if st.NeedThrow() {
		d.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", st.Code),
			zap.Stringer("kind", st.Kind()),
			zap.Error(err),
		)
	}

	d.errorHandler(ctx, st)
}

// Routes lists the compiled routes in registration order.
func (d *Dispatcher) Routes() []RouteInfo {
	out := make([]RouteInfo, 0, len(d.routes))
	for _, rt := range d.routes {
		out = append(out, RouteInfo{
			Path:    rt.pattern.Template(),
			Methods: append([]string(nil), rt.methods...),
			Dynamic: !rt.pattern.Static(),
		})
	}
	return out
}

// RenderStatus writes st as a plain text response unless a response was
// already started. Codes that cannot end a response, informational ones
// included, are rendered as 500.
func RenderStatus(ctx *Context, st *status.Status) {
	if ctx.Response.Written() {
		return
	}

	code := st.Code
	if code < 200 || code > 999 {
		code = http.StatusInternalServerError
	}

	if code == http.StatusNoContent || code == http.StatusNotModified {
		ctx.Response.WriteHeader(code)
		return
	}

	h := ctx.Response.Header()
	h.Set("Content-Type", "text/plain; charset=utf-8")
	h.Set("X-Content-Type-Options", "nosniff")
	ctx.Response.WriteHeader(code)

	_, _ = io.WriteString(ctx.Response, st.PublicMessage())
}

// requestPath percent-decodes and standardizes the request path.
func requestPath(r *http.Request) (string, error) {
	escaped := r.URL.EscapedPath()

	path, err := url.PathUnescape(escaped)
	if err != nil {
		return "", status.Wrap(http.StatusBadRequest, err, true)
	}

	if !utf8.ValidString(path) {
		return "", status.Errorf(http.StatusBadRequest, true, "path `%s` is not a valid utf-8 string", escaped)
	}

	return Standardize(path), nil
}

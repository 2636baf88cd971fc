package router

import (
	"net/http"
	"slices"
	"strings"

	"github.com/isgasho/roa/status"
)

// anyMethod keys the fallback handler registered with All.
const anyMethod = "*"

// Endpoint is a single routable path. It dispatches by request method to
// the handlers registered on it, inside its own chain.
type Endpoint struct {
	pattern    *Pattern
	chain      Chain
	handlers   map[string]Middleware
	duplicates []string
	tree       *tree
}

func newEndpoint(p *Pattern, t *tree) *Endpoint {
	return &Endpoint{pattern: p, handlers: make(map[string]Middleware), tree: t}
}

// Path returns the full standardized template.
func (e *Endpoint) Path() string {
	return e.pattern.Template()
}

// Pattern returns the parsed template.
func (e *Endpoint) Pattern() *Pattern {
	return e.pattern
}

// Use appends mw to the endpoint's own chain, inside every ancestor chain.
// It panics with ErrCompiled once the tree has been compiled.
func (e *Endpoint) Use(mw ...Middleware) *Endpoint {
	e.tree.mustBeOpen()
	e.chain = e.chain.Append(mw...)
	return e
}

// Handle registers h for method. Registering a method twice is reported
// as a ConflictError by Compile. It panics with ErrCompiled once the tree
// has been compiled.
func (e *Endpoint) Handle(method string, h Middleware) *Endpoint {
	if h == nil {
		panic("router: nil handler")
	}
	e.tree.mustBeOpen()

	method = strings.ToUpper(method)
	if _, ok := e.handlers[method]; ok {
		e.duplicates = append(e.duplicates, method)
	}
	e.handlers[method] = h

	return e
}

func (e *Endpoint) Get(h HandlerFunc) *Endpoint     { return e.leaf(http.MethodGet, h) }
func (e *Endpoint) Post(h HandlerFunc) *Endpoint    { return e.leaf(http.MethodPost, h) }
func (e *Endpoint) Put(h HandlerFunc) *Endpoint     { return e.leaf(http.MethodPut, h) }
func (e *Endpoint) Patch(h HandlerFunc) *Endpoint   { return e.leaf(http.MethodPatch, h) }
func (e *Endpoint) Delete(h HandlerFunc) *Endpoint  { return e.leaf(http.MethodDelete, h) }
func (e *Endpoint) Head(h HandlerFunc) *Endpoint    { return e.leaf(http.MethodHead, h) }
func (e *Endpoint) Options(h HandlerFunc) *Endpoint { return e.leaf(http.MethodOptions, h) }

// All registers h for every method that has no handler of its own.
func (e *Endpoint) All(h HandlerFunc) *Endpoint {
	return e.leaf(anyMethod, h)
}

func (e *Endpoint) leaf(method string, h HandlerFunc) *Endpoint {
	if h == nil {
		panic("router: nil handler")
	}
	return e.Handle(method, h)
}

// route is a compiled endpoint.
type route struct {
	pattern  *Pattern
	handlers map[string]Middleware
	allow    string
	methods  []string
	handler  Middleware
}

func (e *Endpoint) compile(outer Chain) (*route, error) {
	if len(e.duplicates) > 0 {
		return nil, &ConflictError{Kind: ConflictMethod, Path: e.Path(), Method: e.duplicates[0]}
	}

	rt := &route{
		pattern:  e.pattern,
		handlers: make(map[string]Middleware, len(e.handlers)),
	}

	for method, h := range e.handlers {
		rt.handlers[method] = h
		if method != anyMethod {
			rt.methods = append(rt.methods, method)
		}
	}

	if _, ok := rt.handlers[http.MethodGet]; ok {
		if _, ok := rt.handlers[http.MethodHead]; !ok {
			rt.methods = append(rt.methods, http.MethodHead)
		}
	}

	slices.Sort(rt.methods)
	rt.allow = strings.Join(rt.methods, ", ")
	rt.handler = outer.Concat(e.chain).Then(rt.serve)

	return rt, nil
}

func (rt *route) serve(ctx *Context) error {
	h, ok := rt.lookup(ctx.Method())
	if !ok {
		if rt.allow != "" {
			ctx.Response.Header().Set("Allow", rt.allow)
		}
		return status.New(http.StatusMethodNotAllowed, "", false)
	}

	return h.Handle(ctx, func() error { return nil })
}

func (rt *route) lookup(method string) (Middleware, bool) {
	if h, ok := rt.handlers[method]; ok {
		return h, true
	}
	if method == http.MethodHead {
		if h, ok := rt.handlers[http.MethodGet]; ok {
			return h, true
		}
	}
	h, ok := rt.handlers[anyMethod]
	return h, ok
}

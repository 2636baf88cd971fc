package router

import (
	"context"
	"net/http"
	"net/url"

	"github.com/isgasho/roa/scope"
)

// Context carries one request through a chain.
//
// A stage may replace Request, for example with a derived context.Context,
// and restore it after next returns.
type Context struct {
	Request  *http.Request
	Response *ResponseWriter

	store *scope.Store
}

// NewContext returns a Context for w and r with an empty store.
func NewContext(w http.ResponseWriter, r *http.Request) *Context {
	return &Context{
		Request:  r,
		Response: newResponseWriter(w),
		store:    scope.NewStore(),
	}
}

// Context returns the request context. It is done when the client goes
// away or a deadline set by an outer stage passes.
func (c *Context) Context() context.Context {
	return c.Request.Context()
}

// URI returns the request URL.
func (c *Context) URI() *url.URL {
	return c.Request.URL
}

func (c *Context) Method() string {
	return c.Request.Method
}

// Store publishes a request-scoped value.
func (c *Context) Store(ns scope.Namespace, key, value string) {
	c.store.Store(ns, key, value)
}

// Load reads a request-scoped value.
func (c *Context) Load(ns scope.Namespace, key string) (scope.Variable, bool) {
	return c.store.Load(ns, key)
}

// Scope returns the request store itself, for goroutines forked by a
// stage.
func (c *Context) Scope() *scope.Store {
	return c.store
}

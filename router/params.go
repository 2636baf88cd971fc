package router

import (
	"net/http"

	"github.com/isgasho/roa/scope"
	"github.com/isgasho/roa/status"
)

// routerNamespace holds path captures. It is unexported so that only the
// dispatcher can write them.
type routerNamespace struct{}

func (routerNamespace) Namespace() string { return "router" }

// Param returns the capture named name, or an exposed 400 status when the
// matched route has no such capture.
func (c *Context) Param(name string) (scope.Variable, error) {
	v, ok := c.TryParam(name)
	if !ok {
		return scope.Variable{}, status.Errorf(http.StatusBadRequest, true, "router variable `%s` is required", name)
	}
	return v, nil
}

// TryParam returns the capture named name, if any.
func (c *Context) TryParam(name string) (scope.Variable, bool) {
	return c.store.Load(routerNamespace{}, name)
}

// Params returns every capture of the matched route.
func (c *Context) Params() map[string]string {
	return c.store.All(routerNamespace{})
}

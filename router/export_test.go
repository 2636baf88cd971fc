package router

// setParams publishes captures as if a route had matched.
func setParams(c *Context, vars map[string]string) {
	for k, v := range vars {
		c.store.Store(routerNamespace{}, k, v)
	}
}

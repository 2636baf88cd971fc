package router

// node is a child of a Router: either a nested *Router or an *Endpoint.
type node interface {
	node()
}

func (*Router) node()   {}
func (*Endpoint) node() {}

// tree is shared by a router and all routers nested under it.
type tree struct {
	compiled bool
}

// mustBeOpen panics with ErrCompiled once the tree has been compiled.
// Registration methods that return no error use it.
func (t *tree) mustBeOpen() {
	if t.compiled {
		panic(ErrCompiled)
	}
}

// Router is a route tree node. It joins every child path with its root
// and wraps every endpoint below it with its own middleware.
//
// A Router is not safe for concurrent registration. Compile consumes the
// tree; after that the Dispatcher is the only live structure.
type Router struct {
	root     string
	chain    Chain
	children []node
	tree     *tree
}

// New returns a router rooted at root.
func New(root string) *Router {
	return &Router{root: Standardize(root), tree: &tree{}}
}

// Root returns the standardized root path.
func (r *Router) Root() string {
	return r.root
}

// Use appends mw to the router's own chain. The chain applies to every
// endpoint below this router, including endpoints registered later.
// It panics with ErrCompiled once the tree has been compiled.
func (r *Router) Use(mw ...Middleware) *Router {
	r.tree.mustBeOpen()
	r.chain = r.chain.Append(mw...)
	return r
}

// On registers an endpoint at path below the router's root.
func (r *Router) On(path string) (*Endpoint, error) {
	if r.tree.compiled {
		return nil, ErrCompiled
	}

	pattern, err := ParsePattern(Join(r.root, path))
	if err != nil {
		return nil, err
	}

	e := newEndpoint(pattern, r.tree)
	r.children = append(r.children, e)

	return e, nil
}

// Route returns a nested router rooted at path below the router's root.
// It panics with ErrCompiled once the tree has been compiled.
func (r *Router) Route(path string) *Router {
	r.tree.mustBeOpen()
	sub := &Router{root: Join(r.root, path), tree: r.tree}
	r.children = append(r.children, sub)
	return sub
}

// Compile flattens the tree into a Dispatcher.
//
// Endpoints are collected depth first in registration order. Each one
// runs the chains of its ancestors, root first, around its own. Static
// paths go to a radix tree and must be unique; dynamic patterns are tried
// in collection order and the first match wins.
//
// Compile consumes the whole tree, even when called on a nested router.
func (r *Router) Compile(opts ...Option) (*Dispatcher, error) {
	if r.tree.compiled {
		return nil, ErrCompiled
	}
	r.tree.compiled = true

	var routes []*route
	if err := r.flatten(Chain{}, &routes); err != nil {
		return nil, err
	}

	r.children = nil
	r.chain = Chain{}

	return newDispatcher(routes, opts...)
}

func (r *Router) flatten(outer Chain, out *[]*route) error {
	chain := outer.Concat(r.chain)

	for _, child := range r.children {
		switch n := child.(type) {
		case *Router:
			if err := n.flatten(chain, out); err != nil {
				return err
			}
		case *Endpoint:
			rt, err := n.compile(chain)
			if err != nil {
				return err
			}
			*out = append(*out, rt)
		}
	}

	return nil
}

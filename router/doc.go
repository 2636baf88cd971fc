// Package router implements the route tree, onion middleware chains and
// the compiled dispatcher of roa.
//
// # Router
//
// A Router is built by registering endpoints and nested routers, then
// compiled once into a Dispatcher:
//
//	r := router.New("/")
//	r.Use(logging)
//
//	api := r.Route("/api")
//	api.Use(auth)
//
//	users, err := api.On("/users/:id")
//	if err != nil {
//		return err
//	}
//	users.Get(func(ctx *router.Context) error {
//		id, err := ctx.Param("id")
//		if err != nil {
//			return err
//		}
//		return ctx.Text(http.StatusOK, id.String())
//	})
//
//	d, err := r.Compile(router.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	http.ListenAndServe(":8080", d)
//
// Middleware added to a router applies to every endpoint below it, no
// matter whether the endpoint was registered before or after the Use
// call. Ancestor chains always run outside descendant chains.
//
// # Path Templates
//
// Templates are standardized: a single leading slash, no repeated or
// trailing slashes. Captures come in three forms:
//
//	/users/:id                  whole segment, [^/]+
//	/files/{name}.{ext:alpha}   inline, optional pattern or macro
//	/static/*{path}             wildcard, may span slashes
//
// Available macros:
//
//	uuid     - RFC 4122 UUID
//	int      - unsigned integer
//	float    - decimal number (e.g. 3.14, 42, .5)
//	slug     - URL-safe slug (e.g. my-post-title)
//	alpha    - alphabetic characters
//	alphanum - alphanumeric characters
//	date     - ISO 8601 date (e.g. 2024-01-15)
//	hex      - hexadecimal string
//	domain   - RFC 1123 host name, at most 253 characters
//
// # Dispatch
//
// The request path is percent-decoded, checked to be UTF-8 and
// standardized. Static paths are looked up first in a radix tree. Then
// dynamic patterns are tried in registration order and the first match
// wins; overlapping patterns are not detected. Captures are readable with
// Context.Param and Context.TryParam.
//
// A path that matches nothing is a 404. A matching path without a handler
// for the request method is a 405 with an Allow header.
//
// # Errors
//
// Stages return errors. The Dispatcher converts whatever escapes the
// chains with status.From, logs server errors and renders the status.
// Statuses that are not exposed are rendered with the generic status text.
package router

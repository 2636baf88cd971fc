// Package scope provides the per-request variable store shared by
// middleware.
//
// Keys live in a Namespace, so values published by one component (for
// example path captures written by the router) cannot be read or
// overwritten by another unless it holds the same namespace token.
//
//	type tenantNamespace struct{}
//
//	func (tenantNamespace) Namespace() string { return "tenant" }
//
//	store.Store(tenantNamespace{}, "id", "acme")
//	v, ok := store.Load(tenantNamespace{}, "id")
//
// Variables carry typed conversion helpers that fail with a client error:
//
//	n, err := v.Int()
package scope

package router

import (
	"sync/atomic"
)

// Next runs the remainder of a chain. Code before the call is
// pre-processing, code after it is post-processing.
type Next func() error

// Middleware is one stage of an onion chain. A stage may return without
// calling next to short-circuit everything inside it.
type Middleware interface {
	Handle(ctx *Context, next Next) error
}

// MiddlewareFunc adapts a function to Middleware.
type MiddlewareFunc func(ctx *Context, next Next) error

// Handle calls f(ctx, next).
func (f MiddlewareFunc) Handle(ctx *Context, next Next) error {
	return f(ctx, next)
}

// HandlerFunc is a leaf stage. It never continues the chain.
type HandlerFunc func(ctx *Context) error

// Handle calls h(ctx) and ignores next.
func (h HandlerFunc) Handle(ctx *Context, _ Next) error {
	return h(ctx)
}

// Chain is an immutable ordered list of stages. The zero value is an
// empty chain that simply calls next.
type Chain struct {
	stages []Middleware
}

// NewChain returns a chain running mw in order.
func NewChain(mw ...Middleware) Chain {
	return Chain{}.Append(mw...)
}

// Append returns a new chain with mw added after the existing stages.
func (c Chain) Append(mw ...Middleware) Chain {
	for _, m := range mw {
		if m == nil {
			panic("router: nil middleware")
		}
	}

	stages := make([]Middleware, 0, len(c.stages)+len(mw))
	stages = append(stages, c.stages...)
	stages = append(stages, mw...)

	return Chain{stages: stages}
}

// Concat returns a chain where c is the outer part and inner runs inside
// it.
func (c Chain) Concat(inner Chain) Chain {
	return c.Append(inner.stages...)
}

// Len returns the number of stages.
func (c Chain) Len() int {
	return len(c.stages)
}

// Then returns the chain terminated by the leaf h.
func (c Chain) Then(h HandlerFunc) Middleware {
	if h == nil {
		panic("router: nil handler")
	}
	return c.Append(h)
}

// Handle runs the chain and then next. A nil next is a no-op.
func (c Chain) Handle(ctx *Context, next Next) error {
	return c.run(ctx, 0, next)
}

func (c Chain) run(ctx *Context, i int, next Next) error {
	if i == len(c.stages) {
		if next == nil {
			return nil
		}
		return next()
	}

	var called atomic.Bool

	return c.stages[i].Handle(ctx, func() error {
		if !called.CompareAndSwap(false, true) {
			return nextCalledTwice()
		}
		return c.run(ctx, i+1, next)
	})
}

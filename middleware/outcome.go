package middleware

import (
	"github.com/isgasho/roa/router"
	"github.com/isgasho/roa/status"
)

// outcomeCode returns the status the client will receive for err. A
// response that was already written keeps its code.
func outcomeCode(ctx *router.Context, err error) int {
	if err == nil || ctx.Response.Written() {
		return ctx.Response.Status()
	}
	return status.From(err).Code
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/isgasho/roa/router"
)

func okHandler(ctx *router.Context) error {
	return ctx.Text(http.StatusOK, "ok")
}

// newTestDispatcher mounts leaf at /x behind mw.
func newTestDispatcher(t *testing.T, leaf router.HandlerFunc, mw ...router.Middleware) *router.Dispatcher {
	t.Helper()

	r := router.New("/")
	r.Use(mw...)

	e, err := r.On("/x")
	require.NoError(t, err)
	e.All(leaf)

	d, err := r.Compile()
	require.NoError(t, err)

	return d
}

func serveRequest(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

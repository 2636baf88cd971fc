package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isgasho/roa/router"
)

func echoSubject(ctx *router.Context) error {
	sub, _ := Subject(ctx)
	return ctx.Text(http.StatusOK, sub)
}

func TestBasicAuthMiddleware(t *testing.T) {
	t.Run("requires an auth source", func(t *testing.T) {
		mw, err := BasicAuthMiddleware(BasicAuthConfig{})
		assert.Nil(t, mw)
		assert.ErrorIs(t, err, ErrNoAuthSource)
	})

	mw, err := BasicAuthMiddleware(BasicAuthConfig{
		Realm:       "admin",
		Credentials: map[string]string{"alice": "wonderland"},
	})
	require.NoError(t, err)
	d := newTestDispatcher(t, echoSubject, mw)

	tests := []struct {
		name     string
		user     string
		pass     string
		noAuth   bool
		wantCode int
	}{
		{name: "valid credentials", user: "alice", pass: "wonderland", wantCode: http.StatusOK},
		{name: "wrong password", user: "alice", pass: "nope", wantCode: http.StatusUnauthorized},
		{name: "unknown user", user: "bob", pass: "wonderland", wantCode: http.StatusUnauthorized},
		{name: "missing header", noAuth: true, wantCode: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if !tt.noAuth {
				req.SetBasicAuth(tt.user, tt.pass)
			}

			w := serveRequest(d, req)
			assert.Equal(t, tt.wantCode, w.Code)

			if tt.wantCode == http.StatusOK {
				assert.Equal(t, tt.user, w.Body.String())
			} else {
				assert.Equal(t, `Basic realm="admin"`, w.Header().Get("WWW-Authenticate"))
			}
		})
	}

	t.Run("validate func takes priority", func(t *testing.T) {
		mw, err := BasicAuthMiddleware(BasicAuthConfig{
			ValidateFunc: func(user, pass string) bool { return user == "svc" && pass == "k" },
			Credentials:  map[string]string{"alice": "wonderland"},
		})
		require.NoError(t, err)
		d := newTestDispatcher(t, okHandler, mw)

		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.SetBasicAuth("alice", "wonderland")
		assert.Equal(t, http.StatusUnauthorized, serveRequest(d, req).Code)
		assert.Equal(t, `Basic realm="Restricted"`, serveRequest(d, req).Header().Get("WWW-Authenticate"))

		req = httptest.NewRequest(http.MethodGet, "/x", nil)
		req.SetBasicAuth("svc", "k")
		assert.Equal(t, http.StatusOK, serveRequest(d, req).Code)
	})
}

func TestBearerAuthMiddleware(t *testing.T) {
	t.Run("requires an auth source", func(t *testing.T) {
		_, err := BearerAuthMiddleware(BearerAuthConfig{})
		assert.ErrorIs(t, err, ErrNoAuthSource)
	})

	mw, err := BearerAuthMiddleware(BearerAuthConfig{
		Tokens: map[string]string{"t0k3n": "ci-bot"},
	})
	require.NoError(t, err)
	d := newTestDispatcher(t, echoSubject, mw)

	tests := []struct {
		name      string
		header    string
		wantCode  int
		wantBody  string
		challenge string
	}{
		{name: "valid token", header: "Bearer t0k3n", wantCode: http.StatusOK, wantBody: "ci-bot"},
		{name: "scheme is case insensitive", header: "bearer t0k3n", wantCode: http.StatusOK, wantBody: "ci-bot"},
		{name: "unknown token", header: "Bearer nope", wantCode: http.StatusUnauthorized, challenge: `Bearer realm="Restricted", error="invalid_token"`},
		{name: "missing header", wantCode: http.StatusUnauthorized, challenge: `Bearer realm="Restricted"`},
		{name: "wrong scheme", header: "Basic dDB rM24=", wantCode: http.StatusUnauthorized, challenge: `Bearer realm="Restricted"`},
		{name: "empty token", header: "Bearer ", wantCode: http.StatusUnauthorized, challenge: `Bearer realm="Restricted"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			w := serveRequest(d, req)
			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			}
			if tt.challenge != "" {
				assert.Equal(t, tt.challenge, w.Header().Get("WWW-Authenticate"))
			}
		})
	}

	t.Run("validate func sees the context", func(t *testing.T) {
		mw, err := BearerAuthMiddleware(BearerAuthConfig{
			ValidateFunc: func(ctx *router.Context, token string) (string, bool) {
				return token + "@" + ctx.URI().Path, token == "dyn"
			},
		})
		require.NoError(t, err)
		d := newTestDispatcher(t, echoSubject, mw)

		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Bearer dyn")
		w := serveRequest(d, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "dyn@/x", w.Body.String())
	})
}

func TestConstantTimeEqual(t *testing.T) {
	assert.True(t, constantTimeEqual("abc", "abc"))
	assert.False(t, constantTimeEqual("abc", "abd"))
	assert.False(t, constantTimeEqual("abc", "abcd"))
	assert.True(t, constantTimeEqual("", ""))
}

package router

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// headerLog records every status code passed to WriteHeader.
type headerLog struct {
	http.ResponseWriter
	codes []int
}

func (w *headerLog) WriteHeader(code int) {
	w.codes = append(w.codes, code)
	w.ResponseWriter.WriteHeader(code)
}

func TestResponseWriterStatus(t *testing.T) {
	tests := []struct {
		name   string
		codes  []int
		status int
		sent   []int
	}{
		{"final status is sent once", []int{http.StatusCreated, http.StatusTeapot}, http.StatusCreated, []int{http.StatusCreated}},
		{"early hints are passed through", []int{http.StatusEarlyHints, http.StatusTeapot}, http.StatusTeapot, []int{http.StatusEarlyHints, http.StatusTeapot}},
		{"several interim codes precede the final one", []int{http.StatusContinue, http.StatusEarlyHints, http.StatusAccepted}, http.StatusAccepted, []int{http.StatusContinue, http.StatusEarlyHints, http.StatusAccepted}},
		{"switching protocols is final", []int{http.StatusSwitchingProtocols, http.StatusOK}, http.StatusSwitchingProtocols, []int{http.StatusSwitchingProtocols}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := &headerLog{ResponseWriter: httptest.NewRecorder()}
			rw := newResponseWriter(log)

			for _, code := range tt.codes {
				rw.WriteHeader(code)
			}

			assert.True(t, rw.Written())
			assert.Equal(t, tt.status, rw.Status())
			assert.Equal(t, tt.sent, log.codes)
		})
	}

	t.Run("interim code alone leaves the response open", func(t *testing.T) {
		rw := newResponseWriter(&headerLog{ResponseWriter: httptest.NewRecorder()})
		rw.WriteHeader(http.StatusEarlyHints)

		assert.False(t, rw.Written())
		assert.Equal(t, http.StatusOK, rw.Status())
	})

	t.Run("write after interim code sends 200", func(t *testing.T) {
		log := &headerLog{ResponseWriter: httptest.NewRecorder()}
		rw := newResponseWriter(log)
		rw.WriteHeader(http.StatusEarlyHints)

		n, err := rw.Write([]byte("ok"))
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, http.StatusOK, rw.Status())
		assert.Equal(t, []int{http.StatusEarlyHints, http.StatusOK}, log.codes)
	})
}

func TestEarlyHintsOverNetwork(t *testing.T) {
	r := New("/")
	mustOn(t, r, "/x").Get(func(ctx *Context) error {
		ctx.Response.Header().Set("Link", "</app.css>; rel=preload; as=style")
		ctx.Response.WriteHeader(http.StatusEarlyHints)
		ctx.Response.WriteHeader(http.StatusTeapot)
		_, err := ctx.Response.Write([]byte("body"))
		return err
	})

	srv := httptest.NewServer(mustCompile(t, r))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/x")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
	assert.Equal(t, "body", string(body))
}

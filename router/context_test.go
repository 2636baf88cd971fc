package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isgasho/roa/status"
)

type otherNamespace struct{}

func (otherNamespace) Namespace() string { return "router" }

func TestContext(t *testing.T) {
	t.Run("exposes request basics", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/a?b=c", nil)
		ctx := NewContext(httptest.NewRecorder(), req)

		assert.Equal(t, http.MethodPost, ctx.Method())
		assert.Equal(t, "/a", ctx.URI().Path)
		assert.Equal(t, "c", ctx.URI().Query().Get("b"))
		assert.Equal(t, req.Context(), ctx.Context())
	})

	t.Run("context follows a replaced request", func(t *testing.T) {
		ctx := newTestContext()
		derived, cancel := context.WithCancel(ctx.Context())
		defer cancel()

		ctx.Request = ctx.Request.WithContext(derived)
		assert.Equal(t, derived, ctx.Context())
	})

	t.Run("captures are invisible to other namespaces", func(t *testing.T) {
		ctx := newTestContext()
		setParams(ctx, map[string]string{"id": "1"})

		_, ok := ctx.Load(otherNamespace{}, "id")
		assert.False(t, ok)

		ctx.Store(otherNamespace{}, "id", "forged")
		id, err := ctx.Param("id")
		require.NoError(t, err)
		assert.Equal(t, "1", id.Value)
	})

	t.Run("scope is shared with the context", func(t *testing.T) {
		ctx := newTestContext()
		ctx.Scope().Store(otherNamespace{}, "k", "v")

		v, ok := ctx.Load(otherNamespace{}, "k")
		require.True(t, ok)
		assert.Equal(t, "v", v.Value)
	})

	t.Run("typed param conversion", func(t *testing.T) {
		ctx := newTestContext()
		setParams(ctx, map[string]string{"page": "x"})

		v, err := ctx.Param("page")
		require.NoError(t, err)
		_, err = v.Int()
		assert.Equal(t, http.StatusBadRequest, status.From(err).Code)
	})
}

func TestHeaders(t *testing.T) {
	t.Run("header reads the first value", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Add("X-Tag", "a")
		req.Header.Add("X-Tag", "b")
		ctx := NewContext(httptest.NewRecorder(), req)

		v, ok := ctx.Header("x-tag")
		assert.True(t, ok)
		assert.Equal(t, "a", v)
	})

	t.Run("empty header value is present", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Empty", "")
		ctx := NewContext(httptest.NewRecorder(), req)

		v, ok := ctx.Header("X-Empty")
		assert.True(t, ok)
		assert.Empty(t, v)
	})

	t.Run("must header fails with exposed bad request", func(t *testing.T) {
		_, err := newTestContext().MustHeader("X-Token")
		require.Error(t, err)

		st := status.From(err)
		assert.Equal(t, http.StatusBadRequest, st.Code)
		assert.True(t, st.Expose)
		assert.Equal(t, "header `X-Token` is required", st.Message)
	})

	t.Run("set and add response headers", func(t *testing.T) {
		w := httptest.NewRecorder()
		ctx := NewContext(w, httptest.NewRequest(http.MethodGet, "/", nil))

		require.NoError(t, ctx.SetHeader("X-One", "1"))
		require.NoError(t, ctx.AddHeader("Vary", "Origin"))
		require.NoError(t, ctx.AddHeader("Vary", "Accept"))

		assert.Equal(t, "1", w.Header().Get("X-One"))
		assert.Equal(t, []string{"Origin", "Accept"}, w.Header().Values("Vary"))
	})

	t.Run("invalid header is a hidden server error", func(t *testing.T) {
		ctx := newTestContext()

		err := ctx.SetHeader("Bad Name", "v")
		st := status.From(err)
		assert.Equal(t, http.StatusInternalServerError, st.Code)
		assert.False(t, st.Expose)

		err = ctx.AddHeader("X-Ok", "line\nbreak")
		assert.Equal(t, http.StatusInternalServerError, status.From(err).Code)
	})
}

type unencodable struct{}

func (unencodable) MarshalJSON() ([]byte, error) {
	return nil, errors.New("cannot encode")
}

type payload struct {
	Name  string `json:"name" xml:"name"`
	Count int    `json:"count" xml:"count"`
}

func TestBind(t *testing.T) {
	bodyContext := func(body string) *Context {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		return NewContext(httptest.NewRecorder(), req)
	}

	t.Run("json", func(t *testing.T) {
		var p payload
		require.NoError(t, bodyContext(`{"name":"a","count":2}`).BindJSON(&p))
		assert.Equal(t, payload{Name: "a", Count: 2}, p)
	})

	t.Run("json rejects unknown fields", func(t *testing.T) {
		var p payload
		err := bodyContext(`{"name":"a","extra":true}`).BindJSON(&p)

		st := status.From(err)
		assert.Equal(t, http.StatusBadRequest, st.Code)
		assert.True(t, st.Expose)
	})

	t.Run("malformed json", func(t *testing.T) {
		var p payload
		err := bodyContext(`{"name":`).BindJSON(&p)
		assert.Equal(t, http.StatusBadRequest, status.From(err).Code)
	})

	t.Run("empty body", func(t *testing.T) {
		var p payload
		err := bodyContext("").BindJSON(&p)
		st := status.From(err)
		assert.Equal(t, http.StatusBadRequest, st.Code)
		assert.Equal(t, "request body is empty", st.Message)
	})

	t.Run("xml", func(t *testing.T) {
		var p payload
		require.NoError(t, bodyContext(`<payload><name>x</name><count>3</count></payload>`).Bind(&p, XMLCodec{}))
		assert.Equal(t, payload{Name: "x", Count: 3}, p)
	})

	t.Run("body over limit is 413", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"0123456789"}`))
		req.Body = http.MaxBytesReader(w, req.Body, 4)
		ctx := NewContext(w, req)

		var p payload
		err := ctx.BindJSON(&p)
		assert.Equal(t, http.StatusRequestEntityTooLarge, status.From(err).Code)
	})
}

func TestWriteBody(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		w := httptest.NewRecorder()
		ctx := NewContext(w, httptest.NewRequest(http.MethodGet, "/", nil))

		require.NoError(t, ctx.JSON(http.StatusCreated, payload{Name: "a", Count: 1}))
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"name":"a","count":1}`, w.Body.String())
	})

	t.Run("xml", func(t *testing.T) {
		w := httptest.NewRecorder()
		ctx := NewContext(w, httptest.NewRequest(http.MethodGet, "/", nil))

		require.NoError(t, ctx.XML(http.StatusOK, payload{Name: "a", Count: 1}))
		assert.Equal(t, "application/xml; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Equal(t, `<payload><name>a</name><count>1</count></payload>`, w.Body.String())
	})

	t.Run("encode failure writes nothing", func(t *testing.T) {
		w := httptest.NewRecorder()
		ctx := NewContext(w, httptest.NewRequest(http.MethodGet, "/", nil))

		err := ctx.JSON(http.StatusOK, unencodable{})
		st := status.From(err)
		assert.Equal(t, http.StatusInternalServerError, st.Code)
		assert.False(t, st.Expose)
		assert.False(t, ctx.Response.Written())
	})

	t.Run("text and no content", func(t *testing.T) {
		w := httptest.NewRecorder()
		ctx := NewContext(w, httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, ctx.Text(http.StatusOK, "hi"))
		assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))

		w = httptest.NewRecorder()
		ctx = NewContext(w, httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, ctx.NoContent())
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestResponseWriter(t *testing.T) {
	t.Run("defaults to 200 before writing", func(t *testing.T) {
		rw := newResponseWriter(httptest.NewRecorder())
		assert.Equal(t, http.StatusOK, rw.Status())
		assert.False(t, rw.Written())
		assert.Zero(t, rw.Size())
	})

	t.Run("records status and size", func(t *testing.T) {
		rec := httptest.NewRecorder()
		rw := newResponseWriter(rec)

		rw.WriteHeader(http.StatusCreated)
		rw.WriteHeader(http.StatusTeapot)
		n, err := rw.Write([]byte("hello"))
		require.NoError(t, err)

		assert.Equal(t, 5, n)
		assert.Equal(t, http.StatusCreated, rw.Status())
		assert.Equal(t, 5, rw.Size())
		assert.True(t, rw.Written())
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("implicit 200 on write", func(t *testing.T) {
		rw := newResponseWriter(httptest.NewRecorder())
		_, _ = rw.Write([]byte("x"))
		assert.Equal(t, http.StatusOK, rw.Status())
		assert.True(t, rw.Written())
	})

	t.Run("does not double wrap", func(t *testing.T) {
		rw := newResponseWriter(httptest.NewRecorder())
		assert.Same(t, rw, newResponseWriter(rw))
	})

	t.Run("unwrap and flush reach the recorder", func(t *testing.T) {
		rec := httptest.NewRecorder()
		rw := newResponseWriter(rec)

		assert.Equal(t, rec, rw.Unwrap())
		rw.Flush()
		assert.True(t, rec.Flushed)
		assert.True(t, rw.Written())
	})

	t.Run("hijack unsupported", func(t *testing.T) {
		rw := newResponseWriter(httptest.NewRecorder())
		_, _, err := rw.Hijack()
		assert.ErrorIs(t, err, http.ErrNotSupported)
		assert.False(t, rw.Written())
	})
}

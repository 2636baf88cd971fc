package router

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/bytedance/sonic"

	"github.com/isgasho/roa/status"
)

// Codec reads and writes request and response bodies.
type Codec interface {
	ContentType() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

var strictJSON = sonic.Config{
	EscapeHTML:            true,
	DisallowUnknownFields: true,
	ValidateString:        true,
}.Froze()

// JSONCodec encodes with sonic and rejects unknown object fields.
type JSONCodec struct{}

func (JSONCodec) ContentType() string { return "application/json; charset=utf-8" }

func (JSONCodec) Marshal(v any) ([]byte, error) {
	return strictJSON.Marshal(v)
}

func (JSONCodec) Unmarshal(data []byte, v any) error {
	return strictJSON.Unmarshal(data, v)
}

// XMLCodec uses encoding/xml.
type XMLCodec struct{}

func (XMLCodec) ContentType() string { return "application/xml; charset=utf-8" }

func (XMLCodec) Marshal(v any) ([]byte, error) {
	return xml.Marshal(v)
}

func (XMLCodec) Unmarshal(data []byte, v any) error {
	return xml.Unmarshal(data, v)
}

// Bind decodes the request body into v.
//
// A body over the limit set by http.MaxBytesReader fails with 413, a
// malformed body with an exposed 400.
func (c *Context) Bind(v any, codec Codec) error {
	if c.Request.Body == nil {
		return status.New(http.StatusBadRequest, "request body is empty", true)
	}

	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return status.Wrap(http.StatusRequestEntityTooLarge, err, true)
		}
		return status.Wrap(http.StatusBadRequest, fmt.Errorf("read body: %w", err), true)
	}

	if len(data) == 0 {
		return status.New(http.StatusBadRequest, "request body is empty", true)
	}

	if err := codec.Unmarshal(data, v); err != nil {
		return status.Wrap(http.StatusBadRequest, fmt.Errorf("decode body: %w", err), true)
	}

	return nil
}

// BindJSON is Bind with JSONCodec.
func (c *Context) BindJSON(v any) error {
	return c.Bind(v, JSONCodec{})
}

// Write encodes v with codec and writes it with the given status code.
// Nothing is written when encoding fails.
func (c *Context) Write(code int, v any, codec Codec) error {
	body, err := codec.Marshal(v)
	if err != nil {
		return status.Wrap(http.StatusInternalServerError, fmt.Errorf("encode body: %w", err), false)
	}

	c.Response.Header().Set("Content-Type", codec.ContentType())
	c.Response.WriteHeader(code)

	_, err = c.Response.Write(body)
	return err
}

func (c *Context) JSON(code int, v any) error {
	return c.Write(code, v, JSONCodec{})
}

func (c *Context) XML(code int, v any) error {
	return c.Write(code, v, XMLCodec{})
}

// Text writes s as text/plain.
func (c *Context) Text(code int, s string) error {
	c.Response.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.Response.WriteHeader(code)

	_, err := io.WriteString(c.Response, s)
	return err
}

// NoContent writes a 204 without a body.
func (c *Context) NoContent() error {
	c.Response.WriteHeader(http.StatusNoContent)
	return nil
}

package router

import (
	"fmt"
	"net/http"

	"golang.org/x/net/http/httpguts"

	"github.com/isgasho/roa/status"
)

// Header returns the first value of the request header name.
func (c *Context) Header(name string) (string, bool) {
	values := c.Request.Header.Values(name)
	if len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// MustHeader is like Header but fails with an exposed 400 status when the
// header is absent.
func (c *Context) MustHeader(name string) (string, error) {
	v, ok := c.Header(name)
	if !ok {
		return "", status.Errorf(http.StatusBadRequest, true, "header `%s` is required", name)
	}
	return v, nil
}

// SetHeader replaces the response header name. An invalid name or value
// is a server error.
func (c *Context) SetHeader(name, value string) error {
	if err := validHeader(name, value); err != nil {
		return err
	}
	c.Response.Header().Set(name, value)
	return nil
}

// AddHeader appends value to the response header name.
func (c *Context) AddHeader(name, value string) error {
	if err := validHeader(name, value); err != nil {
		return err
	}
	c.Response.Header().Add(name, value)
	return nil
}

func validHeader(name, value string) error {
	if !httpguts.ValidHeaderFieldName(name) {
		return status.Wrap(http.StatusInternalServerError, fmt.Errorf("invalid header name %q", name), false)
	}
	if !httpguts.ValidHeaderFieldValue(value) {
		return status.Wrap(http.StatusInternalServerError, fmt.Errorf("invalid value for header %q", name), false)
	}
	return nil
}

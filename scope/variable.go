package scope

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/isgasho/roa/status"
)

// Variable is a named value loaded from a Store.
//
// The conversion helpers fail with a 400 status whose message is safe to
// show to the client, since scoped values usually come from the request.
type Variable struct {
	Name  string
	Value string
}

func (v Variable) String() string {
	return v.Value
}

// Int parses the value as a base 10 int.
func (v Variable) Int() (int, error) {
	n, err := strconv.Atoi(v.Value)
	if err != nil {
		return 0, v.typeError("int", err)
	}
	return n, nil
}

// Int64 parses the value as a base 10 int64.
func (v Variable) Int64() (int64, error) {
	n, err := strconv.ParseInt(v.Value, 10, 64)
	if err != nil {
		return 0, v.typeError("int64", err)
	}
	return n, nil
}

// Uint64 parses the value as a base 10 uint64.
func (v Variable) Uint64() (uint64, error) {
	n, err := strconv.ParseUint(v.Value, 10, 64)
	if err != nil {
		return 0, v.typeError("uint64", err)
	}
	return n, nil
}

// Float64 parses the value as a float64.
func (v Variable) Float64() (float64, error) {
	f, err := strconv.ParseFloat(v.Value, 64)
	if err != nil {
		return 0, v.typeError("float64", err)
	}
	return f, nil
}

// Bool parses the value with strconv.ParseBool.
func (v Variable) Bool() (bool, error) {
	b, err := strconv.ParseBool(v.Value)
	if err != nil {
		return false, v.typeError("bool", err)
	}
	return b, nil
}

// Duration parses the value with time.ParseDuration.
func (v Variable) Duration() (time.Duration, error) {
	d, err := time.ParseDuration(v.Value)
	if err != nil {
		return 0, v.typeError("duration", err)
	}
	return d, nil
}

func (v Variable) typeError(typ string, err error) error {
	return status.Wrap(http.StatusBadRequest, fmt.Errorf("variable `%s` should be %s: %w", v.Name, typ, err), true)
}

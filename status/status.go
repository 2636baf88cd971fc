package status

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the coarse class of an HTTP status code per RFC 9110 Section 15.
type Kind int

const (
	// Unknown covers codes outside the 1xx-5xx classes.
	Unknown Kind = iota
	// Informational is RFC 9110 Section 15.2.
	Informational
	// Successful is RFC 9110 Section 15.3.
	Successful
	// Redirection is RFC 9110 Section 15.4.
	Redirection
	// ClientError is RFC 9110 Section 15.5.
	ClientError
	// ServerError is RFC 9110 Section 15.6.
	ServerError
)

var kindNames = [...]string{
	Unknown:       "unknown",
	Informational: "informational",
	Successful:    "successful",
	Redirection:   "redirection",
	ClientError:   "client_error",
	ServerError:   "server_error",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return kindNames[Unknown]
	}
	return kindNames[k]
}

// Classify returns the kind of the given status code.
func Classify(code int) Kind {
	switch code / 100 {
	case 1:
		return Informational
	case 2:
		return Successful
	case 3:
		return Redirection
	case 4:
		return ClientError
	case 5:
		return ServerError
	default:
		return Unknown
	}
}

// Status is an error carrying an HTTP status code and a message.
//
// Expose controls whether Message may be shown to the client. Statuses
// that are not exposed are rendered with the generic status text.
type Status struct {
	Code    int
	Message string
	Expose  bool

	cause error
}

// New returns a Status for code with the given message.
func New(code int, message string, expose bool) *Status {
	return &Status{
		Code:    code,
		Message: message,
		Expose:  expose,
	}
}

// Errorf returns a Status whose message is formatted according to format.
func Errorf(code int, expose bool, format string, args ...any) *Status {
	return New(code, fmt.Sprintf(format, args...), expose)
}

// Wrap returns a Status with the given code that wraps err. The message
// is err.Error().
func Wrap(code int, err error, expose bool) *Status {
	if err == nil {
		return nil
	}

	s := New(code, err.Error(), expose)
	s.cause = err

	return s
}

// From converts err into a Status. A Status found in the error chain is
// returned as is; any other error becomes a non-exposed 500.
func From(err error) *Status {
	if err == nil {
		return nil
	}

	var s *Status
	if errors.As(err, &s) {
		return s
	}

	return Wrap(http.StatusInternalServerError, err, false)
}

// Kind returns the class of s.Code.
func (s *Status) Kind() Kind {
	return Classify(s.Code)
}

// NeedThrow reports whether the status must be escalated to fault
// reporting. Only ServerError and Unknown kinds are, regardless of Expose.
func (s *Status) NeedThrow() bool {
	kind := s.Kind()
	return kind == ServerError || kind == Unknown
}

// PublicMessage returns the text that may be sent to the client.
func (s *Status) PublicMessage() string {
	if s.Expose && s.Message != "" {
		return s.Message
	}

	if text := http.StatusText(s.Code); text != "" {
		return text
	}

	return "Unknown Status"
}

func (s *Status) Error() string {
	text := http.StatusText(s.Code)
	if text == "" {
		text = "Unknown Status"
	}

	if s.Message == "" {
		return fmt.Sprintf("%d %s", s.Code, text)
	}

	return fmt.Sprintf("%d %s: %s", s.Code, text, s.Message)
}

// Unwrap returns the underlying error, if any.
func (s *Status) Unwrap() error {
	return s.cause
}

// Is reports whether target is a Status with the same code.
func (s *Status) Is(target error) bool {
	t, ok := target.(*Status)
	if !ok {
		return false
	}

	return s.Code == t.Code
}

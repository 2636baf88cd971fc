package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"

	"github.com/isgasho/roa/router"
	"github.com/isgasho/roa/status"
)

// ErrNoAuthSource is returned when an auth config has neither a
// ValidateFunc nor static credentials.
var ErrNoAuthSource = errors.New("auth: at least one of ValidateFunc or credentials must be set")

type authNamespace struct{}

func (authNamespace) Namespace() string { return "auth" }

const subjectKey = "subject"

// Subject returns the user or token subject published by an auth
// middleware.
func Subject(ctx *router.Context) (string, bool) {
	v, ok := ctx.Load(authNamespace{}, subjectKey)
	return v.Value, ok
}

// BasicAuthConfig configures the Basic Auth middleware behaviour.
//
// See https://www.rfc-editor.org/rfc/rfc7617
type BasicAuthConfig struct {
	// Realm is sent in the WWW-Authenticate header. Defaults to
	// "Restricted".
	Realm string

	// ValidateFunc validates credentials dynamically and takes priority
	// over Credentials.
	ValidateFunc func(username, password string) bool

	// Credentials maps usernames to passwords. Passwords are compared in
	// constant time.
	Credentials map[string]string
}

// BasicAuthMiddleware returns a middleware that requires HTTP Basic
// credentials. Missing or wrong credentials end the chain with a 401
// status. The username is published for Subject.
//
// It returns ErrNoAuthSource if both ValidateFunc and Credentials are empty.
func BasicAuthMiddleware(cfg BasicAuthConfig) (router.MiddlewareFunc, error) {
	if cfg.ValidateFunc == nil && len(cfg.Credentials) == 0 {
		return nil, ErrNoAuthSource
	}

	realm := cfg.Realm
	if realm == "" {
		realm = "Restricted"
	}

	challenge := fmt.Sprintf("Basic realm=%q", realm)
	validate := cfg.ValidateFunc
	credentials := cfg.Credentials

	return func(ctx *router.Context, next router.Next) error {
		username, password, ok := ctx.Request.BasicAuth()
		if !ok {
			return unauthorized(ctx, challenge)
		}

		if validate != nil {
			if !validate(username, password) {
				return unauthorized(ctx, challenge)
			}
		} else {
			expected, exists := credentials[username]
			// Compare even for unknown users so timing does not reveal them.
			match := constantTimeEqual(password, expected)
			if !exists || !match {
				return unauthorized(ctx, challenge)
			}
		}

		ctx.Store(authNamespace{}, subjectKey, username)

		return next()
	}, nil
}

// constantTimeEqual hashes both sides first so that lengths leak nothing.
func constantTimeEqual(a, b string) bool {
	aHash := sha256.Sum256([]byte(a))
	bHash := sha256.Sum256([]byte(b))

	return subtle.ConstantTimeCompare(aHash[:], bHash[:]) == 1
}

func unauthorized(ctx *router.Context, challenge string) error {
	ctx.Response.Header().Set("WWW-Authenticate", challenge)
	return status.New(http.StatusUnauthorized, "", false)
}

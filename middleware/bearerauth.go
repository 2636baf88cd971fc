package middleware

import (
	"fmt"
	"strings"

	"github.com/isgasho/roa/router"
)

// BearerAuthConfig configures the Bearer Auth middleware behaviour.
//
// See https://www.rfc-editor.org/rfc/rfc6750
type BearerAuthConfig struct {
	// Realm is sent in the WWW-Authenticate header. Defaults to
	// "Restricted".
	Realm string

	// ValidateFunc returns the subject for a valid token. Takes priority
	// over Tokens.
	ValidateFunc func(ctx *router.Context, token string) (subject string, ok bool)

	// Tokens maps static tokens to their subject.
	Tokens map[string]string
}

// BearerAuthMiddleware returns a middleware that requires an
// "Authorization: Bearer <token>" header. A missing or unknown token ends
// the chain with a 401 status. The token subject is published for Subject.
//
// It returns ErrNoAuthSource if both ValidateFunc and Tokens are empty.
func BearerAuthMiddleware(cfg BearerAuthConfig) (router.MiddlewareFunc, error) {
	if cfg.ValidateFunc == nil && len(cfg.Tokens) == 0 {
		return nil, ErrNoAuthSource
	}

	realm := cfg.Realm
	if realm == "" {
		realm = "Restricted"
	}

	challenge := fmt.Sprintf("Bearer realm=%q", realm)
	invalid := fmt.Sprintf("Bearer realm=%q, error=\"invalid_token\"", realm)

	validate := cfg.ValidateFunc
	if validate == nil {
		tokens := cfg.Tokens
		validate = func(_ *router.Context, token string) (string, bool) {
			var subject string
			found := false
			// Walk every entry so the match position does not leak.
			for candidate, sub := range tokens {
				if constantTimeEqual(token, candidate) {
					subject = sub
					found = true
				}
			}
			return subject, found
		}
	}

	return func(ctx *router.Context, next router.Next) error {
		token, ok := bearerToken(ctx.Request.Header.Get("Authorization"))
		if !ok {
			return unauthorized(ctx, challenge)
		}

		subject, ok := validate(ctx, token)
		if !ok {
			return unauthorized(ctx, invalid)
		}

		ctx.Store(authNamespace{}, subjectKey, subject)

		return next()
	}, nil
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}

	return token, true
}

// Package auth authenticates clients of the layer feature Flight service.
//
// The server side validates "authorization: Bearer <token>" metadata through
// gRPC interceptors, which also check the identity's access to the layer each
// request reads. The client side attaches the token as per-RPC credentials.
package auth

import (
	"context"
	"errors"
)

var (
	// ErrUnauthenticated indicates a token rejected by an Authenticator.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrLayerForbidden indicates an identity not allowed to read a layer.
	ErrLayerForbidden = errors.New("layer access forbidden")
)

// Authenticator validates bearer tokens and returns the caller identity.
// Implementations MUST be goroutine-safe.
type Authenticator interface {
	// Authenticate validates token and returns the identity used for
	// layer authorization and logging.
	Authenticate(ctx context.Context, token string) (identity string, err error)
}

// LayerAuthorizer is optionally implemented by an Authenticator to restrict
// which layers an identity may read. The identity is available through
// IdentityFromContext.
type LayerAuthorizer interface {
	AuthorizeLayer(ctx context.Context, layer string) error
}

// AuthenticatorFunc adapts a function to the Authenticator interface.
type AuthenticatorFunc func(ctx context.Context, token string) (string, error)

// Authenticate implements Authenticator.
func (f AuthenticatorFunc) Authenticate(ctx context.Context, token string) (string, error) {
	return f(ctx, token)
}

// BearerAuth creates an Authenticator from a validation function.
//
// Example:
//
//	auth := BearerAuth(func(token string) (string, error) {
//	    user, err := sessions.Lookup(token)
//	    if err != nil {
//	        return "", auth.ErrUnauthenticated
//	    }
//	    return user.ID, nil
//	})
func BearerAuth(validate func(token string) (identity string, err error)) Authenticator {
	return AuthenticatorFunc(func(ctx context.Context, token string) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return validate(token)
	})
}

// StaticTokens authenticates a fixed set of tokens, mapping each to an
// identity. When layers is non-nil, an identity may only read the layers
// listed for it.
func StaticTokens(tokens map[string]string, layers map[string][]string) Authenticator {
	return &staticTokens{tokens: tokens, layers: layers}
}

type staticTokens struct {
	tokens map[string]string
	layers map[string][]string
}

func (s *staticTokens) Authenticate(ctx context.Context, token string) (string, error) {
	identity, ok := s.tokens[token]
	if !ok {
		return "", ErrUnauthenticated
	}
	return identity, nil
}

func (s *staticTokens) AuthorizeLayer(ctx context.Context, layer string) error {
	if s.layers == nil {
		return nil
	}
	for _, l := range s.layers[IdentityFromContext(ctx)] {
		if l == layer {
			return nil
		}
	}
	return ErrLayerForbidden
}

// NoAuth returns an Authenticator accepting every token as "anonymous".
// For development and tests only.
func NoAuth() Authenticator {
	return AuthenticatorFunc(func(ctx context.Context, token string) (string, error) {
		return "anonymous", nil
	})
}

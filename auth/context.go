package auth

import (
	"context"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type contextKey int

const identityKey contextKey = iota

const (
	authorizationHeader = "authorization"
	bearerPrefix        = "Bearer "
)

// WithIdentity returns a context carrying the authenticated identity.
func WithIdentity(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext returns the authenticated identity, or "" for
// unauthenticated requests.
func IdentityFromContext(ctx context.Context) string {
	identity, _ := ctx.Value(identityKey).(string)
	return identity
}

// ExtractToken returns the bearer token from incoming gRPC metadata.
// A missing header yields "" without error; a malformed one yields an
// Unauthenticated status.
func ExtractToken(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", nil
	}
	headers := md.Get(authorizationHeader)
	if len(headers) == 0 {
		return "", nil
	}

	token, ok := strings.CutPrefix(headers[0], bearerPrefix)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "authorization header must use Bearer scheme")
	}
	if token == "" {
		return "", status.Error(codes.Unauthenticated, "bearer token is empty")
	}
	return token, nil
}

// ValidateToken authenticates token and returns a context carrying the
// identity. Failures are Unauthenticated status errors.
func ValidateToken(ctx context.Context, token string, authenticator Authenticator) (context.Context, error) {
	if token == "" {
		return ctx, status.Error(codes.Unauthenticated, "missing bearer token")
	}
	identity, err := authenticator.Authenticate(ctx, token)
	if err != nil {
		return ctx, status.Errorf(codes.Unauthenticated, "invalid token: %v", err)
	}
	return WithIdentity(ctx, identity), nil
}

// AuthorizeLayer checks layer access when authenticator implements
// LayerAuthorizer. Failures are PermissionDenied status errors.
func AuthorizeLayer(ctx context.Context, authenticator Authenticator, layer string) error {
	la, ok := authenticator.(LayerAuthorizer)
	if !ok {
		return nil
	}
	if err := la.AuthorizeLayer(ctx, layer); err != nil {
		return status.Errorf(codes.PermissionDenied, "layer %s: %v", layer, err)
	}
	return nil
}

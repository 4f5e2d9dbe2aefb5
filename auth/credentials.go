package auth

import (
	"context"

	"google.golang.org/grpc/credentials"
)

// BearerCredentials attaches a bearer token to every outgoing call.
type BearerCredentials struct {
	Token string

	// Secure requires a TLS transport before the token is sent.
	Secure bool
}

var _ credentials.PerRPCCredentials = BearerCredentials{}

// GetRequestMetadata implements credentials.PerRPCCredentials.
func (c BearerCredentials) GetRequestMetadata(ctx context.Context, uri ...string) (map[string]string, error) {
	return map[string]string{authorizationHeader: bearerPrefix + c.Token}, nil
}

// RequireTransportSecurity implements credentials.PerRPCCredentials.
func (c BearerCredentials) RequireTransportSecurity() bool {
	return c.Secure
}

package auth

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func TestNoAuth(t *testing.T) {
	identity, err := NoAuth().Authenticate(context.Background(), "")
	if err != nil {
		t.Errorf("NoAuth should never return error, got: %v", err)
	}
	if identity != "anonymous" {
		t.Errorf("expected identity 'anonymous', got '%s'", identity)
	}
}

func TestBearerAuth(t *testing.T) {
	auth := BearerAuth(func(token string) (string, error) {
		if token == "valid-token" {
			return "user123", nil
		}
		return "", errors.New("invalid token")
	})

	tests := []struct {
		name     string
		token    string
		identity string
		wantErr  bool
	}{
		{"valid", "valid-token", "user123", false},
		{"invalid", "other", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity, err := auth.Authenticate(context.Background(), tt.token)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if identity != tt.identity {
				t.Errorf("expected identity '%s', got '%s'", tt.identity, identity)
			}
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := auth.Authenticate(ctx, "valid-token"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestStaticTokensAuthorizeLayer(t *testing.T) {
	auth := StaticTokens(
		map[string]string{"t1": "alice", "t2": "bob"},
		map[string][]string{"alice": {"buildings"}},
	)

	ctx, err := ValidateToken(context.Background(), "t1", auth)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if got := IdentityFromContext(ctx); got != "alice" {
		t.Errorf("expected identity 'alice', got '%s'", got)
	}
	if err := AuthorizeLayer(ctx, auth, "buildings"); err != nil {
		t.Errorf("expected access to buildings, got %v", err)
	}
	if err := AuthorizeLayer(ctx, auth, "parcels"); status.Code(err) != codes.PermissionDenied {
		t.Errorf("expected PermissionDenied, got %v", err)
	}

	if _, err := ValidateToken(context.Background(), "t3", auth); status.Code(err) != codes.Unauthenticated {
		t.Errorf("expected Unauthenticated, got %v", err)
	}
	if err := AuthorizeLayer(context.Background(), NoAuth(), "parcels"); err != nil {
		t.Errorf("expected authenticators without layer rules to allow access, got %v", err)
	}
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name    string
		md      metadata.MD
		want    string
		wantErr bool
	}{
		{"no metadata", nil, "", false},
		{"no header", metadata.Pairs("x-other", "1"), "", false},
		{"bearer", metadata.Pairs("authorization", "Bearer abc"), "abc", false},
		{"basic scheme", metadata.Pairs("authorization", "Basic abc"), "", true},
		{"empty token", metadata.Pairs("authorization", "Bearer "), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.md != nil {
				ctx = metadata.NewIncomingContext(ctx, tt.md)
			}
			got, err := ExtractToken(ctx)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if got != tt.want {
				t.Errorf("expected '%s', got '%s'", tt.want, got)
			}
		})
	}
}

func TestBearerCredentials(t *testing.T) {
	creds := BearerCredentials{Token: "abc"}
	md, err := creds.GetRequestMetadata(context.Background())
	if err != nil {
		t.Fatalf("GetRequestMetadata failed: %v", err)
	}
	if md["authorization"] != "Bearer abc" {
		t.Errorf("expected 'Bearer abc', got '%s'", md["authorization"])
	}
	if creds.RequireTransportSecurity() {
		t.Error("expected insecure transport to be allowed")
	}
}

func TestUnaryServerInterceptor(t *testing.T) {
	auth := StaticTokens(map[string]string{"abc": "alice"}, nil)
	interceptor := UnaryServerInterceptor(auth, nil)

	var seen string
	handler := func(ctx context.Context, req any) (any, error) {
		seen = IdentityFromContext(ctx)
		return "ok", nil
	}

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer abc"))
	if _, err := interceptor(ctx, nil, &grpc.UnaryServerInfo{}, handler); err != nil {
		t.Fatalf("expected call to pass, got %v", err)
	}
	if seen != "alice" {
		t.Errorf("expected identity 'alice' in handler, got '%s'", seen)
	}

	_, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{}, handler)
	if status.Code(err) != codes.Unauthenticated {
		t.Errorf("expected Unauthenticated without token, got %v", err)
	}

	if _, err := UnaryServerInterceptor(nil, nil)(context.Background(), nil, &grpc.UnaryServerInfo{}, handler); err != nil {
		t.Errorf("expected nil authenticator to pass, got %v", err)
	}
}

// layerOfString treats string messages as layer names.
func layerOfString(msg any) (string, bool) {
	layer, ok := msg.(string)
	return layer, ok
}

func TestUnaryServerInterceptorAuthorizesLayer(t *testing.T) {
	auth := StaticTokens(
		map[string]string{"abc": "alice"},
		map[string][]string{"alice": {"buildings"}},
	)
	interceptor := UnaryServerInterceptor(auth, layerOfString)
	handler := func(ctx context.Context, req any) (any, error) { return "ok", nil }
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer abc"))

	tests := []struct {
		name string
		req  any
		want codes.Code
	}{
		{"allowed layer", "buildings", codes.OK},
		{"forbidden layer", "parcels", codes.PermissionDenied},
		{"unresolved request", 42, codes.OK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := interceptor(ctx, tt.req, &grpc.UnaryServerInfo{}, handler)
			if status.Code(err) != tt.want {
				t.Errorf("expected %s, got %v", tt.want, err)
			}
		})
	}
}

// recvStream delivers a single layer name to RecvMsg.
type recvStream struct {
	grpc.ServerStream
	ctx   context.Context
	layer string
}

func (s *recvStream) Context() context.Context { return s.ctx }

func (s *recvStream) RecvMsg(m any) error {
	*(m.(*string)) = s.layer
	return nil
}

func TestStreamServerInterceptorAuthorizesLayer(t *testing.T) {
	auth := StaticTokens(
		map[string]string{"abc": "alice"},
		map[string][]string{"alice": {"buildings"}},
	)
	layerOf := func(msg any) (string, bool) {
		layer, ok := msg.(*string)
		if !ok {
			return "", false
		}
		return *layer, true
	}
	interceptor := StreamServerInterceptor(auth, layerOf)
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer abc"))

	tests := []struct {
		name  string
		layer string
		want  codes.Code
	}{
		{"allowed layer", "buildings", codes.OK},
		{"forbidden layer", "parcels", codes.PermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var identity string
			handler := func(srv any, ss grpc.ServerStream) error {
				identity = IdentityFromContext(ss.Context())
				var layer string
				return ss.RecvMsg(&layer)
			}
			err := interceptor(nil, &recvStream{ctx: ctx, layer: tt.layer}, &grpc.StreamServerInfo{}, handler)
			if status.Code(err) != tt.want {
				t.Errorf("expected %s, got %v", tt.want, err)
			}
			if identity != "alice" {
				t.Errorf("expected identity 'alice' in handler, got '%s'", identity)
			}
		})
	}

	err := interceptor(nil, &recvStream{ctx: context.Background()}, &grpc.StreamServerInfo{}, func(srv any, ss grpc.ServerStream) error {
		return nil
	})
	if status.Code(err) != codes.Unauthenticated {
		t.Errorf("expected Unauthenticated without token, got %v", err)
	}
}

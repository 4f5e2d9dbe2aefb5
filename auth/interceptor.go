package auth

import (
	"context"

	"google.golang.org/grpc"
)

// LayerFunc names the layer a request message reads, if any.
// Messages it cannot resolve are passed through for the handler to reject.
type LayerFunc func(msg any) (layer string, ok bool)

// UnaryServerInterceptor authenticates unary calls and, when layerOf
// resolves the request, checks layer access before the handler runs.
// A nil authenticator lets every call through.
func UnaryServerInterceptor(authenticator Authenticator, layerOf LayerFunc) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if authenticator == nil {
			return handler(ctx, req)
		}
		ctx, err := authenticate(ctx, authenticator)
		if err != nil {
			return nil, err
		}
		if err := authorizeMessage(ctx, authenticator, layerOf, req); err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

// StreamServerInterceptor authenticates streaming calls such as DoGet.
// Layer access is checked on every message the handler receives.
// A nil authenticator lets every call through.
func StreamServerInterceptor(authenticator Authenticator, layerOf LayerFunc) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		if authenticator == nil {
			return handler(srv, ss)
		}
		ctx, err := authenticate(ss.Context(), authenticator)
		if err != nil {
			return err
		}
		return handler(srv, &layerCheckedStream{
			ServerStream:  ss,
			ctx:           ctx,
			authenticator: authenticator,
			layerOf:       layerOf,
		})
	}
}

func authenticate(ctx context.Context, authenticator Authenticator) (context.Context, error) {
	token, err := ExtractToken(ctx)
	if err != nil {
		return ctx, err
	}
	return ValidateToken(ctx, token, authenticator)
}

func authorizeMessage(ctx context.Context, authenticator Authenticator, layerOf LayerFunc, msg any) error {
	if layerOf == nil {
		return nil
	}
	layer, ok := layerOf(msg)
	if !ok {
		return nil
	}
	return AuthorizeLayer(ctx, authenticator, layer)
}

// layerCheckedStream carries the identity context and authorizes the layer
// of each received message.
type layerCheckedStream struct {
	grpc.ServerStream
	ctx           context.Context
	authenticator Authenticator
	layerOf       LayerFunc
}

func (s *layerCheckedStream) Context() context.Context {
	return s.ctx
}

func (s *layerCheckedStream) RecvMsg(m any) error {
	if err := s.ServerStream.RecvMsg(m); err != nil {
		return err
	}
	return authorizeMessage(s.ctx, s.authenticator, s.layerOf, m)
}

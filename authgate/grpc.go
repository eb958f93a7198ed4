package authgate

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// UnaryServerInterceptor returns a gRPC unary server interceptor that authenticates
// every call and stores the Principal in the handler context
func UnaryServerInterceptor(g *Gate) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		md, _ := metadata.FromIncomingContext(ctx)

		requestID := ""
		if values := md.Get("x-request-id"); len(values) > 0 {
			requestID = values[0]
		}
		if requestID == "" {
			requestID = uuid.New().String()
		}
		ctx = WithRequestID(ctx, requestID)

		p, err := g.Authenticate(ctx, headerFromMetadata(md))
		if err != nil {
			return nil, status.Error(GRPCCode(err), string(KindOf(err)))
		}

		return handler(WithPrincipal(ctx, p), req)
	}
}

// AuthorizeOwnerRPC runs Gate.AuthorizeOwner for the principal in ctx and
// converts failures into gRPC status errors
func AuthorizeOwnerRPC(ctx context.Context, g *Gate, lookup OwnerLookup) error {
	p, ok := PrincipalFrom(ctx)
	if !ok {
		err := NewAuthFailure(KindMissingHeader, "call was not authenticated", nil)
		return status.Error(GRPCCode(err), string(err.Kind))
	}
	if err := g.AuthorizeOwner(ctx, p, lookup); err != nil {
		return status.Error(GRPCCode(err), string(KindOf(err)))
	}
	return nil
}

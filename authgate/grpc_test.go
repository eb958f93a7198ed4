package authgate

import (
	"context"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func TestUnaryServerInterceptor(t *testing.T) {
	gate := newTestGate(t)
	interceptor := UnaryServerInterceptor(gate)
	info := &grpc.UnaryServerInfo{FullMethod: "/lifelog.memo.v1.MemoService/GetMemo"}

	tests := []struct {
		name     string
		ctx      context.Context
		wantCode codes.Code
		wantUser int64
	}{
		{
			name:     "no metadata",
			ctx:      context.Background(),
			wantCode: codes.Unauthenticated,
		},
		{
			name:     "no authorization entry",
			ctx:      metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-request-id", "abc")),
			wantCode: codes.Unauthenticated,
		},
		{
			name: "expired token",
			ctx: metadata.NewIncomingContext(context.Background(), metadata.Pairs(
				"authorization", bearer(tokenFor(t, "7", time.Now().Add(-time.Hour))),
			)),
			wantCode: codes.Unauthenticated,
		},
		{
			name: "valid token",
			ctx: metadata.NewIncomingContext(context.Background(), metadata.Pairs(
				"authorization", bearer(tokenFor(t, "7", time.Now().Add(time.Hour))),
			)),
			wantCode: codes.OK,
			wantUser: 7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Principal
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				got = MustPrincipal(ctx)
				if _, ok := RequestIDFrom(ctx); !ok {
					t.Error("expected request id in handler context")
				}
				return "ok", nil
			}

			_, err := interceptor(tt.ctx, nil, info, handler)
			if code := status.Code(err); code != tt.wantCode {
				t.Fatalf("expected code %s, got %s (%v)", tt.wantCode, code, err)
			}
			if tt.wantCode == codes.OK && got.UserID() != tt.wantUser {
				t.Errorf("expected user %d, got %d", tt.wantUser, got.UserID())
			}
		})
	}
}

func TestAuthorizeOwnerRPC(t *testing.T) {
	gate := newTestGate(t)
	ctx := WithPrincipal(context.Background(), Principal{userID: 7})

	if err := AuthorizeOwnerRPC(ctx, gate, ownerIs(7)); err != nil {
		t.Errorf("expected allow, got %v", err)
	}
	if code := status.Code(AuthorizeOwnerRPC(ctx, gate, ownerIs(9))); code != codes.PermissionDenied {
		t.Errorf("expected PermissionDenied, got %s", code)
	}
	notFound := func(context.Context) (int64, error) { return 0, ErrOwnerNotFound }
	if code := status.Code(AuthorizeOwnerRPC(ctx, gate, notFound)); code != codes.NotFound {
		t.Errorf("expected NotFound, got %s", code)
	}
	if code := status.Code(AuthorizeOwnerRPC(context.Background(), gate, ownerIs(7))); code != codes.Unauthenticated {
		t.Errorf("expected Unauthenticated without principal, got %s", code)
	}
}

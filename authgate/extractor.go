package authgate

import (
	"net/http"
	"strings"

	"google.golang.org/grpc/metadata"
)

const bearerPrefix = "Bearer "

// tokenFromHeader extracts the token from an Authorization header value
// Expected format: "Bearer <token>"; an empty value means the header was absent.
func tokenFromHeader(header string) (string, error) {
	if header == "" {
		return "", NewAuthFailure(KindMissingHeader, "authorization header not found", nil)
	}

	if !strings.HasPrefix(header, bearerPrefix) {
		return "", NewAuthFailure(KindMissingHeader, "invalid authorization header format, expected 'Bearer <token>'", nil)
	}

	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if token == "" {
		return "", NewAuthFailure(KindMissingHeader, "token is empty", nil)
	}

	return token, nil
}

// headerFromRequest returns the Authorization header of an HTTP request
func headerFromRequest(r *http.Request) string {
	return r.Header.Get("Authorization")
}

// headerFromMetadata returns the authorization entry of gRPC metadata
func headerFromMetadata(md metadata.MD) string {
	values := md.Get("authorization")
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

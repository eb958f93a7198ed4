package authgate

import (
	"encoding/base64"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func init() {
	// Set Gin to test mode to suppress logs
	gin.SetMode(gin.TestMode)
}

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestConfig(t *testing.T, opts ...ConfigOption) *Config {
	t.Helper()
	cfg, err := NewConfig(append([]ConfigOption{WithHS256(testSecret)}, opts...)...)
	if err != nil {
		t.Fatalf("Failed to create config: %v", err)
	}
	return cfg
}

func newTestGate(t *testing.T, opts ...ConfigOption) *Gate {
	t.Helper()
	return New(newTestConfig(t, opts...))
}

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	tokenString, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return tokenString
}

// tokenFor returns an HS256 token for sub signed with testSecret
func tokenFor(t *testing.T, sub string, exp time.Time) string {
	t.Helper()
	return signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
		"sub": sub,
		"exp": exp.Unix(),
		"iat": time.Now().Unix(),
	})
}

func bearer(token string) string {
	return "Bearer " + token
}

func encodeSegment(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

// replaceSegment swaps segment i of a compact token
func replaceSegment(token string, i int, seg string) string {
	parts := strings.Split(token, ".")
	parts[i] = seg
	return strings.Join(parts, ".")
}

func assertKind(t *testing.T, err error, want FailureKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s failure, got nil", want)
	}
	if got := KindOf(err); got != want {
		t.Fatalf("expected failure kind %s, got %s (%v)", want, got, err)
	}
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o600)
}

package authgate

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNewConfig(t *testing.T) {
	tests := []struct {
		name    string
		opts    []ConfigOption
		wantErr string
	}{
		{
			name:    "no secret",
			opts:    nil,
			wantErr: "signing secret must be configured",
		},
		{
			name:    "short secret",
			opts:    []ConfigOption{WithHS256([]byte("short"))},
			wantErr: "at least 32 bytes",
		},
		{
			name:    "negative skew",
			opts:    []ConfigOption{WithHS256(testSecret), WithClockSkew(-time.Second)},
			wantErr: "clock skew",
		},
		{
			name:    "skew above maximum",
			opts:    []ConfigOption{WithHS256(testSecret), WithClockSkew(2 * time.Minute)},
			wantErr: "clock skew",
		},
		{
			name:    "nil clock",
			opts:    []ConfigOption{WithHS256(testSecret), WithClock(nil)},
			wantErr: "clock cannot be nil",
		},
		{
			name:    "nil authorizer",
			opts:    []ConfigOption{WithHS256(testSecret), WithAuthorizer(nil)},
			wantErr: "authorizer cannot be nil",
		},
		{
			name: "valid",
			opts: []ConfigOption{WithHS256(testSecret), WithClockSkew(0)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := NewConfig(tt.opts...)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if cfg.Algorithm() != "HS256" {
					t.Errorf("expected HS256, got %s", cfg.Algorithm())
				}
				return
			}
			assertKind(t, err, KindConfigError)
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := newTestConfig(t)
	if cfg.ClockSkewLeeway() != 30*time.Second {
		t.Errorf("expected default skew 30s, got %v", cfg.ClockSkewLeeway())
	}
	if cfg.Logger() != nil {
		t.Error("expected logging disabled by default")
	}
	if _, ok := cfg.authorizer.(OwnershipGuard); !ok {
		t.Errorf("expected OwnershipGuard by default, got %T", cfg.authorizer)
	}
}

func TestConfigCopiesSecret(t *testing.T) {
	secret := append([]byte(nil), testSecret...)
	cfg, err := NewConfig(WithHS256(secret))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	secret[0] = 'X'
	if cfg.secret[0] == 'X' {
		t.Error("config must not alias the caller's secret slice")
	}
}

func TestParseSecret(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "plain-secret", want: "plain-secret"},
		{raw: "  padded  ", want: "padded"},
		{raw: "base64:aGVsbG8=", want: "hello"},
		{raw: "base64:aGVsbG8", want: "hello"},
		{raw: "base64:!!!", wantErr: true},
		{raw: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseSecret(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestNewSignerRejectsShortSecret(t *testing.T) {
	_, err := NewSigner([]byte("short"))
	if err == nil {
		t.Fatal("expected error")
	}
	var failure *AuthFailure
	if errors.As(err, &failure) {
		t.Errorf("signer construction errors are plain errors, got %v", failure)
	}
}

package authgate

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// MinSecretLength is the minimum HS256 secret length in bytes
	MinSecretLength = 32
	// MaxClockSkew bounds the configurable exp tolerance
	MaxClockSkew = 60 * time.Second

	defaultClockSkew = 30 * time.Second
)

// Config holds immutable configuration for the gate
type Config struct {
	secret          []byte
	signingMethod   jwt.SigningMethod
	clockSkewLeeway time.Duration
	logger          *slog.Logger
	now             func() time.Time
	authorizer      Authorizer
	metrics         *Metrics
}

// ConfigOption is a functional option for configuring the gate
type ConfigOption func(*Config) error

// NewConfig creates a new immutable configuration with the given options.
// There is no default secret: WithHS256 is mandatory.
func NewConfig(opts ...ConfigOption) (*Config, error) {
	cfg := &Config{
		clockSkewLeeway: defaultClockSkew,
		now:             time.Now,
		authorizer:      OwnershipGuard{},
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, NewAuthFailure(KindConfigError, fmt.Sprintf("configuration error: %v", err), err)
		}
	}

	if len(cfg.secret) == 0 || cfg.signingMethod == nil {
		return nil, NewAuthFailure(KindConfigError, "a signing secret must be configured (use WithHS256)", nil)
	}

	return cfg, nil
}

// WithHS256 configures HMAC-SHA256 verification with the given secret
func WithHS256(secret []byte) ConfigOption {
	return func(c *Config) error {
		if len(secret) < MinSecretLength {
			return fmt.Errorf("HS256 secret must be at least %d bytes (256 bits), got %d bytes", MinSecretLength, len(secret))
		}
		c.secret = append([]byte(nil), secret...)
		c.signingMethod = jwt.SigningMethodHS256
		return nil
	}
}

// WithClockSkew sets the tolerance applied to exp validation
func WithClockSkew(skew time.Duration) ConfigOption {
	return func(c *Config) error {
		if skew < 0 || skew > MaxClockSkew {
			return fmt.Errorf("clock skew must be between 0 and %v, got %v", MaxClockSkew, skew)
		}
		c.clockSkewLeeway = skew
		return nil
	}
}

// WithLogger sets a structured logger for security events
func WithLogger(logger *slog.Logger) ConfigOption {
	return func(c *Config) error {
		c.logger = logger
		return nil
	}
}

// WithClock overrides the time source used for expiry checks
func WithClock(now func() time.Time) ConfigOption {
	return func(c *Config) error {
		if now == nil {
			return fmt.Errorf("clock cannot be nil")
		}
		c.now = now
		return nil
	}
}

// WithAuthorizer replaces the default same-user OwnershipGuard
func WithAuthorizer(a Authorizer) ConfigOption {
	return func(c *Config) error {
		if a == nil {
			return fmt.Errorf("authorizer cannot be nil")
		}
		c.authorizer = a
		return nil
	}
}

// WithMetrics enables Prometheus instrumentation
func WithMetrics(m *Metrics) ConfigOption {
	return func(c *Config) error {
		c.metrics = m
		return nil
	}
}

// Algorithm returns the configured signing algorithm name
func (c *Config) Algorithm() string {
	return c.signingMethod.Alg()
}

func (c *Config) ClockSkewLeeway() time.Duration {
	return c.clockSkewLeeway
}

func (c *Config) Logger() *slog.Logger {
	return c.logger
}

package config

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lifelog/authgate/authgate"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. LIFELOG_JWT_SECRET
const EnvPrefix = "LIFELOG"

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

type AppConfig struct {
	Listen     string `mapstructure:"listen"`
	Production bool   `mapstructure:"production"`
	LogLevel   string `mapstructure:"log_level"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ClockSkew  time.Duration `mapstructure:"clock_skew"`
	PolicyFile string        `mapstructure:"policy_file"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	OwnerTTL time.Duration `mapstructure:"owner_ttl"`
}

type MetricsConfig struct {
	Listen string `mapstructure:"listen"`
}

var defaults = map[string]any{
	"app.listen":      ":8080",
	"app.production":  false,
	"app.log_level":   "info",
	"jwt.secret":      "",
	"jwt.clock_skew":  "30s",
	"jwt.policy_file": "",
	"database.dsn":    "",
	"redis.addr":      "",
	"redis.password":  "",
	"redis.db":        0,
	"redis.owner_ttl": "5m",
	"metrics.listen":  "",
}

// Load reads the YAML file at path (optional) and applies LIFELOG_* environment overrides
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	// LIFELOG_DATABASE_DSN overrides database.dsn
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that would otherwise fail later at startup
func (c *Config) Validate() error {
	if c.App.Production && strings.TrimSpace(c.JWT.Secret) == "" {
		return errors.New("jwt.secret must be set in production mode")
	}
	if c.JWT.Secret != "" {
		secret, err := authgate.ParseSecret(c.JWT.Secret)
		if err != nil {
			return fmt.Errorf("jwt.secret: %w", err)
		}
		if len(secret) < authgate.MinSecretLength {
			return fmt.Errorf("jwt.secret must be at least %d bytes, got %d", authgate.MinSecretLength, len(secret))
		}
	}
	if c.JWT.ClockSkew < 0 || c.JWT.ClockSkew > authgate.MaxClockSkew {
		return fmt.Errorf("jwt.clock_skew must be between 0 and %v", authgate.MaxClockSkew)
	}
	if c.Redis.OwnerTTL < 0 {
		return errors.New("redis.owner_ttl must not be negative")
	}
	return nil
}

// SigningSecret returns the verification secret. Outside production an unset
// secret is replaced by a random per-process one, so no token issued elsewhere
// will verify; ephemeral reports that case.
func (c *Config) SigningSecret() (secret []byte, ephemeral bool, err error) {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		if c.App.Production {
			return nil, false, errors.New("jwt.secret must be set in production mode")
		}
		secret = make([]byte, authgate.MinSecretLength)
		if _, err := rand.Read(secret); err != nil {
			return nil, false, fmt.Errorf("generate ephemeral secret: %w", err)
		}
		return secret, true, nil
	}

	secret, err = authgate.ParseSecret(c.JWT.Secret)
	if err != nil {
		return nil, false, err
	}
	return secret, false, nil
}

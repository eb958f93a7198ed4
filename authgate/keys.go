package authgate

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const base64SecretPrefix = "base64:"

// ParseSecret decodes secret material from configuration.
// Supports raw strings and "base64:<std-encoded bytes>" values.
func ParseSecret(raw string) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("secret is empty")
	}

	if !strings.HasPrefix(raw, base64SecretPrefix) {
		return []byte(raw), nil
	}

	encoded := strings.TrimPrefix(raw, base64SecretPrefix)
	if key, err := base64.StdEncoding.DecodeString(encoded); err == nil {
		return key, nil
	}
	if key, err := base64.RawStdEncoding.DecodeString(encoded); err == nil {
		return key, nil
	}
	return nil, fmt.Errorf("failed to decode base64 secret")
}

package authgate

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"
)

// registeredClaims are the payload members mapped onto Claims fields
var registeredClaims = map[string]bool{
	"sub": true, "iss": true, "exp": true, "iat": true, "jti": true,
}

// Decode parses the payload of a compact token without checking its signature.
// The result is for diagnostics and logging only and must never drive an
// authorization decision; use Resolver.Resolve for that.
func Decode(token string) (*Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) < 2 {
		return nil, NewAuthFailure(KindMalformedToken, "token must have at least two segments", nil)
	}

	payload, err := decodeSegment(parts[1])
	if err != nil {
		return nil, NewAuthFailure(KindMalformedToken, "payload is not base64url", err)
	}

	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, NewAuthFailure(KindMalformedToken, "payload is not a JSON object", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, NewAuthFailure(KindMalformedToken, "trailing data after payload", err)
	}

	claims, err := claimsFromMap(raw)
	if err != nil {
		return nil, NewAuthFailure(KindMalformedToken, err.Error(), err)
	}
	if claims.Subject == "" {
		return nil, NewAuthFailure(KindMalformedToken, "sub claim missing", nil)
	}
	return claims, nil
}

// decodeSegment decodes a canonical base64url segment, tolerating trailing padding.
// Non-zero trailing bits are rejected.
func decodeSegment(seg string) ([]byte, error) {
	return base64.RawURLEncoding.Strict().DecodeString(strings.TrimRight(seg, "="))
}

// claimsFromMap converts a decoded payload into Claims. Shared by Decode and
// Verifier so both paths produce the same shape.
func claimsFromMap(raw map[string]any) (*Claims, error) {
	claims := &Claims{
		Custom: make(map[string]any),
	}

	sub, err := stringOrNumber(raw["sub"])
	if err != nil {
		return nil, fmt.Errorf("sub claim: %w", err)
	}
	claims.Subject = sub

	if iss, ok := raw["iss"].(string); ok {
		claims.Issuer = iss
	}
	if jti, ok := raw["jti"].(string); ok {
		claims.JWTID = jti
	}

	if claims.ExpiresAt, err = numericDate(raw["exp"]); err != nil {
		return nil, fmt.Errorf("exp claim: %w", err)
	}
	if claims.IssuedAt, err = numericDate(raw["iat"]); err != nil {
		return nil, fmt.Errorf("iat claim: %w", err)
	}

	for key, value := range raw {
		if !registeredClaims[key] {
			claims.Custom[key] = value
		}
	}
	return claims, nil
}

// stringOrNumber accepts "42" and 42 for the subject; some issuers emit numeric ids
func stringOrNumber(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	case float64:
		if t != math.Trunc(t) {
			return "", fmt.Errorf("non-integer number %v", t)
		}
		return fmt.Sprintf("%.0f", t), nil
	default:
		return "", fmt.Errorf("unexpected type %T", v)
	}
}

// numericDate converts an epoch-seconds claim. Absent claims yield the zero time.
func numericDate(v any) (time.Time, error) {
	var secs float64
	switch t := v.(type) {
	case nil:
		return time.Time{}, nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return time.Time{}, err
		}
		secs = f
	case float64:
		secs = t
	default:
		return time.Time{}, fmt.Errorf("unexpected type %T", v)
	}
	whole, frac := math.Modf(secs)
	return time.Unix(int64(whole), int64(frac*1e9)), nil
}

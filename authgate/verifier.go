package authgate

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier checks token signatures and expiry against the configured secret
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewVerifier builds a verifier from cfg. The parser only accepts the configured
// signing method, so "none" and algorithm-confusion tokens fail as INVALID_SIGNATURE.
// Segments must be canonical base64url: a token has exactly one accepted spelling.
func NewVerifier(cfg *Config) *Verifier {
	return &Verifier{
		secret: cfg.secret,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{cfg.signingMethod.Alg()}),
			jwt.WithLeeway(cfg.clockSkewLeeway),
			jwt.WithTimeFunc(cfg.now),
			jwt.WithExpirationRequired(),
			jwt.WithJSONNumber(),
			jwt.WithStrictDecoding(),
		),
	}
}

// Verify validates tokenString and returns its trusted claims.
// The signature is checked before expiry: a tampered, expired token is INVALID_SIGNATURE.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	token, err := v.parser.Parse(tokenString, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) && signatureSegmentInvalid(tokenString) {
			return nil, NewAuthFailure(KindInvalidSignature, "signature is not canonical base64url", err)
		}
		return nil, classifyParseError(err)
	}
	if !token.Valid {
		return nil, NewAuthFailure(KindInvalidSignature, "token is invalid", nil)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, NewAuthFailure(KindMalformedToken, "invalid claims format", nil)
	}

	claims, err := claimsFromMap(mapClaims)
	if err != nil {
		return nil, NewAuthFailure(KindMalformedToken, err.Error(), err)
	}
	if claims.Subject == "" {
		return nil, NewAuthFailure(KindClaimMissing, "sub claim missing", nil)
	}
	return claims, nil
}

// classifyParseError maps jwt library errors onto failure kinds
func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return NewAuthFailure(KindMalformedToken, "malformed token", err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return NewAuthFailure(KindInvalidSignature, "signature verification failed", err)
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return NewAuthFailure(KindClaimMissing, "exp claim missing", err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return NewAuthFailure(KindExpired, "token has expired", err)
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return NewAuthFailure(KindExpired, "token not valid yet", err)
	default:
		return NewAuthFailure(KindMalformedToken, "invalid token claims", err)
	}
}

// signatureSegmentInvalid reports whether header and payload decode but the
// signature segment does not, i.e. only the signature was altered
func signatureSegmentInvalid(tokenString string) bool {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return false
	}
	if _, err := decodeSegment(parts[0]); err != nil {
		return false
	}
	if _, err := decodeSegment(parts[1]); err != nil {
		return false
	}
	_, err := decodeSegment(parts[2])
	return err != nil
}

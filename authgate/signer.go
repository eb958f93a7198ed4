package authgate

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Signer issues HS256 tokens the Verifier accepts. Used by the token CLI and tests;
// the login service issuing real tokens lives outside this module.
type Signer struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// SignerOption configures a Signer
type SignerOption func(*Signer)

// WithIssuer sets the iss claim on issued tokens
func WithIssuer(issuer string) SignerOption {
	return func(s *Signer) {
		s.issuer = issuer
	}
}

// WithSignerClock overrides the time source for iat/exp
func WithSignerClock(now func() time.Time) SignerOption {
	return func(s *Signer) {
		s.now = now
	}
}

// NewSigner creates a signer for secret
func NewSigner(secret []byte, opts ...SignerOption) (*Signer, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("HS256 secret must be at least %d bytes (256 bits), got %d bytes", MinSecretLength, len(secret))
	}
	s := &Signer{
		secret: append([]byte(nil), secret...),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue signs a token for userID valid for ttl
func (s *Signer) Issue(userID int64, ttl time.Duration) (string, error) {
	return s.IssueWithClaims(userID, ttl, nil)
}

// IssueWithClaims is Issue with extra payload members. Registered claims
// (sub, iss, exp, iat, jti) are always set by the signer and cannot be overridden.
func (s *Signer) IssueWithClaims(userID int64, ttl time.Duration, custom map[string]any) (string, error) {
	now := s.now()
	claims := Claims{
		Subject:   strconv.FormatInt(userID, 10),
		Issuer:    s.issuer,
		ExpiresAt: now.Add(ttl),
		IssuedAt:  now,
		JWTID:     uuid.New().String(),
	}
	for key, value := range custom {
		if registeredClaims[key] {
			continue
		}
		if claims.Custom == nil {
			claims.Custom = make(map[string]any, len(custom))
		}
		claims.Custom[key] = value
	}
	return s.Sign(claims)
}

// Sign encodes and signs claims. Zero times are omitted from the payload.
func (s *Signer) Sign(claims Claims) (string, error) {
	mapClaims := jwt.MapClaims{}
	for key, value := range claims.Custom {
		mapClaims[key] = value
	}
	if claims.Subject != "" {
		mapClaims["sub"] = claims.Subject
	}
	if claims.Issuer != "" {
		mapClaims["iss"] = claims.Issuer
	}
	if claims.JWTID != "" {
		mapClaims["jti"] = claims.JWTID
	}
	if !claims.ExpiresAt.IsZero() {
		mapClaims["exp"] = claims.ExpiresAt.Unix()
	}
	if !claims.IssuedAt.IsZero() {
		mapClaims["iat"] = claims.IssuedAt.Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, mapClaims)
	return token.SignedString(s.secret)
}

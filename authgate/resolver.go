package authgate

import (
	"fmt"
	"strconv"
)

// Resolver turns an Authorization header into a verified Principal.
// It is the only way to obtain a Principal.
type Resolver struct {
	verifier *Verifier
}

// NewResolver creates a resolver backed by v
func NewResolver(v *Verifier) *Resolver {
	return &Resolver{verifier: v}
}

// Resolve authenticates header. Verification failures are returned unchanged.
func (r *Resolver) Resolve(header string) (Principal, error) {
	token, err := tokenFromHeader(header)
	if err != nil {
		return Principal{}, err
	}

	claims, err := r.verifier.Verify(token)
	if err != nil {
		return Principal{}, err
	}

	return principalFromClaims(claims)
}

// principalFromClaims must only be called with claims returned by Verifier.Verify.
// The subject must be the plain decimal spelling of a positive id.
func principalFromClaims(claims *Claims) (Principal, error) {
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return Principal{}, NewAuthFailure(KindClaimMissing, fmt.Sprintf("sub claim %q is not a user id", claims.Subject), err)
	}
	if userID <= 0 || strconv.FormatInt(userID, 10) != claims.Subject {
		return Principal{}, NewAuthFailure(KindClaimMissing, fmt.Sprintf("sub claim %q is not a user id", claims.Subject), nil)
	}
	return Principal{userID: userID}, nil
}

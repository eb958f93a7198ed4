package authgate

import (
	"errors"
	"fmt"
)

// FailureKind identifies why the gate refused a request
type FailureKind string

const (
	KindMissingHeader         FailureKind = "MISSING_HEADER"
	KindMalformedToken        FailureKind = "MALFORMED_TOKEN"
	KindInvalidSignature      FailureKind = "INVALID_SIGNATURE"
	KindExpired               FailureKind = "EXPIRED"
	KindClaimMissing          FailureKind = "CLAIM_MISSING"
	KindForbidden             FailureKind = "FORBIDDEN"
	KindResourceNotFound      FailureKind = "RESOURCE_NOT_FOUND"
	KindDependencyUnavailable FailureKind = "DEPENDENCY_UNAVAILABLE"
	KindConfigError           FailureKind = "CONFIG_ERROR"
)

// ErrOwnerNotFound is returned by an OwnerLookup when the resource does not exist.
// Any other lookup error is reported as KindDependencyUnavailable.
var ErrOwnerNotFound = errors.New("authgate: resource owner not found")

// AuthFailure is the terminal value returned instead of a Principal or an allow decision
type AuthFailure struct {
	Kind     FailureKind
	Message  string
	Internal error
}

// Error implements the error interface
func (e *AuthFailure) Error() string {
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap implements the error unwrapping interface
func (e *AuthFailure) Unwrap() error {
	return e.Internal
}

// IsAuthentication reports whether the failure means the caller must re-authenticate
func (e *AuthFailure) IsAuthentication() bool {
	switch e.Kind {
	case KindMissingHeader, KindMalformedToken, KindInvalidSignature, KindExpired, KindClaimMissing:
		return true
	}
	return false
}

// NewAuthFailure creates a new failure
func NewAuthFailure(kind FailureKind, message string, internal error) *AuthFailure {
	return &AuthFailure{
		Kind:     kind,
		Message:  message,
		Internal: internal,
	}
}

// KindOf extracts the failure kind from err, or "" if err is not an AuthFailure
func KindOf(err error) FailureKind {
	var failure *AuthFailure
	if errors.As(err, &failure) {
		return failure.Kind
	}
	return ""
}

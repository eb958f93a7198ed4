package authgate

import (
	"strconv"
	"time"
)

// Claims is a decoded token payload. Claims returned by Decode are untrusted;
// only Verify returns claims whose signature has been checked.
type Claims struct {
	Subject   string         // User identifier (sub claim)
	Issuer    string         // Token issuer (iss claim)
	ExpiresAt time.Time      // Expiration time (exp claim)
	IssuedAt  time.Time      // Issue time (iat claim), zero if absent
	JWTID     string         // JWT ID (jti claim)
	Custom    map[string]any // Remaining payload members
}

// Principal is a verified identity. It can only be obtained from Resolver.Resolve
// or Gate.Authenticate, never built from Claims directly.
type Principal struct {
	userID int64
}

// UserID returns the authenticated user id
func (p Principal) UserID() int64 {
	return p.userID
}

// IsZero reports whether p is the zero Principal (no identity)
func (p Principal) IsZero() bool {
	return p.userID == 0
}

// String returns the user id in base 10
func (p Principal) String() string {
	return strconv.FormatInt(p.userID, 10)
}

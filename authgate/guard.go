package authgate

import (
	"context"
	"fmt"
	"strconv"
)

// Authorizer decides whether a principal may act on a resource owned by ownerUserID
type Authorizer interface {
	Authorize(ctx context.Context, p Principal, ownerUserID int64) error
}

// OwnershipGuard allows access only when the principal owns the resource.
// There is no role hierarchy or delegation.
type OwnershipGuard struct{}

// Authorize implements Authorizer
func (OwnershipGuard) Authorize(_ context.Context, p Principal, ownerUserID int64) error {
	if p.IsZero() {
		return NewAuthFailure(KindForbidden, "no authenticated principal", nil)
	}
	if p.userID != ownerUserID {
		return NewAuthFailure(KindForbidden, fmt.Sprintf("user %d does not own this resource", p.userID), nil)
	}
	return nil
}

// parseUserScope parses a user id taken from a path or query parameter
func parseUserScope(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, NewAuthFailure(KindForbidden, fmt.Sprintf("invalid user id %q", raw), err)
	}
	return id, nil
}

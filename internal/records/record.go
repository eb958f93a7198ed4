package records

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lifelog/authgate/authgate"
)

// ErrNotFound is returned when no record has the requested id
var ErrNotFound = errors.New("record not found")

// Record is an owned entry of any life-log kind (account, memo, alert, task, event, ...)
type Record struct {
	ID          int64     `json:"id"`
	Kind        string    `json:"kind"`
	OwnerUserID int64     `json:"userId"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// OwnerSource reports the owner of a record
type OwnerSource interface {
	OwnerOf(ctx context.Context, id int64) (int64, error)
}

// Repository persists records
type Repository interface {
	OwnerSource
	Create(ctx context.Context, rec *Record) error
	Get(ctx context.Context, id int64) (*Record, error)
	// Update replaces kind, title and body; the owner never changes
	Update(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, id int64) error
	// ListByOwner returns the owner's records, optionally filtered by kind, oldest first
	ListByOwner(ctx context.Context, ownerUserID int64, kind string) ([]*Record, error)
}

// OwnerLookup adapts an OwnerSource to the gate's lookup contract
func OwnerLookup(src OwnerSource, id int64) authgate.OwnerLookup {
	return func(ctx context.Context) (int64, error) {
		owner, err := src.OwnerOf(ctx, id)
		if errors.Is(err, ErrNotFound) {
			return 0, fmt.Errorf("record %d: %w", id, authgate.ErrOwnerNotFound)
		}
		return owner, err
	}
}

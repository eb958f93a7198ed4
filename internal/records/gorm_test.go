package records

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGormRepositoryWithoutConnection(t *testing.T) {
	ctx := context.Background()
	repo := NewGormRepository(nil)

	_, err := repo.OwnerOf(ctx, 1)
	assert.ErrorIs(t, err, errDBUnavailable)
	assert.ErrorIs(t, repo.Create(ctx, &Record{Kind: "memo"}), errDBUnavailable)
	assert.ErrorIs(t, repo.Migrate(ctx), errDBUnavailable)

	// an unavailable database must surface as an outage, never as a missing owner
	_, err = OwnerLookup(repo, 1)(ctx)
	assert.ErrorIs(t, err, errDBUnavailable)
}

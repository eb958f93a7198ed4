package records

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const ownerKeyPrefix = "lifelog:records:owner:"

// CachedRepository puts a redis read-through cache of owner ids in front of a
// Repository. Owners never change, so only deletes invalidate entries. Redis
// errors fall through to the repository.
//
// A lookup racing a Delete may write the owner back after invalidation. That
// stale entry only ever names the deleted record's real owner, which is safe
// as long as record ids are never reused.
type CachedRepository struct {
	Repository
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedRepository(repo Repository, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedRepository {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CachedRepository{
		Repository: repo,
		client:     client,
		ttl:        ttl,
		logger:     logger,
	}
}

func ownerKey(id int64) string {
	return ownerKeyPrefix + strconv.FormatInt(id, 10)
}

func (c *CachedRepository) OwnerOf(ctx context.Context, id int64) (int64, error) {
	cached, err := c.client.Get(ctx, ownerKey(id)).Int64()
	switch {
	case err == nil:
		return cached, nil
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("owner cache read failed", "record_id", id, "error", err)
	}

	owner, err := c.Repository.OwnerOf(ctx, id)
	if err != nil {
		return 0, err
	}
	if err := c.client.Set(ctx, ownerKey(id), owner, c.ttl).Err(); err != nil {
		c.logger.Warn("owner cache write failed", "record_id", id, "error", err)
	}
	return owner, nil
}

func (c *CachedRepository) Delete(ctx context.Context, id int64) error {
	if err := c.Repository.Delete(ctx, id); err != nil {
		return err
	}
	if err := c.client.Del(ctx, ownerKey(id)).Err(); err != nil {
		c.logger.Warn("owner cache invalidation failed", "record_id", id, "error", err)
	}
	return nil
}

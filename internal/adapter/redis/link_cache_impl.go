package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const gameLogPrefix = "gamelog:"

// LinkCacheImpl caches the box-score links of a team's game-log page.
type LinkCacheImpl struct {
	client *redis.Client
}

// NewLinkCache creates a new instance of LinkCacheImpl.
func NewLinkCache(client *redis.Client) *LinkCacheImpl {
	return &LinkCacheImpl{client: client}
}

func (c *LinkCacheImpl) key(team string, season int) string {
	return fmt.Sprintf("%s%s:%d", gameLogPrefix, team, season)
}

// Get returns the cached links. A missing key is a miss, not an error.
func (c *LinkCacheImpl) Get(ctx context.Context, team string, season int) ([]string, bool, error) {
	raw, err := c.client.Get(ctx, c.key(team, season)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var links []string
	if err := json.Unmarshal(raw, &links); err != nil {
		return nil, false, fmt.Errorf("decode cached links: %w", err)
	}
	return links, true, nil
}

// Put stores links with the given expiry. A zero ttl keeps them forever.
func (c *LinkCacheImpl) Put(ctx context.Context, team string, season int, links []string, ttl time.Duration) error {
	if links == nil {
		links = []string{}
	}
	raw, err := json.Marshal(links)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(team, season), raw, ttl).Err()
}

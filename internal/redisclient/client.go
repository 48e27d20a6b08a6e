package redisclient

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// SetSession stores a session token mapped to a user ID with a TTL
func (c *Client) SetSession(ctx context.Context, token string, userID int64, ttl time.Duration) error {
	return c.rdb.Set(ctx, fmt.Sprintf("session:%s", token), userID, ttl).Err()
}

// GetSession resolves a session token to a user ID. Returns (0, nil) when
// the token is unknown or expired.
func (c *Client) GetSession(ctx context.Context, token string) (int64, error) {
	val, err := c.rdb.Get(ctx, fmt.Sprintf("session:%s", token)).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(val, 10, 64)
}

// DeleteSession invalidates a session token
func (c *Client) DeleteSession(ctx context.Context, token string) error {
	return c.rdb.Del(ctx, fmt.Sprintf("session:%s", token)).Err()
}

// IncrCardViews increments the live view counter for a card and returns the
// new value. The counter is flushed to the database periodically.
func (c *Client) IncrCardViews(ctx context.Context, cardID int64) (int64, error) {
	return c.rdb.Incr(ctx, fmt.Sprintf("card:views:%d", cardID)).Result()
}

// DrainCardViews atomically reads and resets a card's pending view counter
func (c *Client) DrainCardViews(ctx context.Context, cardID int64) (int64, error) {
	val, err := c.rdb.GetDel(ctx, fmt.Sprintf("card:views:%d", cardID)).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(val, 10, 64)
}

// PendingViewCards lists card IDs with undrained view counters
func (c *Client) PendingViewCards(ctx context.Context) ([]int64, error) {
	keys, err := c.rdb.Keys(ctx, "card:views:*").Result()
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(keys))
	for _, key := range keys {
		var id int64
		if _, err := fmt.Sscanf(key, "card:views:%d", &id); err == nil {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// IncrStat increments a dashboard counter maintained by the event worker
func (c *Client) IncrStat(ctx context.Context, name string) error {
	return c.rdb.Incr(ctx, fmt.Sprintf("stats:%s", name)).Err()
}

// GetStat reads a dashboard counter, 0 when absent
func (c *Client) GetStat(ctx context.Context, name string) (int64, error) {
	val, err := c.rdb.Get(ctx, fmt.Sprintf("stats:%s", name)).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(val, 10, 64)
}

// ClaimEvent marks an event ID as seen with a TTL. Returns false when the
// event was already claimed, letting the worker skip redeliveries cheaply.
func (c *Client) ClaimEvent(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, fmt.Sprintf("event:%s", eventID), "1", ttl).Result()
}

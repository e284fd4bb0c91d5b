// Package cache keeps a short-lived redis copy of the user list so the
// dashboard's list fetches do not hit mongo on every poll. Every mutation
// invalidates it; a cold or unreachable redis just means a store read.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/geocoder89/vidtrack/internal/domain/user"
	"github.com/redis/go-redis/v9"
)

const usersListKey = "vidtrack:users:list"

type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(cfg Config) *Client {
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Second
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	return &Client{rdb: rdb, ttl: cfg.TTL}
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

// GetUserList returns the cached list, or ok=false on miss, decode
// failure, or redis being unreachable.
func (c *Client) GetUserList(ctx context.Context) ([]user.User, bool) {
	raw, err := c.rdb.Get(ctx, usersListKey).Bytes()

	if err != nil {
		return nil, false
	}

	var users []user.User

	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, false
	}

	return users, true
}

func (c *Client) SetUserList(ctx context.Context, users []user.User) {
	raw, err := json.Marshal(users)

	if err != nil {
		return
	}

	// best effort; a failed write only costs the next read a store trip
	_ = c.rdb.Set(ctx, usersListKey, raw, c.ttl).Err()
}

func (c *Client) InvalidateUserList(ctx context.Context) {
	_ = c.rdb.Del(ctx, usersListKey).Err()
}

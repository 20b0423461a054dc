// Package redis implements searchkit.SearchClient on top of a RediSearch
// deployment via rueidis. Queries are served by FT.SEARCH, facet counts and
// facet-value suggestions by FT.AGGREGATE.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/searchkit"
)

// Compile-time check: Client implements searchkit.SearchClient.
var _ searchkit.SearchClient = (*Client)(nil)

// Config holds connection parameters for a Redis search backend.
type Config struct {
	Addrs    []string
	Username string
	Password string
	DB       int
}

// Client talks to RediSearch via rueidis for Redis 8+.
type Client struct {
	client rueidis.Client
}

// NewClient creates a search client via rueidis.
func NewClient(cfg Config) (*Client, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
		AlwaysRESP2:  true, // FT.SEARCH result parsing expects RESP2 array format
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Client{client: client}, nil
}

// Ping checks connectivity.
func (c *Client) Ping(ctx context.Context) error {
	cmd := c.client.B().Ping().Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close shuts down the client.
func (c *Client) Close() {
	c.client.Close()
}

// WaitForReady polls Ping until the backend responds or timeout expires.
func (c *Client) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for search backend: %w", ctx.Err())
		case <-ticker.C:
			if err := c.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

func (c *Client) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return c.client.Do(ctx, cmd)
}

func (c *Client) b() rueidis.Builder {
	return c.client.B()
}

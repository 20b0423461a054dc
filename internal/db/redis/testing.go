package redis

import "github.com/redis/rueidis"

// NewClientForTest creates a Client with the provided rueidis client (test-only).
func NewClientForTest(c rueidis.Client) *Client {
	return &Client{client: c}
}

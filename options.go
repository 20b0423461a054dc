package searchkit

import (
	"time"

	"go.uber.org/zap"
)

// Option configures a Manager.
type Option func(*managerConfig)

type managerConfig struct {
	index            string
	client           SearchClient
	base             Parameters
	highlightPreTag  string
	highlightPostTag string
	logger           *zap.Logger
	debounce         time.Duration
}

// WithIndex sets the primary logical index name. Required.
func WithIndex(name string) Option {
	return func(c *managerConfig) {
		c.index = name
	}
}

// WithSearchClient sets the search capability requests are dispatched
// through. Required.
func WithSearchClient(client SearchClient) Option {
	return func(c *managerConfig) {
		c.client = client
	}
}

// WithBaseParameters sets the floor parameter snapshot widgets fold on top
// of. The Index field is always overridden by WithIndex.
func WithBaseParameters(p Parameters) Option {
	return func(c *managerConfig) {
		c.base = p
	}
}

// WithHighlightTags sets the protocol-level highlighting tags.
func WithHighlightTags(pre, post string) Option {
	return func(c *managerConfig) {
		c.highlightPreTag = pre
		c.highlightPostTag = post
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *managerConfig) {
		c.logger = logger
	}
}

// WithDebounce sets the coalescing window between a widget change and the
// search cycle it triggers.
func WithDebounce(d time.Duration) Option {
	return func(c *managerConfig) {
		c.debounce = d
	}
}

package table

import (
	"context"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/entable"
)

// cacheGet decodes the cached value of key into v and reports whether it
// was found. Cache failures are logged and treated as misses.
func (c *Client) cacheGet(ctx context.Context, key string, v any) bool {
	if c.cache == nil {
		return false
	}
	data, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.WarnContext(ctx, "cache get failed", "key", key, "error", err)
		return false
	}
	if data == nil {
		return false
	}
	if err := msgpack.Unmarshal(data, v); err != nil {
		c.logger.WarnContext(ctx, "cache decode failed", "key", key, "error", err)
		return false
	}
	return true
}

// cacheSet stores v under key.
func (c *Client) cacheSet(ctx context.Context, key string, v any) {
	if c.cache == nil {
		return
	}
	data, err := msgpack.Marshal(v)
	if err != nil {
		c.logger.WarnContext(ctx, "cache encode failed", "key", key, "error", err)
		return
	}
	if err := c.cache.Set(ctx, key, data, c.cacheTTL); err != nil {
		c.logger.WarnContext(ctx, "cache set failed", "key", key, "error", err)
	}
}

// invalidate drops every cached result of table.
func (c *Client) invalidate(ctx context.Context, table string) {
	if c.cache == nil {
		return
	}
	if err := c.cache.DeletePrefix(ctx, entable.TablePrefix(table)); err != nil {
		c.logger.WarnContext(ctx, "cache invalidation failed", "table", table, "error", err)
	}
}

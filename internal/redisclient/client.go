package redisclient

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const clientName = "personia-hub"

// Client wraps a Redis client with OpenTelemetry tracing
type Client struct {
	cmdable redis.Cmdable
}

// NewClient creates a new traced Redis client for a single Redis instance
func NewClient(client *redis.Client) *Client {
	return &Client{cmdable: client}
}

// NewFromCmdable wraps any redis.Cmdable (cluster clients, pipelines, test doubles)
func NewFromCmdable(cmdable redis.Cmdable) *Client {
	return &Client{cmdable: cmdable}
}

// startSpan opens a redis span and returns a finisher that records the
// duration and the outcome of cmd.
func startSpan(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(redis.Cmder)) {
	start := time.Now()
	attrs = append(attrs,
		attribute.String("redis.operation", op),
		attribute.String("redis.client", clientName),
	)
	ctx, span := otel.Tracer("redis").Start(ctx, "redis."+op, trace.WithAttributes(attrs...))

	return ctx, func(cmd redis.Cmder) {
		duration := time.Since(start)
		span.SetAttributes(attribute.Int64("redis.duration_ms", duration.Milliseconds()))

		// redis.Nil is a cache miss, not a failure
		if err := cmd.Err(); err != nil && !errors.Is(err, redis.Nil) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "success")
		}
		span.End()
	}
}

// Get wraps Redis Get with tracing
func (c *Client) Get(ctx context.Context, key string) *redis.StringCmd {
	ctx, finish := startSpan(ctx, "get", attribute.String("redis.key", key))
	cmd := c.cmdable.Get(ctx, key)
	finish(cmd)
	return cmd
}

// Set wraps Redis Set with tracing
func (c *Client) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	ctx, finish := startSpan(ctx, "set",
		attribute.String("redis.key", key),
		attribute.String("redis.expiration", expiration.String()),
	)
	cmd := c.cmdable.Set(ctx, key, value, expiration)
	finish(cmd)
	return cmd
}

// Del wraps Redis Del with tracing
func (c *Client) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	ctx, finish := startSpan(ctx, "del",
		attribute.StringSlice("redis.keys", keys),
		attribute.Int("redis.key_count", len(keys)),
	)
	cmd := c.cmdable.Del(ctx, keys...)
	finish(cmd)
	return cmd
}

// Exists wraps Redis Exists with tracing
func (c *Client) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	ctx, finish := startSpan(ctx, "exists", attribute.Int("redis.key_count", len(keys)))
	cmd := c.cmdable.Exists(ctx, keys...)
	finish(cmd)
	return cmd
}

// TTL wraps Redis TTL with tracing
func (c *Client) TTL(ctx context.Context, key string) *redis.DurationCmd {
	ctx, finish := startSpan(ctx, "ttl", attribute.String("redis.key", key))
	cmd := c.cmdable.TTL(ctx, key)
	finish(cmd)
	return cmd
}

// Keys wraps Redis Keys with tracing. Only used by tests and maintenance
// tooling; request paths address keys directly.
func (c *Client) Keys(ctx context.Context, pattern string) *redis.StringSliceCmd {
	ctx, finish := startSpan(ctx, "keys", attribute.String("redis.pattern", pattern))
	cmd := c.cmdable.Keys(ctx, pattern)
	finish(cmd)
	return cmd
}

// Ping wraps Redis Ping with tracing
func (c *Client) Ping(ctx context.Context) *redis.StatusCmd {
	ctx, finish := startSpan(ctx, "ping")
	cmd := c.cmdable.Ping(ctx)
	finish(cmd)
	return cmd
}

// PoolStats returns connection pool statistics when the underlying client
// exposes them
func (c *Client) PoolStats() *redis.PoolStats {
	if pooled, ok := c.cmdable.(interface{ PoolStats() *redis.PoolStats }); ok {
		return pooled.PoolStats()
	}
	return nil
}

// Close closes the underlying client when it supports it
func (c *Client) Close() error {
	if closer, ok := c.cmdable.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

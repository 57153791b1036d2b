package valkey

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	valkeylib "github.com/valkey-io/valkey-go"
)

// SetJSON stores a JSON-encoded value under a prefixed key with a TTL.
func (c *Client) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value: %w", err)
	}

	cmd := c.inner.B().Set().Key(c.Key(key)).Value(string(data)).
		Ex(ttl).Build()
	if err := c.inner.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to set cache key %s: %w", key, err)
	}
	return nil
}

// GetJSON loads a JSON-encoded value. Returns found=false on a cache miss.
func (c *Client) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	resp := c.inner.Do(ctx, c.inner.B().Get().Key(c.Key(key)).Build())
	if err := resp.Error(); err != nil {
		if IsNil(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache key %s: %w", key, err)
	}

	data, err := resp.AsBytes()
	if err != nil {
		return false, fmt.Errorf("failed to read cache key %s: %w", key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to decode cache key %s: %w", key, err)
	}
	return true, nil
}

// Publish sends a payload on a prefixed channel, for fanning events out to
// other server instances.
func (c *Client) Publish(ctx context.Context, channel string, payload []byte) error {
	cmd := c.inner.B().Publish().Channel(c.Key(channel)).Message(string(payload)).Build()
	return c.inner.Do(ctx, cmd).Error()
}

// Subscribe listens on a prefixed channel until ctx is cancelled, invoking
// handler for every message. Blocks; run it in its own goroutine.
func (c *Client) Subscribe(ctx context.Context, channel string, handler func(payload []byte)) error {
	return c.inner.Receive(ctx, c.inner.B().Subscribe().Channel(c.Key(channel)).Build(),
		func(msg valkeylib.PubSubMessage) {
			handler([]byte(msg.Message))
		})
}

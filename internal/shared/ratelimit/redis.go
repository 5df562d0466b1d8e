package ratelimit

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// fixedWindowScript increments the window counter and starts its expiry on first hit.
var fixedWindowScript = redis.NewScript(`
local current = redis.call('INCR', KEYS[1])
if current == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return current
`)

// Redis shares the fixed window across API replicas.
type Redis struct {
	client redis.Scripter
	cfg    Config
	prefix string
}

// NewRedis builds a limiter backed by client. Keys are namespaced with prefix.
func NewRedis(client redis.Scripter, cfg Config, prefix string) (*Redis, error) {
	if client == nil {
		return nil, errors.New("redis client is nil")
	}
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &Redis{client: client, cfg: cfg.normalized(), prefix: prefix}, nil
}

// Allow counts the request in redis and reports whether it is within the limit.
func (r *Redis) Allow(ctx context.Context, key string) (bool, error) {
	if r.cfg.Limit <= 0 {
		return true, nil
	}
	redisKey := fmt.Sprintf("%s:%s", r.prefix, key)
	count, err := fixedWindowScript.Run(ctx, r.client, []string{redisKey}, r.cfg.Window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("rate limit check for %q: %w", key, err)
	}
	return count <= int64(r.cfg.Limit), nil
}

var _ Limiter = (*Redis)(nil)

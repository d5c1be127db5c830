package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "scout:cache:"

// Redis is a Cache shared by every process pointed at the same Redis
// database. Values expire through Redis TTLs; a sorted set of expiry times
// bounds the number of live entries.
type Redis struct {
	client   *redis.Client
	now      func() time.Time
	prefix   string
	index    string
	capacity int
	ttl      time.Duration
}

func NewRedis(client *redis.Client, cfg Config) *Redis {
	cfg = cfg.withDefaults()
	return &Redis{
		client:   client,
		now:      time.Now,
		prefix:   defaultRedisPrefix,
		index:    defaultRedisPrefix + "expiry",
		capacity: cfg.Capacity,
		ttl:      cfg.TTL,
	}
}

func (r *Redis) Get(ctx context.Context, key string) (Value, bool, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Value{}, false, nil
		}
		return Value{}, false, fmt.Errorf("redis cache get: %w", err)
	}

	var v Value
	if err := json.Unmarshal(data, &v); err != nil {
		return Value{}, false, nil //nolint:nilerr // undecodable entry is a miss
	}
	return v, true, nil
}

func (r *Redis) Put(ctx context.Context, key string, value Value) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache value: %w", err)
	}

	now := r.now()
	expiresAt := now.Add(r.ttl)
	err = putScript.Run(ctx, r.client,
		[]string{r.index, r.prefix + key},
		now.UnixMilli(),
		expiresAt.UnixMilli(),
		r.capacity,
		r.ttl.Milliseconds(),
		key,
		data,
		r.prefix,
	).Err()
	if err != nil {
		return fmt.Errorf("redis cache put: %w", err)
	}
	return nil
}

// putScript prunes expired index members, evicts the soonest-expiring
// entries until a new key fits, then stores the value. It runs as one
// script so concurrent writers never push the index past capacity.
// Overwriting an existing key never evicts.
//
// KEYS: index, value key. ARGV: now ms, expiry ms, capacity, ttl ms,
// member, data, value key prefix.
var putScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
if not redis.call('ZSCORE', KEYS[1], ARGV[5]) then
	local n = redis.call('ZCARD', KEYS[1])
	local capacity = tonumber(ARGV[3])
	while n >= capacity do
		local popped = redis.call('ZPOPMIN', KEYS[1], 1)
		if #popped == 0 then
			break
		end
		redis.call('DEL', ARGV[7] .. popped[1])
		n = n - 1
	end
end
redis.call('SET', KEYS[2], ARGV[6], 'PX', ARGV[4])
redis.call('ZADD', KEYS[1], ARGV[2], ARGV[5])
return 1
`)

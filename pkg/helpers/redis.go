package helpers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient initializes a redis client and checks it answers PING.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(c).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}

// setUnlessNewerScript stores ARGV[1] unless the current value is a JSON
// document whose "version" is greater than ARGV[2].
var setUnlessNewerScript = redis.NewScript(`
local cur = redis.call("GET", KEYS[1])
if cur then
  local ok, doc = pcall(cjson.decode, cur)
  if ok and type(doc) == "table" then
    local v = tonumber(doc.version)
    if v and v > tonumber(ARGV[2]) then
      return 0
    end
  end
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[3])
return 1
`)

// RedisSetJSONUnlessNewer writes value under key unless the stored document
// carries a higher "version". It reports whether the write happened.
func RedisSetJSONUnlessNewer(ctx context.Context, rdb redis.Scripter, key string, value any, version int64, ttl time.Duration) (bool, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	ms := ttl.Milliseconds()
	if ms < 1 {
		ms = 1
	}
	n, err := setUnlessNewerScript.Run(ctx, rdb, []string{key}, b, version, ms).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// RedisGetJSON reports false with a nil error when key does not exist.
func RedisGetJSON[T any](ctx context.Context, rdb redis.Cmdable, key string, dest *T) (bool, error) {
	res, err := rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(res, dest); err != nil {
		return false, err
	}
	return true, nil
}

func RedisDel(ctx context.Context, rdb redis.Cmdable, key string) error {
	return rdb.Del(ctx, key).Err()
}

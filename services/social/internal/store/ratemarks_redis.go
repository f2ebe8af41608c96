package store

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRateMarkStore keeps marks as keys that expire after their window, so
// key presence means "inside the window". SET NX makes check-and-write a
// single server-side step.
type RedisRateMarkStore struct {
	Client *redis.Client
	Prefix string
}

func NewRedisRateMarkStore(url string) (*RedisRateMarkStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &RedisRateMarkStore{Client: redis.NewClient(opt), Prefix: "social:ratelimit:"}, nil
}

func (s *RedisRateMarkStore) Mark(ctx context.Context, userID, action string, now time.Time, window time.Duration) (bool, error) {
	if window <= 0 {
		return true, nil
	}
	ok, err := s.Client.SetNX(ctx, s.Prefix+rateKey(userID, action), strconv.FormatInt(now.UnixMilli(), 10), window).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

// releaseScript deletes the key only while it still holds the caller's mark.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

func (s *RedisRateMarkStore) Release(ctx context.Context, userID, action string, at time.Time) error {
	return releaseScript.Run(ctx, s.Client,
		[]string{s.Prefix + rateKey(userID, action)},
		strconv.FormatInt(at.UnixMilli(), 10)).Err()
}

func (s *RedisRateMarkStore) Ping(ctx context.Context) error {
	return s.Client.Ping(ctx).Err()
}

func (s *RedisRateMarkStore) Close() error {
	return s.Client.Close()
}

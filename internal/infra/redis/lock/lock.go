package infra_redis_lock

import (
	"context"
	"fmt"
	"time"

	"github.com/aakumar2208/tamil-movies-scraper/internal/model"
	"github.com/go-redis/redis"
	"github.com/google/uuid"
)

// releaseScript deletes the key only while it still holds our token.
const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`

type client interface {
	SetNX(key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(script string, keys []string, args ...interface{}) *redis.Cmd
}

type Driver struct {
	client client
	prefix string
	ttl    time.Duration
}

func New(
	client client,
	prefix string,
	ttl time.Duration,
) *Driver {
	return &Driver{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

type Lock struct {
	d     *Driver
	key   string
	token string
}

// Acquire takes the lock for key or fails with model.ErrLocked when another
// worker holds it. The lock expires after the driver TTL.
func (d *Driver) Acquire(ctx context.Context, key string) (*Lock, error) {
	k := d.prefix + key
	token := uuid.NewString()

	ok, err := d.client.SetNX(k, token, d.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", k, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrLocked, k)
	}
	return &Lock{d: d, key: k, token: token}, nil
}

func (l *Lock) Release(ctx context.Context) error {
	err := l.d.client.Eval(releaseScript, []string{l.key}, l.token).Err()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("failed to release lock %s: %w", l.key, err)
	}
	return nil
}

// Lock acquires key and hands back its release function.
func (d *Driver) Lock(ctx context.Context, key string) (func(context.Context) error, error) {
	l, err := d.Acquire(ctx, key)
	if err != nil {
		return nil, err
	}
	return l.Release, nil
}

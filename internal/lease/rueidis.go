package lease

import (
	"context"
	"fmt"
	"time"

	"github.com/go-authgate/mailbridge/internal/core"

	"github.com/redis/rueidis"
)

// Compile-time interface check.
var _ core.LeaseStore = (*RueidisStore)(nil)

// releaseScript deletes the key only when its value still matches the caller
var releaseScript = rueidis.NewLuaScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RueidisStore implements LeaseStore on Redis via the rueidis client.
// Suitable for multi-instance deployments where sync runs must not overlap across replicas.
type RueidisStore struct {
	client    rueidis.Client
	keyPrefix string
}

// NewRueidisStore connects to Redis and verifies the connection.
func NewRueidisStore(
	ctx context.Context,
	addr, password string,
	db int,
	keyPrefix string,
) (*RueidisStore, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{addr},
		Password:     password,
		SelectDB:     db,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &RueidisStore{
		client:    client,
		keyPrefix: keyPrefix,
	}, nil
}

// Acquire issues SET NX PX; a nil reply means another owner holds the key.
func (r *RueidisStore) Acquire(
	ctx context.Context,
	key, owner string,
	ttl time.Duration,
) (bool, error) {
	cmd := r.client.B().Set().
		Key(r.keyPrefix + key).
		Value(owner).
		Nx().
		Px(ttl).
		Build()

	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		if rueidis.IsRedisNil(err) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrLeaseUnavailable, err)
	}
	return true, nil
}

// Release runs a compare-and-delete so an expired lease taken over by someone else is left alone.
func (r *RueidisStore) Release(ctx context.Context, key, owner string) error {
	resp := releaseScript.Exec(ctx, r.client, []string{r.keyPrefix + key}, []string{owner})
	if err := resp.Error(); err != nil && !rueidis.IsRedisNil(err) {
		return fmt.Errorf("%w: %v", ErrLeaseUnavailable, err)
	}
	return nil
}

// Close closes the Redis connection.
func (r *RueidisStore) Close() error {
	r.client.Close()
	return nil
}

// Health checks if Redis is reachable.
func (r *RueidisStore) Health(ctx context.Context) error {
	return r.client.Do(ctx, r.client.B().Ping().Build()).Error()
}

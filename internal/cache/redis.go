package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/evocms-community/evo-authz/internal/config"
	"github.com/evocms-community/evo-authz/internal/permission"
)

const pingTimeout = 5 * time.Second

// Redis shares cached role sets between service instances.
//
// Keys carry a generation number read from <prefix>:version. Purge bumps the
// generation, so all instances stop seeing old entries at once and the old keys
// expire on their own.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis connects to the configured server and pings it.
func NewRedis(cfg config.Cache) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisWithClient(client, cfg.Redis.Prefix, cfg.TTL), nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client, prefix string, ttl time.Duration) *Redis {
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

func (r *Redis) versionKey() string {
	return r.prefix + ":version"
}

func (r *Redis) version(ctx context.Context) (int64, error) {
	v, err := r.client.Get(ctx, r.versionKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}

	if err != nil {
		return 0, fmt.Errorf("failed to read cache version: %w", err)
	}

	return v, nil
}

func (r *Redis) roleKey(ctx context.Context, roleID uint) (string, error) {
	v, err := r.version(ctx)
	if err != nil {
		return "", err
	}

	return r.prefix + ":v" + strconv.FormatInt(v, 10) + ":role:" + strconv.FormatUint(uint64(roleID), 10), nil
}

// Get implements Store.
func (r *Redis) Get(ctx context.Context, roleID uint) (permission.Set, error) {
	key, err := r.roleKey(ctx, roleID)
	if err != nil {
		return nil, err
	}

	raw, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read role %d from cache: %w", roleID, err)
	}

	var keys []string
	if err = json.Unmarshal(raw, &keys); err != nil {
		return nil, fmt.Errorf("failed to decode role %d from cache: %w", roleID, err)
	}

	return permission.ParseKeys(keys), nil
}

// Set implements Store.
func (r *Redis) Set(ctx context.Context, roleID uint, perms permission.Set) error {
	key, err := r.roleKey(ctx, roleID)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(perms.Strings())
	if err != nil {
		return fmt.Errorf("failed to encode role %d: %w", roleID, err)
	}

	if err = r.client.Set(ctx, key, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write role %d to cache: %w", roleID, err)
	}

	return nil
}

// Invalidate implements Store.
func (r *Redis) Invalidate(ctx context.Context, roleID uint) error {
	key, err := r.roleKey(ctx, roleID)
	if err != nil {
		return err
	}

	if err = r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate role %d: %w", roleID, err)
	}

	return nil
}

// Purge implements Store.
func (r *Redis) Purge(ctx context.Context) error {
	if err := r.client.Incr(ctx, r.versionKey()).Err(); err != nil {
		return fmt.Errorf("failed to purge cache: %w", err)
	}

	return nil
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close() //nolint:wrapcheck
}

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evocms-community/evo-authz/internal/config"
	"github.com/evocms-community/evo-authz/internal/permission"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	t.Cleanup(func() { _ = client.Close() })

	return NewRedisWithClient(client, "test", time.Minute), mr
}

// storeContract runs the behavior every backend must share.
func storeContract(t *testing.T, s Store) {
	t.Helper()

	ctx := context.Background()

	_, err := s.Get(ctx, 2)
	require.ErrorIs(t, err, ErrMiss)

	editor := permission.NewSet(permission.EditTemplate, permission.EditSnippet)
	require.NoError(t, s.Set(ctx, 2, editor))
	require.NoError(t, s.Set(ctx, 3, permission.NewSet()))

	got, err := s.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, editor.Keys(), got.Keys())

	empty, err := s.Get(ctx, 3)
	require.NoError(t, err, "an empty role is still a cached value")
	assert.Zero(t, empty.Len())

	require.NoError(t, s.Invalidate(ctx, 2))

	_, err = s.Get(ctx, 2)
	require.ErrorIs(t, err, ErrMiss)

	_, err = s.Get(ctx, 3)
	require.NoError(t, err, "invalidate touches one role only")

	require.NoError(t, s.Purge(ctx))

	_, err = s.Get(ctx, 3)
	require.ErrorIs(t, err, ErrMiss)
}

func TestMemory(t *testing.T) {
	storeContract(t, NewMemory(8, time.Minute))
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0, time.Minute)

	require.NoError(t, m.Set(ctx, 1, permission.NewSet(permission.Home)))

	got, err := m.Get(ctx, 1)
	require.NoError(t, err)

	got[permission.Settings] = struct{}{}

	again, err := m.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, again.Has(permission.Settings))
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(8, 20*time.Millisecond)

	require.NoError(t, m.Set(ctx, 1, permission.NewSet(permission.Home)))

	assert.Eventually(t, func() bool {
		_, err := m.Get(ctx, 1)
		return err != nil
	}, time.Second, 10*time.Millisecond)
}

func TestRedis(t *testing.T) {
	r, _ := newTestRedis(t)
	storeContract(t, r)
}

func TestRedisExpiry(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t)

	require.NoError(t, r.Set(ctx, 1, permission.NewSet(permission.Home)))

	mr.FastForward(2 * time.Minute)

	_, err := r.Get(ctx, 1)
	require.ErrorIs(t, err, ErrMiss)
}

func TestRedisPurgeIsShared(t *testing.T) {
	ctx := context.Background()

	mr := miniredis.RunT(t)
	a := NewRedisWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "shared", time.Minute)
	b := NewRedisWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "shared", time.Minute)

	require.NoError(t, a.Set(ctx, 1, permission.NewSet(permission.Home)))

	_, err := b.Get(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, b.Purge(ctx))

	_, err = a.Get(ctx, 1)
	require.ErrorIs(t, err, ErrMiss)
}

func TestRedisServerDown(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t)

	mr.Close()

	_, err := r.Get(ctx, 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMiss)
}

func TestNoop(t *testing.T) {
	ctx := context.Background()
	n := Noop{}

	require.NoError(t, n.Set(ctx, 1, permission.NewSet(permission.Home)))

	_, err := n.Get(ctx, 1)
	require.ErrorIs(t, err, ErrMiss)
}

func TestNew(t *testing.T) {
	mr := miniredis.RunT(t)

	testCases := []struct {
		name        string
		cfg         config.Cache
		expected    Store
		expectedErr error
	}{
		{name: "memory", cfg: config.Cache{Backend: config.CacheMemory, Size: 4, TTL: time.Minute}, expected: &Memory{}},
		{name: "default", cfg: config.Cache{}, expected: &Memory{}},
		{name: "none", cfg: config.Cache{Backend: config.CacheNone}, expected: Noop{}},
		{
			name:     "redis",
			cfg:      config.Cache{Backend: config.CacheRedis, TTL: time.Minute, Redis: config.Redis{Addr: mr.Addr(), Prefix: "x"}},
			expected: &Redis{},
		},
		{name: "unknown", cfg: config.Cache{Backend: "memcached"}, expectedErr: config.ErrUnknownCacheBackend},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := New(tc.cfg)
			if tc.expectedErr != nil {
				require.ErrorIs(t, err, tc.expectedErr)
				return
			}

			require.NoError(t, err)
			assert.IsType(t, tc.expected, s)
		})
	}
}

func TestNewRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedis(config.Cache{Redis: config.Redis{Addr: addr}})
	require.Error(t, err)
}

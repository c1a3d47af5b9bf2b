// Package cache stores role permission sets between requests.
//
// Entries are keyed by role id. Writers to roles or role permissions call
// Invalidate for the touched role, writers to the permission catalog call Purge.
package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/evocms-community/evo-authz/internal/config"
	"github.com/evocms-community/evo-authz/internal/permission"
)

// ErrMiss is returned by Get when the role is not cached.
var ErrMiss = errors.New("cache miss")

// Store caches the permission set of a role.
type Store interface {
	// Get returns the cached set or ErrMiss.
	Get(ctx context.Context, roleID uint) (permission.Set, error)
	// Set stores the set of roleID.
	Set(ctx context.Context, roleID uint, perms permission.Set) error
	// Invalidate drops the entry of roleID.
	Invalidate(ctx context.Context, roleID uint) error
	// Purge drops every entry.
	Purge(ctx context.Context) error
}

// New creates the backend selected by cfg.Backend.
func New(cfg config.Cache) (Store, error) {
	switch cfg.Backend {
	case config.CacheNone:
		return Noop{}, nil
	case config.CacheRedis:
		return NewRedis(cfg)
	case config.CacheMemory, "":
		return NewMemory(cfg.Size, cfg.TTL), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownCacheBackend, cfg.Backend)
	}
}

// Noop never caches anything.
type Noop struct{}

// Get implements Store.
func (Noop) Get(context.Context, uint) (permission.Set, error) { return nil, ErrMiss }

// Set implements Store.
func (Noop) Set(context.Context, uint, permission.Set) error { return nil }

// Invalidate implements Store.
func (Noop) Invalidate(context.Context, uint) error { return nil }

// Purge implements Store.
func (Noop) Purge(context.Context) error { return nil }

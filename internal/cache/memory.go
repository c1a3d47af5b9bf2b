package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/evocms-community/evo-authz/internal/permission"
)

const minMemoryEntries = 16

// Memory is an in-process LRU cache with per entry expiry.
type Memory struct {
	lru *lru.LRU[uint, permission.Set]
}

// NewMemory creates a memory cache holding at most size roles for ttl each.
func NewMemory(size int, ttl time.Duration) *Memory {
	if size < minMemoryEntries {
		size = minMemoryEntries
	}

	return &Memory{lru: lru.NewLRU[uint, permission.Set](size, nil, ttl)}
}

// Get implements Store. The returned set is a copy.
func (m *Memory) Get(_ context.Context, roleID uint) (permission.Set, error) {
	perms, ok := m.lru.Get(roleID)
	if !ok {
		return nil, ErrMiss
	}

	return perms.Clone(), nil
}

// Set implements Store.
func (m *Memory) Set(_ context.Context, roleID uint, perms permission.Set) error {
	m.lru.Add(roleID, perms.Clone())
	return nil
}

// Invalidate implements Store.
func (m *Memory) Invalidate(_ context.Context, roleID uint) error {
	m.lru.Remove(roleID)
	return nil
}

// Purge implements Store.
func (m *Memory) Purge(_ context.Context) error {
	m.lru.Purge()
	return nil
}

// Len returns the number of live entries.
func (m *Memory) Len() int {
	return m.lru.Len()
}

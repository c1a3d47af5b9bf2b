package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/evocms-community/evo-authz/internal/cache"
	"github.com/evocms-community/evo-authz/internal/db/models"
	"github.com/evocms-community/evo-authz/internal/permission"
)

// Subject is the caller whose permissions are checked.
type Subject struct {
	UserID uint64
	RoleID uint
}

// Service resolves roles to permission keys.
type Service struct {
	db    *gorm.DB
	cache cache.Store
	loads singleflight.Group
	gens  generations
}

// generations count invalidations, so a load that raced one does not write
// its stale result back into the cache.
type generations struct {
	mu    sync.Mutex
	all   uint64
	roles map[uint]uint64
}

type generation struct{ all, role uint64 }

func (g *generations) current(roleID uint) generation {
	g.mu.Lock()
	defer g.mu.Unlock()

	return generation{all: g.all, role: g.roles[roleID]}
}

func (g *generations) bump(roleID uint) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.roles == nil {
		g.roles = make(map[uint]uint64)
	}

	g.roles[roleID]++
}

func (g *generations) bumpAll() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.all++
}

// Option configures a Service.
type Option func(*Service)

// WithCache puts store in front of the role permission queries.
func WithCache(store cache.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.cache = store
		}
	}
}

// NewService creates a new auth service. Without WithCache nothing is cached.
func NewService(db *gorm.DB, opts ...Option) *Service {
	s := &Service{db: db, cache: cache.Noop{}}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// PermissionsForRole returns the enabled permission keys granted to roleID.
// Role 0 has no permissions. Store errors are returned, cache errors only logged.
func (s *Service) PermissionsForRole(ctx context.Context, roleID uint) (permission.Set, error) {
	if roleID == 0 {
		return permission.NewSet(), nil
	}

	perms, err := s.cache.Get(ctx, roleID)
	if err == nil {
		loadsTotal.WithLabelValues(sourceCache).Inc()
		return perms, nil
	}

	if !errors.Is(err, cache.ErrMiss) {
		log.Warn().Err(err).Uint("roleID", roleID).Msg("role permission cache unavailable, using store")
	}

	v, err, _ := s.loads.Do(loadKey(roleID), func() (any, error) {
		// the load is shared, so one caller giving up must not fail the others
		loadCtx := context.WithoutCancel(ctx)
		gen := s.gens.current(roleID)

		loaded, errLoad := s.loadRolePermissions(loadCtx, roleID)
		if errLoad != nil {
			return nil, errLoad
		}

		if s.gens.current(roleID) != gen {
			return loaded, nil
		}

		if errSet := s.cache.Set(loadCtx, roleID, loaded); errSet != nil {
			log.Warn().Err(errSet).Uint("roleID", roleID).Msg("failed to cache role permissions")
		}

		return loaded, nil
	})
	if err != nil {
		return nil, err
	}

	loadsTotal.WithLabelValues(sourceStore).Inc()

	// callers sharing one load must not share the map
	return v.(permission.Set).Clone(), nil //nolint:forcetypeassert
}

func loadKey(roleID uint) string {
	return strconv.FormatUint(uint64(roleID), 10)
}

// loadRolePermissions joins role_permissions to permissions on the key string.
func (s *Service) loadRolePermissions(ctx context.Context, roleID uint) (permission.Set, error) {
	var keys []string

	err := s.db.WithContext(ctx).Table("role_permissions").
		Select("DISTINCT role_permissions.permission").
		Joins("JOIN permissions ON permissions.key = role_permissions.permission").
		Where("role_permissions.role_id = ? AND permissions.disabled = ?", roleID, false).
		Pluck("role_permissions.permission", &keys).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load permissions of role %d: %w", roleID, err)
	}

	return permission.ParseKeys(keys), nil
}

// RoleOf returns the role of userID. A user without attributes has role 0.
func (s *Service) RoleOf(ctx context.Context, userID uint64) (uint, error) {
	var attrs models.UserAttributes

	err := s.db.WithContext(ctx).Select("role").Where("internal_key = ?", userID).Take(&attrs).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}

	if err != nil {
		return 0, fmt.Errorf("failed to get role of user %d: %w", userID, err)
	}

	return attrs.Role, nil
}

// UserHasAny reports whether the subject's role holds at least one required key.
// An empty requirement is never satisfied.
func (s *Service) UserHasAny(ctx context.Context, sub Subject, required permission.Set) (bool, error) {
	if required.Len() == 0 {
		return false, nil
	}

	perms, err := s.PermissionsForRole(ctx, sub.RoleID)
	if err != nil {
		return false, err
	}

	return perms.HasAny(required), nil
}

// UserHasAll reports whether the subject's role holds every required key.
// An empty requirement is always satisfied.
func (s *Service) UserHasAll(ctx context.Context, sub Subject, required permission.Set) (bool, error) {
	if required.Len() == 0 {
		return true, nil
	}

	perms, err := s.PermissionsForRole(ctx, sub.RoleID)
	if err != nil {
		return false, err
	}

	return perms.HasAll(required), nil
}

// GetUserPermissions returns the sorted permission keys of the user's role.
func (s *Service) GetUserPermissions(ctx context.Context, userID uint64) ([]string, error) {
	roleID, err := s.RoleOf(ctx, userID)
	if err != nil {
		return nil, err
	}

	perms, err := s.PermissionsForRole(ctx, roleID)
	if err != nil {
		return nil, err
	}

	return perms.Strings(), nil
}

// AssignRole sets the role of userID, creating the attributes row if needed.
// Role 0 removes the role.
func (s *Service) AssignRole(ctx context.Context, userID uint64, roleID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&models.User{}, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}

			return fmt.Errorf("failed to get user %d: %w", userID, err)
		}

		if roleID != 0 {
			if err := tx.Select("id").First(&models.Role{}, roleID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrRoleNotFound
				}

				return fmt.Errorf("failed to get role %d: %w", roleID, err)
			}
		}

		attrs := models.UserAttributes{InternalKey: userID}
		if err := tx.Where("internal_key = ?", userID).FirstOrCreate(&attrs).Error; err != nil {
			return fmt.Errorf("failed to get attributes of user %d: %w", userID, err)
		}

		if err := tx.Model(&attrs).Update("role", roleID).Error; err != nil {
			return fmt.Errorf("failed to assign role %d to user %d: %w", roleID, userID, err)
		}

		return nil
	})
}

// Invalidate drops the cached permissions of roleID.
// Loads already running for the role are not cached.
func (s *Service) Invalidate(ctx context.Context, roleID uint) error {
	s.gens.bump(roleID)
	s.loads.Forget(loadKey(roleID))

	if err := s.cache.Invalidate(ctx, roleID); err != nil {
		return fmt.Errorf("failed to invalidate role %d: %w", roleID, err)
	}

	return nil
}

// InvalidateAll drops every cached role.
func (s *Service) InvalidateAll(ctx context.Context) error {
	s.gens.bumpAll()

	if err := s.cache.Purge(ctx); err != nil {
		return fmt.Errorf("failed to purge role cache: %w", err)
	}

	return nil
}

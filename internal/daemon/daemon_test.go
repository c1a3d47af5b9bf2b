package daemon

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/evocms-community/evo-authz/internal/config"
	"github.com/evocms-community/evo-authz/internal/db/controller/role"
	"github.com/evocms-community/evo-authz/internal/db/dbtest"
	"github.com/evocms-community/evo-authz/internal/db/models"
	"github.com/evocms-community/evo-authz/internal/gate"
	"github.com/evocms-community/evo-authz/internal/permission"
)

func sqliteConfig(t *testing.T) *config.Config {
	t.Helper()

	return &config.Config{
		DB: config.DB{
			GormEngine: config.EngineSQLite,
			Name:       filepath.Join(t.TempDir(), "evo.db"),
		},
		Cache: config.Cache{Backend: config.CacheMemory, Size: 16},
	}
}

func newTestServices(t *testing.T, db *gorm.DB) *Services {
	t.Helper()

	svc, err := NewServices(sqliteConfig(t), db)
	require.NoError(t, err)

	return svc
}

func TestSeed(t *testing.T) {
	db := dbtest.Open(t)

	require.NoError(t, Seed(db))

	keys, err := role.Permissions(db, models.AdminRoleID)
	require.NoError(t, err)
	assert.Len(t, keys, len(permission.Catalog()))

	user, err := newTestServices(t, db).Local.Authenticate(context.Background(), DefaultAdminUsername, DefaultAdminPassword)
	require.NoError(t, err)
	assert.Equal(t, models.AdminRoleID, user.Attributes.Role)

	// a second run keeps what the administrator changed
	require.NoError(t, role.SetPermissions(db, models.AdminRoleID, []string{"home"}))
	require.NoError(t, Seed(db))

	keys, err = role.Permissions(db, models.AdminRoleID)
	require.NoError(t, err)
	assert.Equal(t, []string{"home"}, keys)

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.Equal(t, int64(1), users)
}

func TestOpenDB(t *testing.T) {
	cfg := sqliteConfig(t)

	db, err := OpenDB(cfg)
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
	})
	require.NoError(t, Migrate(db))
	require.NoError(t, Seed(db))

	svc, err := NewServices(cfg, db)
	require.NoError(t, err)

	d, err := svc.Gate.Authorize(context.Background(), gate.Request{
		UserID: 1,
		RoleID: models.AdminRoleID,
		Route:  permission.RouteRolesDestroy,
	})
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	_, err = OpenDB(&config.Config{DB: config.DB{GormEngine: "oracle"}})
	require.ErrorIs(t, err, config.ErrUnknownGormEngine)
}

func TestNewServices(t *testing.T) {
	db := dbtest.Open(t)

	cfg := sqliteConfig(t)
	cfg.ACL.StrictRoutes = true

	svc, err := NewServices(cfg, db)
	require.NoError(t, err)

	d, err := svc.Gate.Authorize(context.Background(), gate.Request{UserID: 1, RoleID: 1, Route: "manager.api.nowhere"})
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, gate.ReasonUnknownRoute, d.Reason)

	cfg.Cache.Backend = "memcached"

	_, err = NewServices(cfg, db)
	require.ErrorIs(t, err, config.ErrUnknownCacheBackend)
}

func TestNewSessionStorage(t *testing.T) {
	storage, err := newSessionStorage(sqliteConfig(t))
	require.NoError(t, err)
	require.NotNil(t, storage)
	t.Cleanup(func() { _ = storage.Close() })

	require.NoError(t, storage.Set("sid", []byte("data"), time.Minute))
	got, err := storage.Get("sid")
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), got)

	_, err = newSessionStorage(&config.Config{DB: config.DB{GormEngine: "oracle"}})
	require.ErrorIs(t, err, config.ErrUnknownGormEngine)
}

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(nil)
	require.ErrorIs(t, err, config.ErrConfigNil)
}

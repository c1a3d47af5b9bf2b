package daemon

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/evocms-community/evo-authz/internal/auth"
	"github.com/evocms-community/evo-authz/internal/db/controller/catalog"
	"github.com/evocms-community/evo-authz/internal/db/controller/role"
	"github.com/evocms-community/evo-authz/internal/db/models"
	"github.com/evocms-community/evo-authz/internal/permission"
)

const (
	// DefaultAdminUsername is the user created on an empty database.
	DefaultAdminUsername = "admin"
	// DefaultAdminPassword must be changed after the first login.
	DefaultAdminPassword = "changeme"
)

// Seed fills an empty database: the permission catalog, the administrator
// role holding every catalog key and a first administrator account.
// Existing rows are kept, so it is safe to run on every start.
func Seed(db *gorm.DB) error {
	if err := catalog.Seed(db, permission.Catalog()); err != nil {
		return fmt.Errorf("failed to seed permission catalog: %w", err)
	}

	admin := models.Role{ID: models.AdminRoleID}

	res := db.Attrs(models.Role{Name: "Administrator", Description: "Site administrators have full access"}).
		FirstOrCreate(&admin)
	if res.Error != nil {
		return fmt.Errorf("failed to seed administrator role: %w", res.Error)
	}

	if res.RowsAffected > 0 {
		if err := syncSequence(db, admin.TableName()); err != nil {
			return err
		}

		if err := role.SetPermissions(db, models.AdminRoleID, permission.CatalogKeys()); err != nil {
			return fmt.Errorf("failed to grant administrator permissions: %w", err)
		}
	}

	var users int64
	if err := db.Model(&models.User{}).Count(&users).Error; err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}

	if users > 0 {
		return nil
	}

	_, err := auth.NewLocalProvider(db).CreateUser(context.Background(),
		DefaultAdminUsername, DefaultAdminPassword, "Administrator", "", models.AdminRoleID)
	if err != nil {
		return fmt.Errorf("failed to seed administrator account: %w", err)
	}

	log.Warn().Str("username", DefaultAdminUsername).Msg("created the default administrator, change its password")

	return nil
}

// syncSequence moves a postgres serial past rows inserted with explicit ids.
func syncSequence(db *gorm.DB, table string) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}

	err := db.Exec("SELECT setval(pg_get_serial_sequence(?, 'id'), (SELECT MAX(id) FROM "+table+"))", table).Error
	if err != nil {
		return fmt.Errorf("failed to sync id sequence of %s: %w", table, err)
	}

	return nil
}

// Package role provides CRUD operations for manager roles and their permission keys.
package role

import (
	"errors"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/evocms-community/evo-authz/internal/db/models"
)

const (
	idQueryPattern     = "id = ?"
	roleIDQueryPattern = "role_id = ?"
)

var (
	// ErrRoleNotFound is returned when a role is not found.
	ErrRoleNotFound = errors.New("role not found")
	// ErrRoleNameEmpty is returned when attempting to create/update a role with an empty name.
	ErrRoleNameEmpty = errors.New("role name cannot be empty")
	// ErrRoleAlreadyExists is returned when another role already uses the name.
	ErrRoleAlreadyExists = errors.New("role already exists")
	// ErrSystemRole is returned when attempting to delete the administrator role.
	ErrSystemRole = errors.New("the administrator role cannot be deleted")
	// ErrRoleInUse is returned when deleting a role that users still hold.
	ErrRoleInUse = errors.New("role is assigned to users")
	// ErrUnknownPermission is returned when a permission key is not in the catalog.
	ErrUnknownPermission = errors.New("unknown permission key")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// List returns all roles ordered by id.
func List(db *gorm.DB) ([]models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var roles []models.Role
	if err := db.Order("id").Find(&roles).Error; err != nil {
		return nil, err
	}

	return roles, nil
}

// Get retrieves a role by id.
func Get(db *gorm.DB, id uint) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var r models.Role
	if err := db.First(&r, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}

		return nil, err
	}

	return &r, nil
}

// Create creates a new role.
func Create(db *gorm.DB, name, description string) (*models.Role, error) {
	return CreateWithPermissions(db, name, description, nil)
}

// CreateWithPermissions creates a role and assigns keys in one transaction.
// A nil keys leaves the new role without permissions.
func CreateWithPermissions(db *gorm.DB, name, description string, keys *[]string) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrRoleNameEmpty
	}

	r := &models.Role{Name: name, Description: description}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := checkNameFree(tx, name, 0); err != nil {
			return err
		}

		if err := tx.Create(r).Error; err != nil {
			return err
		}

		if keys == nil {
			return nil
		}

		return replacePermissions(tx, r.ID, *keys)
	})
	if err != nil {
		return nil, err
	}

	return r, nil
}

// Update renames a role and replaces its description.
func Update(db *gorm.DB, id uint, name, description string) (*models.Role, error) {
	return UpdateWithPermissions(db, id, name, description, nil)
}

// UpdateWithPermissions renames a role and, when keys is not nil, replaces
// its permission keys. Nothing is written if any step fails.
func UpdateWithPermissions(db *gorm.DB, id uint, name, description string, keys *[]string) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrRoleNameEmpty
	}

	var out *models.Role

	err := db.Transaction(func(tx *gorm.DB) error {
		r, err := Get(tx, id)
		if err != nil {
			return err
		}

		if err = checkNameFree(tx, name, id); err != nil {
			return err
		}

		r.Name = name
		r.Description = description

		if err = tx.Save(r).Error; err != nil {
			return err
		}

		if keys != nil {
			if err = replacePermissions(tx, id, *keys); err != nil {
				return err
			}
		}

		out = r

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// Delete removes a role and its permission assignments.
func Delete(db *gorm.DB, id uint) error {
	if db == nil {
		return ErrDBNil
	}

	if id == models.AdminRoleID {
		return ErrSystemRole
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := Get(tx, id); err != nil {
			return err
		}

		users, err := CountUsers(tx, id)
		if err != nil {
			return err
		}

		if users > 0 {
			return ErrRoleInUse
		}

		if err = tx.Where(roleIDQueryPattern, id).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}

		return tx.Where(idQueryPattern, id).Delete(&models.Role{}).Error
	})
}

// CountUsers returns the number of users holding the role.
func CountUsers(db *gorm.DB, id uint) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	var count int64
	if err := db.Model(&models.UserAttributes{}).Where("role = ?", id).Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

// Permissions returns the sorted permission keys assigned to the role,
// including keys whose permission is disabled.
func Permissions(db *gorm.DB, id uint) ([]string, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if _, err := Get(db, id); err != nil {
		return nil, err
	}

	var keys []string

	err := db.Model(&models.RolePermission{}).
		Where(roleIDQueryPattern, id).
		Order("permission").
		Pluck("permission", &keys).Error
	if err != nil {
		return nil, err
	}

	return keys, nil
}

// SetPermissions replaces the permission keys of the role.
// Every key must exist in the permissions table.
func SetPermissions(db *gorm.DB, id uint, keys []string) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := Get(tx, id); err != nil {
			return err
		}

		return replacePermissions(tx, id, keys)
	})
}

// replacePermissions must run inside a transaction on an existing role.
func replacePermissions(tx *gorm.DB, id uint, keys []string) error {
	keys = uniqueKeys(keys)

	if len(keys) > 0 {
		var known int64

		err := tx.Model(&models.Permission{}).Where("permissions.key IN ?", keys).Count(&known).Error
		if err != nil {
			return err
		}

		if int(known) != len(keys) {
			return ErrUnknownPermission
		}
	}

	if err := tx.Where(roleIDQueryPattern, id).Delete(&models.RolePermission{}).Error; err != nil {
		return err
	}

	if len(keys) == 0 {
		return nil
	}

	rows := make([]models.RolePermission, len(keys))
	for i, k := range keys {
		rows[i] = models.RolePermission{RoleID: id, Permission: k}
	}

	return tx.Create(&rows).Error
}

func checkNameFree(db *gorm.DB, name string, self uint) error {
	var existing models.Role

	err := db.Where("name = ? AND id <> ?", name, self).First(&existing).Error
	if err == nil {
		return ErrRoleAlreadyExists
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return nil
}

func uniqueKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))

	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}

		if _, ok := seen[k]; ok {
			continue
		}

		seen[k] = struct{}{}
		out = append(out, k)
	}

	sort.Strings(out)

	return out
}

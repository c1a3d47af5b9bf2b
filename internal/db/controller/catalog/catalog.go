// Package catalog provides CRUD operations for the permission catalog:
// the permissions table and the groups that organize it.
//
// Role assignments reference permissions by key, so renaming a key rewrites
// the matching role_permissions rows and deleting a permission removes them.
package catalog

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/evocms-community/evo-authz/internal/db/models"
	"github.com/evocms-community/evo-authz/internal/permission"
)

const (
	idQueryPattern  = "id = ?"
	keyQueryPattern = "permissions.key = ?"
)

var (
	// ErrGroupNotFound is returned when a permission group is not found.
	ErrGroupNotFound = errors.New("permission group not found")
	// ErrGroupNameEmpty is returned when a permission group has no name.
	ErrGroupNameEmpty = errors.New("permission group name cannot be empty")
	// ErrGroupAlreadyExists is returned when another group already uses the name.
	ErrGroupAlreadyExists = errors.New("permission group already exists")
	// ErrGroupInUse is returned when deleting a group that still holds permissions.
	ErrGroupInUse = errors.New("permission group still holds permissions")
	// ErrPermissionNotFound is returned when a permission is not found.
	ErrPermissionNotFound = errors.New("permission not found")
	// ErrPermissionKeyEmpty is returned when a permission has no key.
	ErrPermissionKeyEmpty = errors.New("permission key cannot be empty")
	// ErrPermissionAlreadyExists is returned when another permission already uses the key.
	ErrPermissionAlreadyExists = errors.New("permission already exists")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// ListGroups returns all permission groups ordered by id.
func ListGroups(db *gorm.DB) ([]models.PermissionGroup, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var groups []models.PermissionGroup
	if err := db.Order("id").Find(&groups).Error; err != nil {
		return nil, err
	}

	return groups, nil
}

// GetGroup retrieves a permission group by id.
func GetGroup(db *gorm.DB, id uint) (*models.PermissionGroup, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var g models.PermissionGroup
	if err := db.First(&g, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}

		return nil, err
	}

	return &g, nil
}

// CreateGroup creates a permission group.
func CreateGroup(db *gorm.DB, name, langKey string) (*models.PermissionGroup, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrGroupNameEmpty
	}

	if err := checkGroupNameFree(db, name, 0); err != nil {
		return nil, err
	}

	g := &models.PermissionGroup{Name: name, LangKey: langKey}
	if err := db.Create(g).Error; err != nil {
		return nil, err
	}

	return g, nil
}

// UpdateGroup renames a permission group.
func UpdateGroup(db *gorm.DB, id uint, name, langKey string) (*models.PermissionGroup, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrGroupNameEmpty
	}

	g, err := GetGroup(db, id)
	if err != nil {
		return nil, err
	}

	if err = checkGroupNameFree(db, name, id); err != nil {
		return nil, err
	}

	g.Name = name
	g.LangKey = langKey

	if err = db.Save(g).Error; err != nil {
		return nil, err
	}

	return g, nil
}

// DeleteGroup removes an empty permission group.
func DeleteGroup(db *gorm.DB, id uint) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := GetGroup(tx, id); err != nil {
			return err
		}

		var held int64
		if err := tx.Model(&models.Permission{}).Where("group_id = ?", id).Count(&held).Error; err != nil {
			return err
		}

		if held > 0 {
			return ErrGroupInUse
		}

		return tx.Where(idQueryPattern, id).Delete(&models.PermissionGroup{}).Error
	})
}

// ListPermissions returns all permissions ordered by group and id.
func ListPermissions(db *gorm.DB) ([]models.Permission, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var perms []models.Permission
	if err := db.Order("group_id").Order("id").Find(&perms).Error; err != nil {
		return nil, err
	}

	return perms, nil
}

// GetPermission retrieves a permission by id.
func GetPermission(db *gorm.DB, id uint) (*models.Permission, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var p models.Permission
	if err := db.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPermissionNotFound
		}

		return nil, err
	}

	return &p, nil
}

// CreatePermission adds p to the catalog. The group, when set, must exist.
func CreatePermission(db *gorm.DB, p *models.Permission) error {
	if db == nil {
		return ErrDBNil
	}

	p.Key = strings.TrimSpace(p.Key)
	if p.Key == "" {
		return ErrPermissionKeyEmpty
	}

	if p.GroupID != 0 {
		if _, err := GetGroup(db, p.GroupID); err != nil {
			return err
		}
	}

	if err := checkKeyFree(db, p.Key, 0); err != nil {
		return err
	}

	p.ID = 0

	return db.Create(p).Error
}

// UpdatePermission replaces the editable fields of the permission with id.
// A changed key is carried over to every role holding the old one.
func UpdatePermission(db *gorm.DB, id uint, in models.Permission) (*models.Permission, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	in.Key = strings.TrimSpace(in.Key)
	if in.Key == "" {
		return nil, ErrPermissionKeyEmpty
	}

	var out *models.Permission

	err := db.Transaction(func(tx *gorm.DB) error {
		p, err := GetPermission(tx, id)
		if err != nil {
			return err
		}

		if in.GroupID != 0 {
			if _, err = GetGroup(tx, in.GroupID); err != nil {
				return err
			}
		}

		if in.Key != p.Key {
			if err = checkKeyFree(tx, in.Key, id); err != nil {
				return err
			}

			err = tx.Model(&models.RolePermission{}).
				Where("permission = ?", p.Key).
				Update("permission", in.Key).Error
			if err != nil {
				return err
			}
		}

		p.Key = in.Key
		p.Name = in.Name
		p.LangKey = in.LangKey
		p.GroupID = in.GroupID
		p.Disabled = in.Disabled

		if err = tx.Save(p).Error; err != nil {
			return err
		}

		out = p

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// DeletePermission removes a permission and every role assignment of its key.
func DeletePermission(db *gorm.DB, id uint) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		p, err := GetPermission(tx, id)
		if err != nil {
			return err
		}

		if err = tx.Where("permission = ?", p.Key).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}

		return tx.Where(idQueryPattern, id).Delete(&models.Permission{}).Error
	})
}

// Seed inserts the missing groups and permissions of entries.
// Existing rows are left untouched, so a disabled permission stays disabled.
func Seed(db *gorm.DB, entries []permission.CatalogEntry) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		groupIDs := make(map[string]uint)

		for _, e := range entries {
			if _, ok := groupIDs[e.Group]; ok {
				continue
			}

			g := models.PermissionGroup{Name: e.Group, LangKey: "page_data_" + e.Group}
			if err := tx.Where("name = ?", e.Group).Attrs(g).FirstOrCreate(&g).Error; err != nil {
				return err
			}

			groupIDs[e.Group] = g.ID
		}

		for _, e := range entries {
			p := models.Permission{
				Key:     string(e.Key),
				Name:    e.Name,
				LangKey: e.LangKey(),
				GroupID: groupIDs[e.Group],
			}

			if err := tx.Where(keyQueryPattern, p.Key).Attrs(p).FirstOrCreate(&p).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func checkGroupNameFree(db *gorm.DB, name string, self uint) error {
	var existing models.PermissionGroup

	err := db.Where("name = ? AND id <> ?", name, self).First(&existing).Error
	if err == nil {
		return ErrGroupAlreadyExists
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return nil
}

func checkKeyFree(db *gorm.DB, key string, self uint) error {
	var existing models.Permission

	err := db.Where("permissions.key = ? AND id <> ?", key, self).First(&existing).Error
	if err == nil {
		return ErrPermissionAlreadyExists
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return nil
}

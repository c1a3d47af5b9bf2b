// Package accessgroup provides CRUD operations for document groups, member
// groups and the membergroup_access relations that link them.
package accessgroup

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/evocms-community/evo-authz/internal/db/models"
)

const idQueryPattern = "id = ?"

var (
	// ErrDocumentGroupNotFound is returned when a document group is not found.
	ErrDocumentGroupNotFound = errors.New("document group not found")
	// ErrMemberGroupNotFound is returned when a member group is not found.
	ErrMemberGroupNotFound = errors.New("member group not found")
	// ErrRelationNotFound is returned when an access relation is not found.
	ErrRelationNotFound = errors.New("access relation not found")
	// ErrNameEmpty is returned when a group has no name.
	ErrNameEmpty = errors.New("group name cannot be empty")
	// ErrGroupAlreadyExists is returned when another group of the same kind already uses the name.
	ErrGroupAlreadyExists = errors.New("group already exists")
	// ErrRelationExists is returned when the member group already reaches the document group.
	ErrRelationExists = errors.New("access relation already exists")
	// ErrInvalidContext is returned for an access context other than manager or web.
	ErrInvalidContext = errors.New("invalid access context")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Relation is a membergroup_access row with the names of both groups.
type Relation struct {
	ID                uint   `json:"id"`
	MemberGroupID     uint   `json:"memberGroupId"`
	MemberGroupName   string `json:"memberGroupName"`
	DocumentGroupID   uint   `json:"documentGroupId"`
	DocumentGroupName string `json:"documentGroupName"`
	Context           int    `json:"context"`
}

// ListDocumentGroups returns all document groups ordered by name.
func ListDocumentGroups(db *gorm.DB) ([]models.DocumentGroupName, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var groups []models.DocumentGroupName
	if err := db.Order("name").Find(&groups).Error; err != nil {
		return nil, err
	}

	return groups, nil
}

// GetDocumentGroup retrieves a document group by id.
func GetDocumentGroup(db *gorm.DB, id uint) (*models.DocumentGroupName, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var g models.DocumentGroupName
	if err := db.First(&g, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentGroupNotFound
		}

		return nil, err
	}

	return &g, nil
}

// CreateDocumentGroup creates a document group.
func CreateDocumentGroup(db *gorm.DB, name string) (*models.DocumentGroupName, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameEmpty
	}

	if err := checkNameFree(db, &models.DocumentGroupName{}, name, 0); err != nil {
		return nil, err
	}

	g := &models.DocumentGroupName{Name: name}
	if err := db.Create(g).Error; err != nil {
		return nil, err
	}

	return g, nil
}

// RenameDocumentGroup renames a document group.
func RenameDocumentGroup(db *gorm.DB, id uint, name string) (*models.DocumentGroupName, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameEmpty
	}

	g, err := GetDocumentGroup(db, id)
	if err != nil {
		return nil, err
	}

	if err = checkNameFree(db, &models.DocumentGroupName{}, name, id); err != nil {
		return nil, err
	}

	g.Name = name
	if err = db.Save(g).Error; err != nil {
		return nil, err
	}

	return g, nil
}

// DeleteDocumentGroup removes a document group, its resource links and its access relations.
// Resources left in no group become visible to everyone.
func DeleteDocumentGroup(db *gorm.DB, id uint) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := GetDocumentGroup(tx, id); err != nil {
			return err
		}

		var placed []uint64
		if err := tx.Model(&models.DocumentGroup{}).Where("document_group = ?", id).
			Pluck("document", &placed).Error; err != nil {
			return err
		}

		if err := tx.Where("document_group = ?", id).Delete(&models.DocumentGroup{}).Error; err != nil {
			return err
		}

		if err := tx.Where("documentgroup = ?", id).Delete(&models.MemberGroupAccess{}).Error; err != nil {
			return err
		}

		if err := tx.Where(idQueryPattern, id).Delete(&models.DocumentGroupName{}).Error; err != nil {
			return err
		}

		if len(placed) == 0 {
			return nil
		}

		return refreshResourceFlags(tx, func(db *gorm.DB) *gorm.DB {
			return db.Where("id IN ?", placed)
		})
	})
}

// ListMemberGroups returns all member groups ordered by name.
func ListMemberGroups(db *gorm.DB) ([]models.MemberGroupName, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var groups []models.MemberGroupName
	if err := db.Order("name").Find(&groups).Error; err != nil {
		return nil, err
	}

	return groups, nil
}

// GetMemberGroup retrieves a member group by id.
func GetMemberGroup(db *gorm.DB, id uint) (*models.MemberGroupName, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var g models.MemberGroupName
	if err := db.First(&g, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberGroupNotFound
		}

		return nil, err
	}

	return &g, nil
}

// CreateMemberGroup creates a member group.
func CreateMemberGroup(db *gorm.DB, name string) (*models.MemberGroupName, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameEmpty
	}

	if err := checkNameFree(db, &models.MemberGroupName{}, name, 0); err != nil {
		return nil, err
	}

	g := &models.MemberGroupName{Name: name}
	if err := db.Create(g).Error; err != nil {
		return nil, err
	}

	return g, nil
}

// RenameMemberGroup renames a member group.
func RenameMemberGroup(db *gorm.DB, id uint, name string) (*models.MemberGroupName, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameEmpty
	}

	g, err := GetMemberGroup(db, id)
	if err != nil {
		return nil, err
	}

	if err = checkNameFree(db, &models.MemberGroupName{}, name, id); err != nil {
		return nil, err
	}

	g.Name = name
	if err = db.Save(g).Error; err != nil {
		return nil, err
	}

	return g, nil
}

// DeleteMemberGroup removes a member group, its memberships and its access relations.
func DeleteMemberGroup(db *gorm.DB, id uint) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := GetMemberGroup(tx, id); err != nil {
			return err
		}

		var linked []uint
		if err := tx.Model(&models.MemberGroupAccess{}).Where("membergroup = ?", id).
			Pluck("documentgroup", &linked).Error; err != nil {
			return err
		}

		if err := tx.Where("user_group = ?", id).Delete(&models.MemberGroup{}).Error; err != nil {
			return err
		}

		if err := tx.Where("membergroup = ?", id).Delete(&models.MemberGroupAccess{}).Error; err != nil {
			return err
		}

		if err := tx.Where(idQueryPattern, id).Delete(&models.MemberGroupName{}).Error; err != nil {
			return err
		}

		return refreshPrivateFlags(tx, linked...)
	})
}

// ListRelations returns every access relation with group names, ordered by member group then document group.
func ListRelations(db *gorm.DB) ([]Relation, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var out []Relation

	err := db.Table("membergroup_access").
		Select("membergroup_access.id AS id, " +
			"membergroup_access.membergroup AS member_group_id, " +
			"membergroup_names.name AS member_group_name, " +
			"membergroup_access.documentgroup AS document_group_id, " +
			"documentgroup_names.name AS document_group_name, " +
			"membergroup_access.context AS context").
		Joins("JOIN membergroup_names ON membergroup_names.id = membergroup_access.membergroup").
		Joins("JOIN documentgroup_names ON documentgroup_names.id = membergroup_access.documentgroup").
		Order("membergroup_names.name").
		Order("documentgroup_names.name").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}

	return out, nil
}

// Link lets memberGroup reach documentGroup in the given context.
func Link(db *gorm.DB, memberGroup, documentGroup uint, context int) (*models.MemberGroupAccess, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if context != models.ContextManager && context != models.ContextWeb {
		return nil, ErrInvalidContext
	}

	rel := &models.MemberGroupAccess{
		MemberGroup:   memberGroup,
		DocumentGroup: documentGroup,
		Context:       context,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := GetMemberGroup(tx, memberGroup); err != nil {
			return err
		}

		if _, err := GetDocumentGroup(tx, documentGroup); err != nil {
			return err
		}

		var existing int64

		err := tx.Model(&models.MemberGroupAccess{}).
			Where("membergroup = ? AND documentgroup = ? AND context = ?", memberGroup, documentGroup, context).
			Count(&existing).Error
		if err != nil {
			return err
		}

		if existing > 0 {
			return ErrRelationExists
		}

		if err = tx.Create(rel).Error; err != nil {
			return err
		}

		return refreshPrivateFlags(tx, documentGroup)
	})
	if err != nil {
		return nil, err
	}

	return rel, nil
}

// Unlink removes the access relation with id.
func Unlink(db *gorm.DB, id uint) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var rel models.MemberGroupAccess
		if err := tx.First(&rel, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRelationNotFound
			}

			return err
		}

		if err := tx.Where(idQueryPattern, id).Delete(&models.MemberGroupAccess{}).Error; err != nil {
			return err
		}

		return refreshPrivateFlags(tx, rel.DocumentGroup)
	})
}

// refreshPrivateFlags recomputes the private flags of the given document groups
// and of the resources placed in them.
func refreshPrivateFlags(tx *gorm.DB, documentGroups ...uint) error {
	for _, dg := range documentGroups {
		var mgr, web int64

		if err := tx.Model(&models.MemberGroupAccess{}).
			Where("documentgroup = ? AND context = ?", dg, models.ContextManager).
			Count(&mgr).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.MemberGroupAccess{}).
			Where("documentgroup = ? AND context = ?", dg, models.ContextWeb).
			Count(&web).Error; err != nil {
			return err
		}

		err := tx.Model(&models.DocumentGroupName{}).Where(idQueryPattern, dg).Updates(map[string]any{
			"private_memgroup": mgr > 0,
			"private_webgroup": web > 0,
		}).Error
		if err != nil {
			return err
		}
	}

	if len(documentGroups) == 0 {
		return nil
	}

	placed := tx.Session(&gorm.Session{NewDB: true}).
		Table("document_groups").Select("document").
		Where("document_group IN ?", documentGroups)

	return refreshResourceFlags(tx, func(db *gorm.DB) *gorm.DB {
		return db.Where("id IN (?)", placed)
	})
}

// refreshResourceFlags recomputes the private flags of the resources selected by scope.
func refreshResourceFlags(tx *gorm.DB, scope func(*gorm.DB) *gorm.DB) error {
	reachable := func(context int) *gorm.DB {
		return tx.Session(&gorm.Session{NewDB: true}).
			Table("document_groups").Select("document_groups.document").
			Joins("JOIN membergroup_access ON membergroup_access.documentgroup = document_groups.document_group").
			Where("membergroup_access.context = ?", context)
	}

	return tx.Model(&models.Resource{}).Scopes(scope).Updates(map[string]any{
		"privatemgr": gorm.Expr("CASE WHEN id IN (?) THEN ? ELSE ? END", reachable(models.ContextManager), true, false),
		"privateweb": gorm.Expr("CASE WHEN id IN (?) THEN ? ELSE ? END", reachable(models.ContextWeb), true, false),
	}).Error
}

func checkNameFree(db *gorm.DB, model any, name string, self uint) error {
	var count int64

	err := db.Model(model).Where("name = ? AND id <> ?", name, self).Count(&count).Error
	if err != nil {
		return err
	}

	if count > 0 {
		return ErrGroupAlreadyExists
	}

	return nil
}

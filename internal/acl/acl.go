// Package acl evaluates document-group restrictions on resources.
//
// A manager user reaches a document group through one of their member groups,
// when a membergroup_access row in the manager context links the two.
// A resource placed in no document group is visible to everyone.
package acl

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"github.com/evocms-community/evo-authz/internal/db/models"
)

// ErrResourceNotFound is returned when the resource does not exist.
var ErrResourceNotFound = errors.New("resource not found")

// Service answers row-level visibility questions.
type Service struct {
	db *gorm.DB
}

// NewService creates a new ACL service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// GroupsForUser returns the sorted document group ids reachable by userID.
func (s *Service) GroupsForUser(ctx context.Context, userID uint64) ([]uint, error) {
	var groups []uint

	err := s.db.WithContext(ctx).Table("membergroup_access").
		Distinct("membergroup_access.documentgroup").
		Joins("JOIN member_groups ON member_groups.user_group = membergroup_access.membergroup").
		Where("member_groups.member = ? AND membergroup_access.context = ?", userID, models.ContextManager).
		Pluck("membergroup_access.documentgroup", &groups).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load document groups of user %d: %w", userID, err)
	}

	return normalizeIDs(groups), nil
}

// ResourceGroups returns the sorted document group ids of resourceID.
func (s *Service) ResourceGroups(ctx context.Context, resourceID uint64) ([]uint, error) {
	var groups []uint

	err := s.db.WithContext(ctx).Model(&models.DocumentGroup{}).
		Where("document = ?", resourceID).
		Pluck("document_group", &groups).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load document groups of resource %d: %w", resourceID, err)
	}

	return normalizeIDs(groups), nil
}

// IsResourceVisible reports whether a caller holding allowed may see resourceID.
func (s *Service) IsResourceVisible(ctx context.Context, resourceID uint64, allowed []uint) (bool, error) {
	groups, err := s.ResourceGroups(ctx, resourceID)
	if err != nil {
		return false, err
	}

	return Visible(groups, allowed), nil
}

// Visible reports whether a resource in groups is visible to a caller holding allowed.
func Visible(groups, allowed []uint) bool {
	if len(groups) == 0 {
		return true
	}

	held := make(map[uint]struct{}, len(allowed))
	for _, g := range allowed {
		held[g] = struct{}{}
	}

	for _, g := range groups {
		if _, ok := held[g]; ok {
			return true
		}
	}

	return false
}

// FilterVisible returns a scope over site_content keeping the rows visible to allowed.
func (*Service) FilterVisible(allowed []uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		unrestricted := db.Session(&gorm.Session{NewDB: true}).
			Table("document_groups").Select("1").
			Where("document_groups.document = site_content.id")

		if len(allowed) == 0 {
			return db.Where("NOT EXISTS (?)", unrestricted)
		}

		granted := db.Session(&gorm.Session{NewDB: true}).
			Table("document_groups").Select("1").
			Where("document_groups.document = site_content.id AND document_groups.document_group IN ?", allowed)

		return db.Where("(NOT EXISTS (?) OR EXISTS (?))", unrestricted, granted)
	}
}

// SetResourceGroups replaces the document groups of resourceID and keeps
// the private flags of site_content in sync.
func (s *Service) SetResourceGroups(ctx context.Context, resourceID uint64, groups []uint) error {
	groups = normalizeIDs(groups)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&models.Resource{}, resourceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrResourceNotFound
			}

			return fmt.Errorf("failed to get resource %d: %w", resourceID, err)
		}

		if err := tx.Where("document = ?", resourceID).Delete(&models.DocumentGroup{}).Error; err != nil {
			return fmt.Errorf("failed to clear document groups of resource %d: %w", resourceID, err)
		}

		if len(groups) > 0 {
			rows := make([]models.DocumentGroup, len(groups))
			for i, g := range groups {
				rows[i] = models.DocumentGroup{DocumentGroup: g, Document: resourceID}
			}

			if err := tx.Create(&rows).Error; err != nil {
				return fmt.Errorf("failed to set document groups of resource %d: %w", resourceID, err)
			}
		}

		var privateMgr, privateWeb int64

		if len(groups) > 0 {
			access := tx.Model(&models.MemberGroupAccess{}).Where("documentgroup IN ?", groups)

			if err := access.Session(&gorm.Session{}).Where("context = ?", models.ContextManager).
				Count(&privateMgr).Error; err != nil {
				return fmt.Errorf("failed to check manager access of resource %d: %w", resourceID, err)
			}

			if err := access.Session(&gorm.Session{}).Where("context = ?", models.ContextWeb).
				Count(&privateWeb).Error; err != nil {
				return fmt.Errorf("failed to check web access of resource %d: %w", resourceID, err)
			}
		}

		err := tx.Model(&models.Resource{}).Where("id = ?", resourceID).Updates(map[string]any{
			"privatemgr": privateMgr > 0,
			"privateweb": privateWeb > 0,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to update resource %d: %w", resourceID, err)
		}

		return nil
	})
}

// UserGroups returns the sorted member group ids of userID.
func (s *Service) UserGroups(ctx context.Context, userID uint64) ([]uint, error) {
	var groups []uint

	err := s.db.WithContext(ctx).Model(&models.MemberGroup{}).
		Where("member = ?", userID).
		Pluck("user_group", &groups).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load member groups of user %d: %w", userID, err)
	}

	return normalizeIDs(groups), nil
}

// SetUserGroups replaces the member groups of userID.
func (s *Service) SetUserGroups(ctx context.Context, userID uint64, memberGroups []uint) error {
	memberGroups = normalizeIDs(memberGroups)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("member = ?", userID).Delete(&models.MemberGroup{}).Error; err != nil {
			return fmt.Errorf("failed to clear member groups of user %d: %w", userID, err)
		}

		if len(memberGroups) == 0 {
			return nil
		}

		rows := make([]models.MemberGroup, len(memberGroups))
		for i, g := range memberGroups {
			rows[i] = models.MemberGroup{UserGroup: g, Member: userID}
		}

		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to set member groups of user %d: %w", userID, err)
		}

		return nil
	})
}

// normalizeIDs sorts ids and drops zeros and duplicates.
func normalizeIDs(ids []uint) []uint {
	out := make([]uint, 0, len(ids))
	seen := make(map[uint]struct{}, len(ids))

	for _, id := range ids {
		if id == 0 {
			continue
		}

		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}
		out = append(out, id)
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

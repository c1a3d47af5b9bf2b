// Package resources serves the manager document tree with document group
// restrictions applied when row-level permissions are on.
package resources

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/evocms-community/evo-authz/internal/acl"
	"github.com/evocms-community/evo-authz/internal/db/models"
	"github.com/evocms-community/evo-authz/internal/permission"
	"github.com/evocms-community/evo-authz/internal/web/handler"
	"github.com/evocms-community/evo-authz/internal/web/middleware/auth"
	guard "github.com/evocms-community/evo-authz/internal/web/middleware/permission"
)

const (
	// Path is the base path of the resources API.
	Path = handler.APIPath + "/resources"
	// PathID addresses a single resource.
	PathID = Path + "/:" + handler.ParamID + "<int>"
	// PathGroups addresses the document groups of a resource.
	PathGroups = PathID + "/groups"

	// QueryParent filters the index by parent id.
	QueryParent = "parent"
	// QueryLimit is the page size of the index.
	QueryLimit = "limit"
	// QueryOffset is the number of rows skipped by the index.
	QueryOffset = "offset"

	// DefaultLimit is used when no limit is given.
	DefaultLimit = 50
	// MaxLimit clamps the page size.
	MaxLimit = 500
)

// ErrResourceNotFound is returned when the resource does not exist.
var ErrResourceNotFound = errors.New("resource not found")

// Item is a resource with the ids of its document groups.
type Item struct {
	models.Resource
	Groups []uint `json:"groups"`
}

// Page is one page of the resource index.
type Page struct {
	Items  []models.Resource `json:"items"`
	Total  int64             `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

// GroupsInput replaces the document groups of a resource.
type GroupsInput struct {
	Groups []uint `json:"groups" validate:"dive,min=1"`
}

// Service is the resources handler service.
type Service struct {
	handler.Service
	deps *handler.Deps
}

// Handler is the resources handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init registers the routes.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || !deps.Valid() || deps.ACL == nil {
		return errors.New(handler.ErrNilDepsFatalLogMsg)
	}

	s.deps = deps

	byID := guard.WithResourceParam(handler.ParamID)

	handler.Register(app, deps, fiber.MethodGet, Path, permission.RouteResourcesIndex, s.Index)
	handler.Register(app, deps, fiber.MethodGet, PathID, permission.RouteResourcesShow, s.Show, byID)
	handler.Register(app, deps, fiber.MethodPut, PathGroups, permission.RouteResourcesGroupsUpdate, s.UpdateGroups, byID)

	return nil
}

// Index lists resources. With row-level permissions on, resources in document
// groups the user cannot reach are left out.
func (s *Service) Index(c *fiber.Ctx) error {
	ctx := c.UserContext()

	limit := c.QueryInt(QueryLimit, DefaultLimit)
	if limit <= 0 || limit > MaxLimit {
		limit = DefaultLimit
	}

	offset := max(c.QueryInt(QueryOffset, 0), 0)

	q := s.deps.DB.WithContext(ctx).Model(&models.Resource{})

	if raw := c.Query(QueryParent); raw != "" {
		parent := c.QueryInt(QueryParent, -1)
		if parent < 0 {
			return handler.Fail(c, fiber.StatusBadRequest, errors.New("invalid parent"))
		}

		q = q.Where("parent = ?", parent)
	}

	rowLevel, err := s.useRowLevel(c)
	if err != nil {
		return handler.Fail(c, fiber.StatusInternalServerError, err)
	}

	if rowLevel {
		groups, groupsErr := s.deps.ACL.GroupsForUser(ctx, auth.UserID(c))
		if groupsErr != nil {
			log.Error().Err(groupsErr).Msg("failed to load document groups")
			return handler.Fail(c, fiber.StatusInternalServerError, groupsErr)
		}

		q = q.Scopes(s.deps.ACL.FilterVisible(groups))
	}

	page := Page{Items: []models.Resource{}, Limit: limit, Offset: offset}

	if err = q.Session(&gorm.Session{}).Count(&page.Total).Error; err != nil {
		log.Error().Err(err).Msg("failed to count resources")
		return handler.Fail(c, fiber.StatusInternalServerError, err)
	}

	err = q.Order("menuindex").Order("id").Limit(limit).Offset(offset).Find(&page.Items).Error
	if err != nil {
		log.Error().Err(err).Msg("failed to list resources")
		return handler.Fail(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(page)
}

// Show returns one resource. The guard has already checked its document groups.
func (s *Service) Show(c *fiber.Ctx) error {
	id, err := handler.ParseID64(c)
	if err != nil {
		return handler.Fail(c, fiber.StatusBadRequest, err)
	}

	ctx := c.UserContext()

	var item Item
	if err = s.deps.DB.WithContext(ctx).First(&item.Resource, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return handler.Fail(c, fiber.StatusNotFound, ErrResourceNotFound)
		}

		log.Error().Err(err).Uint64("resourceID", id).Msg("failed to load resource")

		return handler.Fail(c, fiber.StatusInternalServerError, err)
	}

	if item.Groups, err = s.deps.ACL.ResourceGroups(ctx, id); err != nil {
		log.Error().Err(err).Uint64("resourceID", id).Msg("failed to load resource groups")
		return handler.Fail(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(item)
}

// UpdateGroups replaces the document groups of a resource.
func (s *Service) UpdateGroups(c *fiber.Ctx) error {
	id, err := handler.ParseID64(c)
	if err != nil {
		return handler.Fail(c, fiber.StatusBadRequest, err)
	}

	var in GroupsInput
	if ok, bindErr := handler.Bind(c, s.deps.Validator, &in); !ok {
		return bindErr
	}

	ctx := c.UserContext()

	if err = s.deps.ACL.SetResourceGroups(ctx, id, in.Groups); err != nil {
		if errors.Is(err, acl.ErrResourceNotFound) {
			return handler.Fail(c, fiber.StatusNotFound, ErrResourceNotFound)
		}

		log.Error().Err(err).Uint64("resourceID", id).Msg("failed to set resource groups")

		return handler.Fail(c, fiber.StatusInternalServerError, err)
	}

	groups, err := s.deps.ACL.ResourceGroups(ctx, id)
	if err != nil {
		return handler.Fail(c, fiber.StatusInternalServerError, err)
	}

	log.Info().Uint64("resourceID", id).Uints("groups", groups).Msg("resource groups updated")

	return c.JSON(fiber.Map{"id": id, "groups": groups})
}

func (s *Service) useRowLevel(c *fiber.Ctx) (bool, error) {
	if s.deps.Flags == nil {
		return false, nil
	}

	on, err := s.deps.Flags.UseRowLevel(c.UserContext())
	if err != nil {
		log.Error().Err(err).Msg("failed to read row-level setting")
		return false, err
	}

	return on, nil
}

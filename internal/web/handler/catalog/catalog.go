// Package catalog serves the permission catalog: the permission keys roles
// are built from and the groups they are shown in.
//
// Every change purges the role permission cache because a renamed, disabled
// or deleted key changes what existing roles grant.
package catalog

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/evocms-community/evo-authz/internal/db/controller/catalog"
	"github.com/evocms-community/evo-authz/internal/db/models"
	"github.com/evocms-community/evo-authz/internal/permission"
	"github.com/evocms-community/evo-authz/internal/web/handler"
)

const (
	// PermissionsPath is the base path of the permission keys API.
	PermissionsPath = handler.APIPath + "/roles/permissions"
	// PermissionPathID addresses a single permission.
	PermissionPathID = PermissionsPath + "/:" + handler.ParamID + "<int>"
	// GroupsPath is the base path of the permission groups API.
	GroupsPath = handler.APIPath + "/roles/groups"
	// GroupPathID addresses a single permission group.
	GroupPathID = GroupsPath + "/:" + handler.ParamID + "<int>"
)

// PermissionInput creates or updates a permission.
type PermissionInput struct {
	Key      string `json:"key"      validate:"required,max=191"`
	Name     string `json:"name"     validate:"required,max=255"`
	LangKey  string `json:"langKey"  validate:"max=255"`
	GroupID  uint   `json:"groupId"`
	Disabled bool   `json:"disabled"`
}

// GroupInput creates or renames a permission group.
type GroupInput struct {
	Name    string `json:"name"    validate:"required,max=191"`
	LangKey string `json:"langKey" validate:"max=255"`
}

// Service is the catalog handler service.
type Service struct {
	handler.Service
	deps *handler.Deps
}

// Handler is the catalog handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init registers the routes.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || !deps.Valid() {
		return errors.New(handler.ErrNilDepsFatalLogMsg)
	}

	s.deps = deps

	handler.Register(app, deps, fiber.MethodGet, PermissionsPath, permission.RouteRolePermissionsIndex, s.PermissionIndex)
	handler.Register(app, deps, fiber.MethodPost, PermissionsPath, permission.RouteRolePermissionsStore, s.PermissionStore)
	handler.Register(app, deps, fiber.MethodPut, PermissionPathID, permission.RouteRolePermissionsUpdate, s.PermissionUpdate)
	handler.Register(app, deps, fiber.MethodDelete, PermissionPathID, permission.RouteRolePermissionsDestroy, s.PermissionDestroy)

	handler.Register(app, deps, fiber.MethodGet, GroupsPath, permission.RouteRoleGroupsIndex, s.GroupIndex)
	handler.Register(app, deps, fiber.MethodPost, GroupsPath, permission.RouteRoleGroupsStore, s.GroupStore)
	handler.Register(app, deps, fiber.MethodPut, GroupPathID, permission.RouteRoleGroupsUpdate, s.GroupUpdate)
	handler.Register(app, deps, fiber.MethodDelete, GroupPathID, permission.RouteRoleGroupsDestroy, s.GroupDestroy)

	return nil
}

// PermissionIndex lists every permission, disabled ones included.
func (s *Service) PermissionIndex(c *fiber.Ctx) error {
	perms, err := catalog.ListPermissions(s.deps.DB.WithContext(c.UserContext()))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(perms)
}

// PermissionStore adds a permission key.
func (s *Service) PermissionStore(c *fiber.Ctx) error {
	var in PermissionInput
	if ok, err := handler.Bind(c, s.deps.Validator, &in); !ok {
		return err
	}

	p := in.model()
	if err := catalog.CreatePermission(s.deps.DB.WithContext(c.UserContext()), &p); err != nil {
		return fail(c, err)
	}

	s.purge(c.UserContext())

	return c.Status(fiber.StatusCreated).JSON(p)
}

// PermissionUpdate edits a permission; a new key is carried over to the roles holding the old one.
func (s *Service) PermissionUpdate(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return handler.Fail(c, fiber.StatusBadRequest, err)
	}

	var in PermissionInput
	if ok, bindErr := handler.Bind(c, s.deps.Validator, &in); !ok {
		return bindErr
	}

	p, err := catalog.UpdatePermission(s.deps.DB.WithContext(c.UserContext()), id, in.model())
	if err != nil {
		return fail(c, err)
	}

	s.purge(c.UserContext())

	return c.JSON(p)
}

// PermissionDestroy removes a permission and its role assignments.
func (s *Service) PermissionDestroy(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return handler.Fail(c, fiber.StatusBadRequest, err)
	}

	if err = catalog.DeletePermission(s.deps.DB.WithContext(c.UserContext()), id); err != nil {
		return fail(c, err)
	}

	s.purge(c.UserContext())

	return c.SendStatus(fiber.StatusNoContent)
}

// GroupIndex lists the permission groups.
func (s *Service) GroupIndex(c *fiber.Ctx) error {
	groups, err := catalog.ListGroups(s.deps.DB.WithContext(c.UserContext()))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(groups)
}

// GroupStore creates a permission group.
func (s *Service) GroupStore(c *fiber.Ctx) error {
	var in GroupInput
	if ok, err := handler.Bind(c, s.deps.Validator, &in); !ok {
		return err
	}

	g, err := catalog.CreateGroup(s.deps.DB.WithContext(c.UserContext()), in.Name, in.LangKey)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(g)
}

// GroupUpdate renames a permission group.
func (s *Service) GroupUpdate(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return handler.Fail(c, fiber.StatusBadRequest, err)
	}

	var in GroupInput
	if ok, bindErr := handler.Bind(c, s.deps.Validator, &in); !ok {
		return bindErr
	}

	g, err := catalog.UpdateGroup(s.deps.DB.WithContext(c.UserContext()), id, in.Name, in.LangKey)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(g)
}

// GroupDestroy deletes an empty permission group.
func (s *Service) GroupDestroy(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return handler.Fail(c, fiber.StatusBadRequest, err)
	}

	if err = catalog.DeleteGroup(s.deps.DB.WithContext(c.UserContext()), id); err != nil {
		return fail(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Service) purge(ctx context.Context) {
	if err := s.deps.Auth.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("role cache not purged after catalog change")
	}
}

func (in PermissionInput) model() models.Permission {
	return models.Permission{
		Key:      in.Key,
		Name:     in.Name,
		LangKey:  in.LangKey,
		GroupID:  in.GroupID,
		Disabled: in.Disabled,
	}
}

func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, catalog.ErrPermissionNotFound), errors.Is(err, catalog.ErrGroupNotFound):
		return handler.Fail(c, fiber.StatusNotFound, err)
	case errors.Is(err, catalog.ErrPermissionKeyEmpty), errors.Is(err, catalog.ErrGroupNameEmpty):
		return handler.Fail(c, fiber.StatusUnprocessableEntity, err)
	case errors.Is(err, catalog.ErrPermissionAlreadyExists),
		errors.Is(err, catalog.ErrGroupAlreadyExists),
		errors.Is(err, catalog.ErrGroupInUse):
		return handler.Fail(c, fiber.StatusConflict, err)
	default:
		log.Error().Err(err).Msg("catalog operation failed")
		return handler.Fail(c, fiber.StatusInternalServerError, err)
	}
}

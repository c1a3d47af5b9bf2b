// Package users serves the access side of manager users: their role,
// member groups and the permissions that follow from them.
package users

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/evocms-community/evo-authz/internal/auth"
	"github.com/evocms-community/evo-authz/internal/permission"
	"github.com/evocms-community/evo-authz/internal/web/handler"
)

const (
	// PathID addresses a single user.
	PathID = handler.APIPath + "/users/:" + handler.ParamID + "<int>"
	// PathAccess returns what a user may do.
	PathAccess = PathID + "/access"
	// PathRole sets the role of a user.
	PathRole = PathID + "/role"
	// PathGroups sets the member groups of a user.
	PathGroups = PathID + "/groups"
)

// Access is what a user may do.
type Access struct {
	UserID         uint64   `json:"userId"`
	Username       string   `json:"username"`
	RoleID         uint     `json:"roleId"`
	Blocked        bool     `json:"blocked"`
	Permissions    []string `json:"permissions"`
	MemberGroups   []uint   `json:"memberGroups"`
	DocumentGroups []uint   `json:"documentGroups"`
}

// RoleInput assigns a role. Role 0 removes it.
type RoleInput struct {
	RoleID uint `json:"roleId"`
}

// GroupsInput replaces the member groups of a user.
type GroupsInput struct {
	Groups []uint `json:"groups" validate:"dive,min=1"`
}

// Service is the users handler service.
type Service struct {
	handler.Service
	deps *handler.Deps
}

// Handler is the users handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init registers the routes.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || !deps.Valid() || deps.Local == nil || deps.ACL == nil {
		return errors.New(handler.ErrNilDepsFatalLogMsg)
	}

	s.deps = deps

	handler.Register(app, deps, fiber.MethodGet, PathAccess, permission.RouteUsersAccess, s.Access)
	handler.Register(app, deps, fiber.MethodPut, PathRole, permission.RouteUsersRoleUpdate, s.UpdateRole)
	handler.Register(app, deps, fiber.MethodPut, PathGroups, permission.RouteUsersGroupsUpdate, s.UpdateGroups)

	return nil
}

// Access returns the role, keys and groups of a user.
func (s *Service) Access(c *fiber.Ctx) error {
	id, err := handler.ParseID64(c)
	if err != nil {
		return handler.Fail(c, fiber.StatusBadRequest, err)
	}

	out, err := s.load(c, id)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(out)
}

// UpdateRole assigns a role to a user.
func (s *Service) UpdateRole(c *fiber.Ctx) error {
	id, err := handler.ParseID64(c)
	if err != nil {
		return handler.Fail(c, fiber.StatusBadRequest, err)
	}

	var in RoleInput
	if ok, bindErr := handler.Bind(c, s.deps.Validator, &in); !ok {
		return bindErr
	}

	if err = s.deps.Auth.AssignRole(c.UserContext(), id, in.RoleID); err != nil {
		return fail(c, err)
	}

	log.Info().Uint64("userID", id).Uint("roleID", in.RoleID).Msg("role assigned")

	out, err := s.load(c, id)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(out)
}

// UpdateGroups replaces the member groups of a user.
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

	if _, err = s.deps.Local.GetUserByID(ctx, id); err != nil {
		return fail(c, err)
	}

	if err = s.deps.ACL.SetUserGroups(ctx, id, in.Groups); err != nil {
		return fail(c, err)
	}

	out, err := s.load(c, id)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(out)
}

func (s *Service) load(c *fiber.Ctx, id uint64) (*Access, error) {
	ctx := c.UserContext()

	user, err := s.deps.Local.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	perms, err := s.deps.Auth.PermissionsForRole(ctx, user.Attributes.Role)
	if err != nil {
		return nil, err
	}

	memberGroups, err := s.deps.ACL.UserGroups(ctx, id)
	if err != nil {
		return nil, err
	}

	documentGroups, err := s.deps.ACL.GroupsForUser(ctx, id)
	if err != nil {
		return nil, err
	}

	return &Access{
		UserID:         user.ID,
		Username:       user.Username,
		RoleID:         user.Attributes.Role,
		Blocked:        user.Attributes.Blocked,
		Permissions:    perms.Strings(),
		MemberGroups:   memberGroups,
		DocumentGroups: documentGroups,
	}, nil
}

func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, auth.ErrUserNotFound):
		return handler.Fail(c, fiber.StatusNotFound, err)
	case errors.Is(err, auth.ErrRoleNotFound):
		return handler.Fail(c, fiber.StatusUnprocessableEntity, err)
	default:
		log.Error().Err(err).Msg("user access operation failed")
		return handler.Fail(c, fiber.StatusInternalServerError, err)
	}
}

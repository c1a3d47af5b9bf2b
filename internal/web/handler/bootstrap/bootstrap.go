// Package bootstrap serves what the manager frontend needs right after login.
package bootstrap

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/evocms-community/evo-authz/internal/db/controller/role"
	"github.com/evocms-community/evo-authz/internal/permission"
	"github.com/evocms-community/evo-authz/internal/web/handler"
	"github.com/evocms-community/evo-authz/internal/web/middleware/auth"
)

// Path is the path of the bootstrap endpoint.
const Path = handler.APIPath + "/bootstrap"

// Role is the role part of the bootstrap answer.
type Role struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// Output is the bootstrap response body.
type Output struct {
	UserID                 uint64   `json:"userId"`
	Username               string   `json:"username"`
	Role                   *Role    `json:"role"`
	Permissions            []string `json:"permissions"`
	UseRowLevelPermissions bool     `json:"useRowLevelPermissions"`
	DocumentGroups         []uint   `json:"documentGroups"`
}

// Service is the bootstrap handler service.
type Service struct {
	handler.Service
	deps *handler.Deps
}

// Handler is the bootstrap handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init registers the route.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || !deps.Valid() || deps.ACL == nil {
		return errors.New(handler.ErrNilDepsFatalLogMsg)
	}

	s.deps = deps

	handler.Register(app, deps, fiber.MethodGet, Path, permission.RouteBootstrap, s.Get)

	return nil
}

// Get returns the current user, role, permission keys and document groups.
func (s *Service) Get(c *fiber.Ctx) error {
	ctx := c.UserContext()
	roleID := auth.RoleID(c)
	userID := auth.UserID(c)

	out := Output{
		UserID:         userID,
		Username:       auth.Username(c),
		Permissions:    []string{},
		DocumentGroups: []uint{},
	}

	if roleID != 0 {
		r, err := role.Get(s.deps.DB.WithContext(ctx), roleID)

		switch {
		case errors.Is(err, role.ErrRoleNotFound):
			log.Warn().Uint64("userID", userID).Uint("roleID", roleID).Msg("user holds a deleted role")
		case err != nil:
			log.Error().Err(err).Msg("failed to load role")
			return handler.Fail(c, fiber.StatusInternalServerError, err)
		default:
			out.Role = &Role{ID: r.ID, Name: r.Name}
		}
	}

	perms, err := s.deps.Auth.PermissionsForRole(ctx, roleID)
	if err != nil {
		log.Error().Err(err).Msg("failed to load permissions")
		return handler.Fail(c, fiber.StatusInternalServerError, err)
	}

	out.Permissions = perms.Strings()

	if s.deps.Flags != nil {
		if out.UseRowLevelPermissions, err = s.deps.Flags.UseRowLevel(ctx); err != nil {
			log.Error().Err(err).Msg("failed to read row-level setting")
			return handler.Fail(c, fiber.StatusInternalServerError, err)
		}
	}

	groups, err := s.deps.ACL.GroupsForUser(ctx, userID)
	if err != nil {
		log.Error().Err(err).Msg("failed to load document groups")
		return handler.Fail(c, fiber.StatusInternalServerError, err)
	}

	out.DocumentGroups = groups

	return c.JSON(out)
}

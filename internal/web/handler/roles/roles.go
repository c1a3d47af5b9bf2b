// Package roles serves the manager roles API.
package roles

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/evocms-community/evo-authz/internal/db/controller/role"
	"github.com/evocms-community/evo-authz/internal/permission"
	"github.com/evocms-community/evo-authz/internal/web/handler"
)

const (
	// Path is the base path of the roles API.
	Path = handler.APIPath + "/roles"
	// PathID addresses a single role.
	PathID = Path + "/:" + handler.ParamID + "<int>"
)

// Input creates or updates a role. Permissions, when not nil, replace the role's keys.
type Input struct {
	Name        string    `json:"name"                  validate:"required,max=50"`
	Description string    `json:"description"           validate:"max=255"`
	Permissions *[]string `json:"permissions,omitempty" validate:"omitempty,dive,max=50"`
}

// Output is a role with its permission keys.
type Output struct {
	ID          uint     `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
	Users       int64    `json:"users"`
}

// Service is the roles handler service.
type Service struct {
	handler.Service
	deps *handler.Deps
}

// Handler is the roles handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init registers the routes.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || !deps.Valid() {
		return errors.New(handler.ErrNilDepsFatalLogMsg)
	}

	s.deps = deps

	handler.Register(app, deps, fiber.MethodGet, Path, permission.RouteRolesIndex, s.Index)
	handler.Register(app, deps, fiber.MethodPost, Path, permission.RouteRolesStore, s.Store)
	handler.Register(app, deps, fiber.MethodGet, PathID, permission.RouteRolesShow, s.Show)
	handler.Register(app, deps, fiber.MethodPut, PathID, permission.RouteRolesUpdate, s.Update)
	handler.Register(app, deps, fiber.MethodDelete, PathID, permission.RouteRolesDestroy, s.Destroy)

	return nil
}

// Index lists all roles without their keys.
func (s *Service) Index(c *fiber.Ctx) error {
	list, err := role.List(s.deps.DB.WithContext(c.UserContext()))
	if err != nil {
		log.Error().Err(err).Msg("failed to list roles")
		return handler.Fail(c, fiber.StatusInternalServerError, err)
	}

	out := make([]Output, 0, len(list))
	for _, r := range list {
		out = append(out, Output{ID: r.ID, Name: r.Name, Description: r.Description, Permissions: []string{}})
	}

	return c.JSON(out)
}

// Show returns one role with its keys and the number of users holding it.
func (s *Service) Show(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return handler.Fail(c, fiber.StatusBadRequest, err)
	}

	out, err := s.load(c, id)
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(out)
}

// Store creates a role.
func (s *Service) Store(c *fiber.Ctx) error {
	var in Input
	if ok, err := handler.Bind(c, s.deps.Validator, &in); !ok {
		return err
	}

	db := s.deps.DB.WithContext(c.UserContext())

	r, err := role.CreateWithPermissions(db, in.Name, in.Description, in.Permissions)
	if err != nil {
		return s.fail(c, err)
	}

	log.Info().Uint("roleID", r.ID).Str("name", r.Name).Msg("role created")

	out, err := s.load(c, r.ID)
	if err != nil {
		return s.fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update renames a role and optionally replaces its keys.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return handler.Fail(c, fiber.StatusBadRequest, err)
	}

	var in Input
	if ok, bindErr := handler.Bind(c, s.deps.Validator, &in); !ok {
		return bindErr
	}

	ctx := c.UserContext()
	db := s.deps.DB.WithContext(ctx)

	if _, err = role.UpdateWithPermissions(db, id, in.Name, in.Description, in.Permissions); err != nil {
		return s.fail(c, err)
	}

	if in.Permissions != nil {
		if err = s.deps.Auth.Invalidate(ctx, id); err != nil {
			log.Warn().Err(err).Uint("roleID", id).Msg("role cache not invalidated")
		}
	}

	out, err := s.load(c, id)
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(out)
}

// Destroy deletes a role that no user holds.
func (s *Service) Destroy(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return handler.Fail(c, fiber.StatusBadRequest, err)
	}

	ctx := c.UserContext()

	if err = role.Delete(s.deps.DB.WithContext(ctx), id); err != nil {
		return s.fail(c, err)
	}

	if err = s.deps.Auth.Invalidate(ctx, id); err != nil {
		log.Warn().Err(err).Uint("roleID", id).Msg("role cache not invalidated")
	}

	log.Info().Uint("roleID", id).Msg("role deleted")

	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Service) load(c *fiber.Ctx, id uint) (*Output, error) {
	db := s.deps.DB.WithContext(c.UserContext())

	r, err := role.Get(db, id)
	if err != nil {
		return nil, err
	}

	keys, err := role.Permissions(db, id)
	if err != nil {
		return nil, err
	}

	users, err := role.CountUsers(db, id)
	if err != nil {
		return nil, err
	}

	return &Output{ID: r.ID, Name: r.Name, Description: r.Description, Permissions: keys, Users: users}, nil
}

func (*Service) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, role.ErrRoleNotFound):
		return handler.Fail(c, fiber.StatusNotFound, err)
	case errors.Is(err, role.ErrRoleNameEmpty), errors.Is(err, role.ErrUnknownPermission):
		return handler.Fail(c, fiber.StatusUnprocessableEntity, err)
	case errors.Is(err, role.ErrRoleAlreadyExists), errors.Is(err, role.ErrRoleInUse), errors.Is(err, role.ErrSystemRole):
		return handler.Fail(c, fiber.StatusConflict, err)
	default:
		log.Error().Err(err).Msg("role operation failed")
		return handler.Fail(c, fiber.StatusInternalServerError, err)
	}
}

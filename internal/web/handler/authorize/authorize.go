// Package authorize exposes the authorization gate to other manager components.
package authorize

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/evocms-community/evo-authz/internal/gate"
	"github.com/evocms-community/evo-authz/internal/permission"
	"github.com/evocms-community/evo-authz/internal/web/handler"
)

// Path is the path of the authorize endpoint.
const Path = handler.APIPath + "/authorize"

// Input asks whether a user may call a route.
// A missing roleId is resolved from the user, a missing
// useRowLevelPermissions from the system settings.
type Input struct {
	UserID                 uint64  `json:"userId"                           validate:"required"`
	RoleID                 *uint   `json:"roleId,omitempty"`
	Route                  string  `json:"route"                            validate:"required,max=191"`
	ResourceID             *uint64 `json:"resourceId,omitempty"             validate:"omitempty,min=1"`
	UseRowLevelPermissions *bool   `json:"useRowLevelPermissions,omitempty"`
}

// Service is the authorize handler service.
type Service struct {
	handler.Service
	deps *handler.Deps
}

// Handler is the authorize handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init registers the route.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || !deps.Valid() {
		return errors.New(handler.ErrNilDepsFatalLogMsg)
	}

	s.deps = deps

	handler.Register(app, deps, fiber.MethodPost, Path, permission.RouteAuthorize, s.Post)

	return nil
}

// Post evaluates the request and returns the decision, allowed or not, with status 200.
func (s *Service) Post(c *fiber.Ctx) error {
	var in Input
	if ok, err := handler.Bind(c, s.deps.Validator, &in); !ok {
		return err
	}

	ctx := c.UserContext()
	req := gate.Request{
		UserID:     in.UserID,
		Route:      in.Route,
		ResourceID: in.ResourceID,
	}

	if in.RoleID != nil {
		req.RoleID = *in.RoleID
	} else {
		roleID, err := s.deps.Auth.RoleOf(ctx, in.UserID)
		if err != nil {
			log.Error().Err(err).Uint64("userID", in.UserID).Msg("failed to resolve role")
			return handler.Fail(c, fiber.StatusInternalServerError, err)
		}

		req.RoleID = roleID
	}

	switch {
	case in.UseRowLevelPermissions != nil:
		req.UseRowLevel = *in.UseRowLevelPermissions
	case s.deps.Flags != nil:
		on, err := s.deps.Flags.UseRowLevel(ctx)
		if err != nil {
			log.Error().Err(err).Msg("failed to read row-level setting")
			return handler.Fail(c, fiber.StatusInternalServerError, err)
		}

		req.UseRowLevel = on
	}

	d, err := s.deps.Gate.Authorize(ctx, req)
	if err != nil {
		log.Error().Err(err).Str("route", in.Route).Msg("authorization failed")
		return handler.Fail(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(d)
}

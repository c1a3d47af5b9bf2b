// Package settings serves the system settings API, including the
// use_udperms switch that turns document-group checks on.
package settings

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/evocms-community/evo-authz/internal/db/controller/setting"
	"github.com/evocms-community/evo-authz/internal/db/models"
	"github.com/evocms-community/evo-authz/internal/permission"
	"github.com/evocms-community/evo-authz/internal/web/handler"
)

// Path is the settings API.
const Path = handler.APIPath + "/settings"

// Input upserts the listed settings. Settings not listed are left alone.
type Input struct {
	Settings map[string]string `json:"settings" validate:"required,min=1,dive,keys,required,max=50,endkeys"`
}

// Service is the settings handler service.
type Service struct {
	handler.Service
	deps *handler.Deps
}

// Handler is the settings handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init registers the routes.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || !deps.Valid() {
		return errors.New(handler.ErrNilDepsFatalLogMsg)
	}

	s.deps = deps

	handler.Register(app, deps, fiber.MethodGet, Path, permission.RouteSettingsIndex, s.Index)
	handler.Register(app, deps, fiber.MethodPut, Path, permission.RouteSettingsUpdate, s.Update)

	return nil
}

// Index lists every setting ordered by name.
func (s *Service) Index(c *fiber.Ctx) error {
	list, err := setting.GetAll(s.deps.DB.WithContext(c.UserContext()))
	if err != nil {
		log.Error().Err(err).Msg("failed to list settings")
		return handler.Fail(c, fiber.StatusInternalServerError, err)
	}

	if list == nil {
		list = []models.SystemSetting{}
	}

	return c.JSON(list)
}

// Update writes all given settings or none of them.
func (s *Service) Update(c *fiber.Ctx) error {
	var in Input
	if ok, err := handler.Bind(c, s.deps.Validator, &in); !ok {
		return err
	}

	out, err := setting.SetAll(s.deps.DB.WithContext(c.UserContext()), in.Settings)

	switch {
	case errors.Is(err, setting.ErrSettingNameEmpty):
		return handler.Fail(c, fiber.StatusUnprocessableEntity, err)
	case err != nil:
		log.Error().Err(err).Msg("failed to update settings")
		return handler.Fail(c, fiber.StatusInternalServerError, err)
	}

	for _, st := range out {
		log.Info().Str("name", st.Name).Str("value", st.Value).Msg("setting updated")
	}

	return c.JSON(out)
}

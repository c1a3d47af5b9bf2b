// Package login starts manager sessions.
package login

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/evocms-community/evo-authz/internal/auth"
	"github.com/evocms-community/evo-authz/internal/config"
	"github.com/evocms-community/evo-authz/internal/web/handler"
	"github.com/evocms-community/evo-authz/internal/web/session"
)

const (
	// Path is the path of the login endpoint.
	Path = handler.APIPath + "/auth/login"

	// RouteName is the route name of the login endpoint.
	RouteName = "manager.api.auth.login"
)

// Input is the login request body.
type Input struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required"`
}

// Output is the login response body.
type Output struct {
	UserID   uint64 `json:"userId"`
	Username string `json:"username"`
	RoleID   uint   `json:"roleId"`
}

// Service is the login handler service.
type Service struct {
	handler.Service
	cfg  *config.Config
	deps *handler.Deps
}

// Handler is the login handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init initializes the login handler.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || !deps.Valid() || deps.Local == nil {
		return errors.New(handler.ErrNilDepsFatalLogMsg)
	}

	s.cfg = deps.Config
	s.deps = deps

	// no guard: there is no session yet
	app.Post(Path, s.Post).Name(RouteName)

	return nil
}

// Post checks the credentials and sets the session cookie.
func (s *Service) Post(c *fiber.Ctx) error {
	var in Input
	if ok, err := handler.Bind(c, s.deps.Validator, &in); !ok {
		return err
	}

	user, err := s.deps.Local.Authenticate(c.UserContext(), in.Username, in.Password)

	switch {
	case errors.Is(err, auth.ErrUserNotFound), errors.Is(err, auth.ErrInvalidPassword):
		log.Info().Str("username", in.Username).Msg("failed login")
		return handler.Fail(c, fiber.StatusUnauthorized, ErrInvalidCredentials)
	case errors.Is(err, auth.ErrUserAccountDisabled):
		log.Info().Str("username", in.Username).Msg("blocked user tried to log in")
		return handler.Fail(c, fiber.StatusForbidden, ErrAccountBlocked)
	case err != nil:
		log.Error().Err(err).Msg("login failed")
		return handler.Fail(c, fiber.StatusInternalServerError, ErrInternalServerError)
	}

	sessionID, err := session.GenerateSessionID()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate session ID")
		return handler.Fail(c, fiber.StatusInternalServerError, ErrInternalServerError)
	}

	userSession := &session.Data{
		UserID:   user.ID,
		Username: user.Username,
		Started:  time.Now(),
	}

	expiry := s.cfg.Webserver.Session.ExpiryTime

	if err = userSession.Write(sessionID, expiry); err != nil {
		log.Error().Err(err).Msg("failed to write session")
		return handler.Fail(c, fiber.StatusInternalServerError, ErrInternalServerError)
	}

	cookie := &fiber.Cookie{
		Name:     session.CookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(expiry.Seconds()),
		Secure:   !s.cfg.DevMode,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	}

	c.Cookie(cookie)

	log.Info().Uint64("userID", user.ID).Str("username", user.Username).Msg("user logged in")

	return c.JSON(Output{
		UserID:   user.ID,
		Username: user.Username,
		RoleID:   user.Attributes.Role,
	})
}

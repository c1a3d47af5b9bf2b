package auth

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	loggerfiber "github.com/evocms-community/evo-authz/internal/logger/adapter/fiber"
	"github.com/evocms-community/evo-authz/internal/web/session"
)

const (
	// LocalUserID holds the uint64 id of the logged in user.
	LocalUserID = loggerfiber.LocalUserID
	// LocalRoleID holds the uint role id of the logged in user.
	LocalRoleID = "roleID"
	// LocalUsername holds the username of the logged in user.
	LocalUsername = "username"
)

// RoleResolver returns the current role of a user.
type RoleResolver interface {
	RoleOf(ctx context.Context, userID uint64) (uint, error)
}

// Config defines the config for the middleware.
type Config struct {
	// Next defines a function to skip this middleware when it returns true.
	Next func(c *fiber.Ctx) bool

	// Roles resolves the role of the session user on every request.
	Roles RoleResolver
}

type errorBody struct {
	Error string `json:"error"`
}

// New creates the session middleware.
func New(cfg Config) fiber.Handler {
	if cfg.Roles == nil {
		panic("auth middleware needs a role resolver")
	}

	return func(c *fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(c) {
			return c.Next()
		}

		data := new(session.Data)
		if err := data.Read(c.Cookies(session.CookieName)); err != nil || data.UserID == 0 {
			if err != nil && !errors.Is(err, session.ErrNoSession) {
				log.Error().Err(err).Msg("failed to read session")
			}

			return c.Status(fiber.StatusUnauthorized).JSON(errorBody{Error: "authentication required"})
		}

		roleID, err := cfg.Roles.RoleOf(c.UserContext(), data.UserID)
		if err != nil {
			log.Error().Err(err).Uint64("userID", data.UserID).Msg("failed to resolve role")
			return c.Status(fiber.StatusInternalServerError).JSON(errorBody{Error: "failed to resolve role"})
		}

		c.Locals(LocalUserID, data.UserID)
		c.Locals(LocalUsername, data.Username)
		c.Locals(LocalRoleID, roleID)

		return c.Next()
	}
}

// UserID returns the id of the logged in user, or 0.
func UserID(c *fiber.Ctx) uint64 {
	id, _ := c.Locals(LocalUserID).(uint64)
	return id
}

// RoleID returns the role of the logged in user, or 0.
func RoleID(c *fiber.Ctx) uint {
	id, _ := c.Locals(LocalRoleID).(uint)
	return id
}

// Username returns the username of the logged in user.
func Username(c *fiber.Ctx) string {
	name, _ := c.Locals(LocalUsername).(string)
	return name
}

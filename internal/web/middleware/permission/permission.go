// Package permission guards manager routes with the authorization gate.
package permission

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/evocms-community/evo-authz/internal/gate"
	"github.com/evocms-community/evo-authz/internal/web/middleware/auth"
)

// LocalDecision holds the gate.Decision of the current request.
const LocalDecision = "decision"

// FlagSource reports whether row-level permissions are enabled.
type FlagSource interface {
	UseRowLevel(ctx context.Context) (bool, error)
}

// Denial is the body of a 403 response.
type Denial struct {
	Allowed bool        `json:"allowed"`
	Reason  gate.Reason `json:"reason"`
	Route   string      `json:"route"`
}

type errorBody struct {
	Error string `json:"error"`
}

type options struct {
	resourceParam string
	flags         FlagSource
}

// Option configures a guard.
type Option func(*options)

// WithResourceParam names the path parameter that carries the resource id.
func WithResourceParam(name string) Option {
	return func(o *options) {
		o.resourceParam = name
	}
}

// WithFlags sets where the row-level switch is read from.
// Without it the document group check never runs.
func WithFlags(flags FlagSource) Option {
	return func(o *options) {
		o.flags = flags
	}
}

// Require returns a handler that lets the request through only if g allows route
// for the logged in user.
func Require(g *gate.Gate, route string, opts ...Option) fiber.Handler {
	if g == nil {
		panic("permission guard needs a gate")
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	return func(c *fiber.Ctx) error {
		req := gate.Request{
			UserID: auth.UserID(c),
			RoleID: auth.RoleID(c),
			Route:  route,
		}

		if o.resourceParam != "" {
			raw := c.Params(o.resourceParam)

			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil || id == 0 {
				return c.Status(fiber.StatusBadRequest).JSON(errorBody{Error: "invalid " + o.resourceParam})
			}

			req.ResourceID = &id
		}

		if req.ResourceID != nil && o.flags != nil {
			on, err := o.flags.UseRowLevel(c.UserContext())
			if err != nil {
				log.Error().Err(err).Str("route", route).Msg("failed to read row-level setting")
				return c.Status(fiber.StatusInternalServerError).JSON(errorBody{Error: "authorization failed"})
			}

			req.UseRowLevel = on
		}

		d, err := g.Authorize(c.UserContext(), req)
		if err != nil {
			log.Error().Err(err).Str("route", route).Uint64("userID", req.UserID).Msg("authorization failed")
			return c.Status(fiber.StatusInternalServerError).JSON(errorBody{Error: "authorization failed"})
		}

		c.Locals(LocalDecision, d)

		if d.UnknownRoute && d.Allowed {
			log.Warn().Str("route", route).Msg("route is not in the permission registry")
		}

		if !d.Allowed {
			log.Info().
				Str("route", route).
				Uint64("userID", req.UserID).
				Uint("roleID", req.RoleID).
				Str("reason", string(d.Reason)).
				Msg("access denied")

			return c.Status(fiber.StatusForbidden).JSON(Denial{Allowed: false, Reason: d.Reason, Route: route})
		}

		return c.Next()
	}
}

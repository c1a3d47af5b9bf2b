package handler

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/evocms-community/evo-authz/internal/web/middleware/permission"
)

var (
	// ErrInvalidID is returned when the id path parameter is not a positive integer.
	ErrInvalidID = errors.New("invalid id")
	// ErrInvalidBody is returned when the request body cannot be parsed.
	ErrInvalidBody = errors.New("invalid request body")
)

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// Fail writes an ErrorResponse with the given status.
func Fail(c *fiber.Ctx, status int, err error) error {
	return c.Status(status).JSON(ErrorResponse{Error: err.Error()})
}

// ParseID reads the id path parameter.
func ParseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params(ParamID), 10, 32)
	if err != nil || id == 0 {
		return 0, ErrInvalidID
	}

	return uint(id), nil
}

// ParseID64 reads the id path parameter as a 64 bit id.
func ParseID64(c *fiber.Ctx) (uint64, error) {
	id, err := strconv.ParseUint(c.Params(ParamID), 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidID
	}

	return id, nil
}

// Bind parses the JSON body into v and validates it.
// On failure it writes the 400 response itself and returns a non-nil error
// that the handler should return as is.
func Bind(c *fiber.Ctx, validate *validator.Validate, v any) (bool, error) {
	if err := c.BodyParser(v); err != nil {
		return false, Fail(c, fiber.StatusBadRequest, ErrInvalidBody)
	}

	if validate == nil {
		return true, nil
	}

	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return false, Fail(c, fiber.StatusBadRequest, err)
		}

		details := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
		}

		return false, c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation failed",
			Details: details,
		})
	}

	return true, nil
}

// Register adds a named manager route guarded by the registry entry of the same name.
func Register(app *fiber.App, deps *Deps, method, path, name string, h fiber.Handler, opts ...permission.Option) {
	if deps.Flags != nil {
		opts = append([]permission.Option{permission.WithFlags(deps.Flags)}, opts...)
	}

	app.Add(method, path, permission.Require(deps.Gate, name, opts...), h).Name(name)
}

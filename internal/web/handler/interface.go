package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/evocms-community/evo-authz/internal/acl"
	"github.com/evocms-community/evo-authz/internal/auth"
	"github.com/evocms-community/evo-authz/internal/config"
	"github.com/evocms-community/evo-authz/internal/db/controller/setting"
	"github.com/evocms-community/evo-authz/internal/gate"
)

// Deps are the services shared by all handlers.
type Deps struct {
	Config    *config.Config
	DB        *gorm.DB
	Auth      *auth.Service
	Local     *auth.LocalProvider
	ACL       *acl.Service
	Gate      *gate.Gate
	Flags     *setting.Flags
	Validator *validator.Validate
}

// Valid reports whether the dependencies every handler needs are set.
func (d *Deps) Valid() bool {
	return d != nil && d.Config != nil && d.DB != nil && d.Auth != nil && d.Gate != nil
}

// Service is the interface for a web handler service.
type Service interface {
	Init(app *fiber.App, deps *Deps) error
}

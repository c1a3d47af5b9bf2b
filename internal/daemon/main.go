// Package daemon wires the database, caches and services and runs the web service.
package daemon

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/evocms-community/evo-authz/internal/acl"
	"github.com/evocms-community/evo-authz/internal/auth"
	"github.com/evocms-community/evo-authz/internal/cache"
	"github.com/evocms-community/evo-authz/internal/config"
	"github.com/evocms-community/evo-authz/internal/db/controller/setting"
	"github.com/evocms-community/evo-authz/internal/gate"
	"github.com/evocms-community/evo-authz/internal/web"
	"github.com/evocms-community/evo-authz/internal/web/handler"
	"github.com/evocms-community/evo-authz/internal/web/session"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	db         *gorm.DB
	sessions   fiber.Storage
	webService *web.Service
}

// Start runs the web service until SIGINT or SIGTERM.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	addr := fmt.Sprintf(":%d", d.cfg.Webserver.Port)
	log.Info().Str("addr", addr).Msg("starting web service")

	err := d.webService.Start(addr)

	d.close()

	return err
}

func (d *Daemon) close() {
	if d.sessions != nil {
		if err := d.sessions.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close session storage")
		}
	}

	if sqlDB, err := d.db.DB(); err == nil {
		if err = sqlDB.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close database")
		}
	}
}

// Services are the authorization services built from the configuration.
type Services struct {
	Auth  *auth.Service
	Local *auth.LocalProvider
	ACL   *acl.Service
	Gate  *gate.Gate
	Flags *setting.Flags
}

// NewServices builds the authorization services over db.
func NewServices(cfg *config.Config, db *gorm.DB) (*Services, error) {
	store, err := cache.New(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("failed to create role cache: %w", err)
	}

	authService := auth.NewService(db, auth.WithCache(store))
	aclService := acl.NewService(db)

	return &Services{
		Auth:  authService,
		Local: auth.NewLocalProvider(db),
		ACL:   aclService,
		Gate:  gate.New(nil, authService, aclService, gate.WithStrictRoutes(cfg.ACL.StrictRoutes)),
		Flags: setting.NewFlags(db, cfg.ACL.RowLevelSetting),
	}, nil
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, config.ErrConfigNil
	}

	db, err := OpenDB(cfg)
	if err != nil {
		return nil, err
	}

	if err = Migrate(db); err != nil {
		return nil, err
	}

	if err = Seed(db); err != nil {
		return nil, err
	}

	sessions, err := newSessionStorage(cfg)
	if err != nil {
		return nil, err
	}

	session.Init(sessions)

	svc, err := NewServices(cfg, db)
	if err != nil {
		return nil, err
	}

	deps := &handler.Deps{
		Config:    cfg,
		DB:        db,
		Auth:      svc.Auth,
		Local:     svc.Local,
		ACL:       svc.ACL,
		Gate:      svc.Gate,
		Flags:     svc.Flags,
		Validator: validator.New(validator.WithRequiredStructEnabled()),
	}

	return &Daemon{
		cfg:        cfg,
		db:         db,
		sessions:   sessions,
		webService: web.New(deps),
	}, nil
}

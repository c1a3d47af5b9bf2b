// Package web runs the manager API: session login, the route guard and the
// handlers that manage roles, permissions and document access.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	loggerfiber "github.com/evocms-community/evo-authz/internal/logger/adapter/fiber"
	"github.com/evocms-community/evo-authz/internal/web/handler"
	"github.com/evocms-community/evo-authz/internal/web/handler/access"
	"github.com/evocms-community/evo-authz/internal/web/handler/authorize"
	"github.com/evocms-community/evo-authz/internal/web/handler/bootstrap"
	"github.com/evocms-community/evo-authz/internal/web/handler/catalog"
	"github.com/evocms-community/evo-authz/internal/web/handler/login"
	"github.com/evocms-community/evo-authz/internal/web/handler/logout"
	"github.com/evocms-community/evo-authz/internal/web/handler/resources"
	"github.com/evocms-community/evo-authz/internal/web/handler/roles"
	"github.com/evocms-community/evo-authz/internal/web/handler/settings"
	"github.com/evocms-community/evo-authz/internal/web/handler/users"
	"github.com/evocms-community/evo-authz/internal/web/middleware/auth"
)

const (
	// CheckAlivePath answers load balancer health checks.
	CheckAlivePath = "/checkalive"
	// MetricsPath exposes prometheus metrics.
	MetricsPath = "/metrics"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	deps         *handler.Deps
	fastShutDown bool
	alive        atomic.Bool
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for SIGINT or SIGTERM and stops the server.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.deps.Config.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.deps.Config.Webserver.ShutDownTime) * time.Second)
	}

	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		if err := s.App.Shutdown(); err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// Alive reports whether the service accepts traffic.
func (s *Service) Alive() bool {
	return s.alive.Load()
}

// handlers lists every API handler in registration order.
func handlers() []handler.Service {
	return []handler.Service{
		&login.Handler,
		&logout.Handler,
		&bootstrap.Handler,
		&authorize.Handler,
		&roles.Handler,
		&catalog.Handler,
		&access.Handler,
		&resources.Handler,
		&users.Handler,
		&settings.Handler,
	}
}

// New creates the web service. deps must be complete; a missing dependency panics.
func New(deps *handler.Deps) *Service {
	if !deps.Valid() {
		panic(handler.ErrNilDepsFatalLogMsg)
	}

	if deps.Validator == nil {
		deps.Validator = validator.New(validator.WithRequiredStructEnabled())
	}

	cfg := deps.Config

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        cfg.Title,
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
			StrictRouting:  false,
		},
	)

	service := &Service{
		App:          app,
		deps:         deps,
		fastShutDown: cfg.DevMode,
	}
	service.alive.Store(true)

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New(recover.Config{EnableStackTrace: cfg.DevMode}))
	}

	app.Use(requestid.New(requestid.Config{
		Generator:  uuid.NewString,
		ContextKey: loggerfiber.LocalRequestID,
	}))

	app.Use(loggerfiber.New(loggerfiber.Config{
		Config:        cfg.Log,
		CheckAliveURI: CheckAlivePath,
	}))

	app.Get(CheckAlivePath, service.checkAlive)
	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	app.Use(auth.New(auth.Config{
		Next:  isPublicPath,
		Roles: deps.Auth,
	}))

	for _, h := range handlers() {
		if err := h.Init(app, deps); err != nil {
			log.Fatal().Err(err).Msgf("failed to init handler %T", h)
		}
	}

	return service
}

func (s *Service) checkAlive(c *fiber.Ctx) error {
	if !s.alive.Load() {
		return c.SendStatus(fiber.StatusServiceUnavailable)
	}

	return c.SendString("OK")
}

// isPublicPath reports whether a request may pass without a session.
func isPublicPath(c *fiber.Ctx) bool {
	switch c.Path() {
	case login.Path, logout.Path, CheckAlivePath, MetricsPath:
		return true
	}

	return !strings.HasPrefix(c.Path(), handler.APIPath+"/")
}

// Package webtest builds handler dependencies and sessions for HTTP tests.
package webtest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage/memory/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/evocms-community/evo-authz/internal/acl"
	"github.com/evocms-community/evo-authz/internal/auth"
	"github.com/evocms-community/evo-authz/internal/cache"
	"github.com/evocms-community/evo-authz/internal/config"
	"github.com/evocms-community/evo-authz/internal/db/controller/catalog"
	"github.com/evocms-community/evo-authz/internal/db/controller/role"
	"github.com/evocms-community/evo-authz/internal/db/controller/setting"
	"github.com/evocms-community/evo-authz/internal/db/dbtest"
	"github.com/evocms-community/evo-authz/internal/db/models"
	"github.com/evocms-community/evo-authz/internal/gate"
	"github.com/evocms-community/evo-authz/internal/permission"
	"github.com/evocms-community/evo-authz/internal/web/handler"
	authmw "github.com/evocms-community/evo-authz/internal/web/middleware/auth"
	"github.com/evocms-community/evo-authz/internal/web/session"
)

// Password is the password of users created by Manager.
const Password = "secret"

// Deps returns complete handler dependencies over a fresh in-memory database
// and points the session store at a fresh memory storage.
func Deps(t *testing.T, opts ...gate.Option) (*handler.Deps, *memory.Storage) {
	t.Helper()

	db := dbtest.Open(t)

	store := memory.New(memory.Config{GCInterval: time.Minute})
	t.Cleanup(func() { _ = store.Close() })
	session.Init(store)

	authService := auth.NewService(db)
	aclService := acl.NewService(db)

	deps := &handler.Deps{
		Config: &config.Config{
			DevMode: true,
			Title:   "evo-authz test",
			Webserver: config.Webserver{
				Session: config.Session{ExpiryTime: time.Hour},
			},
		},
		DB:        db,
		Auth:      authService,
		Local:     auth.NewLocalProvider(db),
		ACL:       aclService,
		Gate:      gate.New(nil, authService, aclService, opts...),
		Flags:     setting.NewFlags(db, ""),
		Validator: validator.New(validator.WithRequiredStructEnabled()),
	}

	return deps, store
}

// UseCache rebuilds the role and gate services of deps on top of store.
// Call it before App.
func UseCache(deps *handler.Deps, store cache.Store, opts ...gate.Option) {
	deps.Auth = auth.NewService(deps.DB, auth.WithCache(store))
	deps.Gate = gate.New(nil, deps.Auth, deps.ACL, opts...)
}

// SeedCatalog loads the permission catalog and an administrator role holding every key.
func SeedCatalog(t *testing.T, db *gorm.DB) {
	t.Helper()

	require.NoError(t, catalog.Seed(db, permission.Catalog()))
	dbtest.Seed(t, db, &models.Role{ID: models.AdminRoleID, Name: "Administrator"})
	require.NoError(t, role.SetPermissions(db, models.AdminRoleID, permission.CatalogKeys()))
}

// Manager creates a manager user holding roleID and logs them in.
func Manager(t *testing.T, deps *handler.Deps, username string, roleID uint) (*models.User, *http.Cookie) {
	t.Helper()

	u, err := deps.Local.CreateUser(context.Background(), username, Password, username, "", roleID)
	require.NoError(t, err)

	return u, Login(t, u.ID, u.Username)
}

// App returns a fiber app behind the session middleware with services registered.
func App(t *testing.T, deps *handler.Deps, services ...handler.Service) *fiber.App {
	t.Helper()

	app := fiber.New(fiber.Config{Immutable: true})
	app.Use(authmw.New(authmw.Config{Roles: deps.Auth}))

	for _, s := range services {
		require.NoError(t, s.Init(app, deps))
	}

	return app
}

// Login writes a session for userID and returns its cookie.
func Login(t *testing.T, userID uint64, username string) *http.Cookie {
	t.Helper()

	id, err := session.GenerateSessionID()
	require.NoError(t, err)

	data := &session.Data{UserID: userID, Username: username, Started: time.Now()}
	require.NoError(t, data.Write(id, time.Hour))

	return &http.Cookie{Name: session.CookieName, Value: id}
}

// Do sends a request with an optional JSON body and cookie.
func Do(t *testing.T, app *fiber.App, method, target string, body any, cookie *http.Cookie) *http.Response {
	t.Helper()

	var reader io.Reader

	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	if cookie != nil {
		req.AddCookie(cookie)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	t.Cleanup(func() { _ = resp.Body.Close() })

	return resp
}

// Sessions returns the number of sessions held by store.
func Sessions(store *memory.Storage) int {
	return len(store.Conn())
}

// Decode reads the JSON body of resp into v.
func Decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()

	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

package roles

import (
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evocms-community/evo-authz/internal/cache"
	"github.com/evocms-community/evo-authz/internal/db/controller/role"
	"github.com/evocms-community/evo-authz/internal/db/dbtest"
	"github.com/evocms-community/evo-authz/internal/db/models"
	"github.com/evocms-community/evo-authz/internal/web/handler"
	"github.com/evocms-community/evo-authz/internal/web/webtest"
)

const editorRole uint = 2

type fixture struct {
	app    *fiber.App
	deps   *handler.Deps
	admin  *http.Cookie
	editor *http.Cookie
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	deps, _ := webtest.Deps(t)
	webtest.UseCache(deps, cache.NewMemory(16, time.Minute))
	webtest.SeedCatalog(t, deps.DB)

	dbtest.Seed(t, deps.DB, &models.Role{ID: editorRole, Name: "Editor"})
	require.NoError(t, role.SetPermissions(deps.DB, editorRole, []string{"view_document"}))

	_, admin := webtest.Manager(t, deps, "admin", models.AdminRoleID)
	_, editor := webtest.Manager(t, deps, "editor", editorRole)

	return &fixture{
		app:    webtest.App(t, deps, &Service{}),
		deps:   deps,
		admin:  admin,
		editor: editor,
	}
}

func roleNames(t *testing.T, f *fixture) []string {
	t.Helper()

	resp := webtest.Do(t, f.app, fiber.MethodGet, Path, nil, f.admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []Output
	webtest.Decode(t, resp, &list)

	names := make([]string, 0, len(list))
	for _, r := range list {
		names = append(names, r.Name)
	}

	return names
}

func TestStore(t *testing.T) {
	f := newFixture(t)

	testCases := []struct {
		name           string
		body           map[string]any
		expectedStatus int
		expectedKeys   []string
	}{
		{
			name:           "unknown key",
			body:           map[string]any{"name": "Publisher", "permissions": []string{"view_document", "no_such_key"}},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "retry with valid keys",
			body:           map[string]any{"name": "Publisher", "permissions": []string{"publish_document", "view_document"}},
			expectedStatus: http.StatusCreated,
			expectedKeys:   []string{"publish_document", "view_document"},
		},
		{
			name:           "duplicate name",
			body:           map[string]any{"name": "Editor"},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "missing name",
			body:           map[string]any{"description": "nameless"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "without keys",
			body:           map[string]any{"name": "Viewer"},
			expectedStatus: http.StatusCreated,
			expectedKeys:   []string{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := webtest.Do(t, f.app, fiber.MethodPost, Path, tc.body, f.admin)
			require.Equal(t, tc.expectedStatus, resp.StatusCode)

			if tc.expectedStatus != http.StatusCreated {
				return
			}

			var out Output
			webtest.Decode(t, resp, &out)
			assert.NotZero(t, out.ID)
			assert.Equal(t, tc.body["name"], out.Name)
			assert.ElementsMatch(t, tc.expectedKeys, out.Permissions)
		})
	}

	assert.Equal(t, []string{"Administrator", "Editor", "Publisher", "Viewer"}, roleNames(t, f))
}

func TestUpdateRejectedKeepsRole(t *testing.T) {
	f := newFixture(t)
	target := handler.APIPath + "/roles/2"

	resp := webtest.Do(t, f.app, fiber.MethodPut, target,
		map[string]any{"name": "Renamed", "permissions": []string{"no_such_key"}}, f.admin)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = webtest.Do(t, f.app, fiber.MethodGet, target, nil, f.admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out Output
	webtest.Decode(t, resp, &out)
	assert.Equal(t, "Editor", out.Name)
	assert.Equal(t, []string{"view_document"}, out.Permissions)
	assert.Equal(t, int64(1), out.Users)

	resp = webtest.Do(t, f.app, fiber.MethodPut, target, map[string]any{"name": "Administrator"}, f.admin)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = webtest.Do(t, f.app, fiber.MethodPut, handler.APIPath+"/roles/99", map[string]any{"name": "Ghost"}, f.admin)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateInvalidatesCachedPermissions(t *testing.T) {
	f := newFixture(t)

	// the denial loads and caches the editor's keys
	resp := webtest.Do(t, f.app, fiber.MethodGet, Path, nil, f.editor)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = webtest.Do(t, f.app, fiber.MethodPut, handler.APIPath+"/roles/2",
		map[string]any{"name": "Editor", "permissions": []string{"edit_role", "view_document"}}, f.admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = webtest.Do(t, f.app, fiber.MethodGet, Path, nil, f.editor)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = webtest.Do(t, f.app, fiber.MethodPut, handler.APIPath+"/roles/2",
		map[string]any{"name": "Editor", "permissions": []string{}}, f.admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = webtest.Do(t, f.app, fiber.MethodGet, Path, nil, f.editor)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "revoked keys stop working at once")
}

func TestDestroy(t *testing.T) {
	f := newFixture(t)
	dbtest.Seed(t, f.deps.DB, &models.Role{ID: 5, Name: "Unused"})

	testCases := []struct {
		name           string
		target         string
		expectedStatus int
	}{
		{name: "administrator", target: handler.APIPath + "/roles/1", expectedStatus: http.StatusConflict},
		{name: "assigned to a user", target: handler.APIPath + "/roles/2", expectedStatus: http.StatusConflict},
		{name: "unused", target: handler.APIPath + "/roles/5", expectedStatus: http.StatusNoContent},
		{name: "already gone", target: handler.APIPath + "/roles/5", expectedStatus: http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := webtest.Do(t, f.app, fiber.MethodDelete, tc.target, nil, f.admin)
			assert.Equal(t, tc.expectedStatus, resp.StatusCode)
		})
	}

	assert.Equal(t, []string{"Administrator", "Editor"}, roleNames(t, f))

	resp := webtest.Do(t, f.app, fiber.MethodDelete, handler.APIPath+"/roles/2", nil, f.editor)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

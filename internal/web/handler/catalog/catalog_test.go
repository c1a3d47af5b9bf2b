package catalog

import (
	"fmt"
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

func newTestApp(t *testing.T) (*fiber.App, *handler.Deps, *http.Cookie, *http.Cookie) {
	t.Helper()

	deps, _ := webtest.Deps(t)
	webtest.UseCache(deps, cache.NewMemory(16, time.Minute))
	webtest.SeedCatalog(t, deps.DB)

	dbtest.Seed(t, deps.DB, &models.Role{ID: editorRole, Name: "Editor"})
	require.NoError(t, role.SetPermissions(deps.DB, editorRole, []string{"edit_role"}))

	_, admin := webtest.Manager(t, deps, "admin", models.AdminRoleID)
	_, editor := webtest.Manager(t, deps, "editor", editorRole)

	return webtest.App(t, deps, &Service{}), deps, admin, editor
}

func permissionID(t *testing.T, deps *handler.Deps, key string) uint {
	t.Helper()

	var p models.Permission
	require.NoError(t, deps.DB.Where("permissions.key = ?", key).First(&p).Error)

	return p.ID
}

func TestPermissionLifecycle(t *testing.T) {
	app, deps, admin, _ := newTestApp(t)

	resp := webtest.Do(t, app, fiber.MethodPost, GroupsPath, GroupInput{Name: "News"}, admin)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var group models.PermissionGroup
	webtest.Decode(t, resp, &group)

	testCases := []struct {
		name           string
		body           PermissionInput
		expectedStatus int
	}{
		{
			name:           "new key",
			body:           PermissionInput{Key: "edit_news", Name: "Edit news", GroupID: group.ID},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "duplicate key",
			body:           PermissionInput{Key: "edit_news", Name: "Again"},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "unknown group",
			body:           PermissionInput{Key: "drop_news", Name: "Drop news", GroupID: 999},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "blank key",
			body:           PermissionInput{Key: "   ", Name: "Blank"},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "missing name",
			body:           PermissionInput{Key: "nameless"},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := webtest.Do(t, app, fiber.MethodPost, PermissionsPath, tc.body, admin)
			assert.Equal(t, tc.expectedStatus, resp.StatusCode)
		})
	}

	require.NoError(t, role.SetPermissions(deps.DB, editorRole, []string{"edit_news", "edit_role"}))

	id := permissionID(t, deps, "edit_news")
	target := fmt.Sprintf("%s/%d", PermissionsPath, id)

	resp = webtest.Do(t, app, fiber.MethodPut, target,
		PermissionInput{Key: "manage_news", Name: "Manage news", GroupID: group.ID}, admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	keys, err := role.Permissions(deps.DB, editorRole)
	require.NoError(t, err)
	assert.Equal(t, []string{"edit_role", "manage_news"}, keys, "a renamed key follows its roles")

	groupTarget := fmt.Sprintf("%s/%d", GroupsPath, group.ID)

	resp = webtest.Do(t, app, fiber.MethodDelete, groupTarget, nil, admin)
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "the group still holds manage_news")

	resp = webtest.Do(t, app, fiber.MethodDelete, target, nil, admin)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	keys, err = role.Permissions(deps.DB, editorRole)
	require.NoError(t, err)
	assert.Equal(t, []string{"edit_role"}, keys)

	resp = webtest.Do(t, app, fiber.MethodDelete, groupTarget, nil, admin)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = webtest.Do(t, app, fiber.MethodDelete, target, nil, admin)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDisablingKeyPurgesCache(t *testing.T) {
	app, deps, admin, editor := newTestApp(t)

	resp := webtest.Do(t, app, fiber.MethodGet, GroupsPath, nil, editor)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	target := fmt.Sprintf("%s/%d", PermissionsPath, permissionID(t, deps, "edit_role"))
	disabled := PermissionInput{Key: "edit_role", Name: "Edit roles", Disabled: true}

	resp = webtest.Do(t, app, fiber.MethodPut, target, disabled, admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var p models.Permission
	webtest.Decode(t, resp, &p)
	assert.True(t, p.Disabled)

	resp = webtest.Do(t, app, fiber.MethodGet, GroupsPath, nil, editor)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "a disabled key no longer grants access")

	disabled.Disabled = false

	resp = webtest.Do(t, app, fiber.MethodPut, target, disabled, admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = webtest.Do(t, app, fiber.MethodGet, GroupsPath, nil, editor)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

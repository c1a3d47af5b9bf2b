package users

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evocms-community/evo-authz/internal/db/controller/role"
	"github.com/evocms-community/evo-authz/internal/db/dbtest"
	"github.com/evocms-community/evo-authz/internal/db/models"
	"github.com/evocms-community/evo-authz/internal/web/handler"
	"github.com/evocms-community/evo-authz/internal/web/webtest"
)

const editorRole uint = 2

func TestUserAccess(t *testing.T) {
	deps, _ := webtest.Deps(t)
	webtest.SeedCatalog(t, deps.DB)

	dbtest.Seed(t, deps.DB,
		&models.Role{ID: editorRole, Name: "Editor"},
		&models.MemberGroupName{ID: 3, Name: "Editors"},
		&models.MemberGroupName{ID: 4, Name: "Archive"},
		&models.DocumentGroupName{ID: 7, Name: "Internal"},
		&models.MemberGroupAccess{MemberGroup: 3, DocumentGroup: 7, Context: models.ContextManager},
		&models.MemberGroupAccess{MemberGroup: 4, DocumentGroup: 7, Context: models.ContextWeb},
	)
	require.NoError(t, role.SetPermissions(deps.DB, editorRole, []string{"view_document"}))

	_, admin := webtest.Manager(t, deps, "admin", models.AdminRoleID)
	editor, editorCookie := webtest.Manager(t, deps, "editor", 0)

	app := webtest.App(t, deps, &Service{})
	base := fmt.Sprintf("%s/users/%d", handler.APIPath, editor.ID)

	access := func(t *testing.T, resp *http.Response) Access {
		t.Helper()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var out Access
		webtest.Decode(t, resp, &out)

		return out
	}

	out := access(t, webtest.Do(t, app, fiber.MethodGet, base+"/access", nil, admin))
	assert.Equal(t, "editor", out.Username)
	assert.Zero(t, out.RoleID)
	assert.Empty(t, out.Permissions)

	resp := webtest.Do(t, app, fiber.MethodGet, base+"/access", nil, editorCookie)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "a user without role may not look")

	roleCases := []struct {
		name           string
		roleID         uint
		expectedStatus int
	}{
		{name: "unknown role", roleID: 99, expectedStatus: http.StatusUnprocessableEntity},
		{name: "editor", roleID: editorRole, expectedStatus: http.StatusOK},
	}

	for _, tc := range roleCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := webtest.Do(t, app, fiber.MethodPut, base+"/role", RoleInput{RoleID: tc.roleID}, admin)
			assert.Equal(t, tc.expectedStatus, resp.StatusCode)
		})
	}

	out = access(t, webtest.Do(t, app, fiber.MethodGet, base+"/access", nil, admin))
	assert.Equal(t, editorRole, out.RoleID)
	assert.Equal(t, []string{"view_document"}, out.Permissions)

	groupCases := []struct {
		name              string
		groups            []uint
		expectedMembers   []uint
		expectedDocuments []uint
	}{
		{name: "manager relation", groups: []uint{3}, expectedMembers: []uint{3}, expectedDocuments: []uint{7}},
		{name: "web relation only", groups: []uint{4, 4}, expectedMembers: []uint{4}},
		{name: "cleared", groups: []uint{}},
	}

	for _, tc := range groupCases {
		t.Run(tc.name, func(t *testing.T) {
			out := access(t, webtest.Do(t, app, fiber.MethodPut, base+"/groups", GroupsInput{Groups: tc.groups}, admin))
			assert.ElementsMatch(t, tc.expectedMembers, out.MemberGroups)
			assert.ElementsMatch(t, tc.expectedDocuments, out.DocumentGroups)
		})
	}

	missing := handler.APIPath + "/users/999"

	resp = webtest.Do(t, app, fiber.MethodGet, missing+"/access", nil, admin)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = webtest.Do(t, app, fiber.MethodPut, missing+"/groups", GroupsInput{Groups: []uint{3}}, admin)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = webtest.Do(t, app, fiber.MethodPut, base+"/groups", GroupsInput{Groups: []uint{0}}, admin)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

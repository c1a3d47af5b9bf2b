package permission

import "sync"

// Route names served by this service.
const (
	RouteBootstrap = "manager.api.bootstrap"
	RouteAuthorize = "manager.api.authorize"

	RouteRolesIndex   = "manager.api.roles.index"
	RouteRolesStore   = "manager.api.roles.store"
	RouteRolesShow    = "manager.api.roles.show"
	RouteRolesUpdate  = "manager.api.roles.update"
	RouteRolesDestroy = "manager.api.roles.destroy"

	RouteRolePermissionsIndex   = "manager.api.roles.permissions.index"
	RouteRolePermissionsStore   = "manager.api.roles.permissions.store"
	RouteRolePermissionsUpdate  = "manager.api.roles.permissions.update"
	RouteRolePermissionsDestroy = "manager.api.roles.permissions.destroy"

	RouteRoleGroupsIndex   = "manager.api.roles.groups.index"
	RouteRoleGroupsStore   = "manager.api.roles.groups.store"
	RouteRoleGroupsUpdate  = "manager.api.roles.groups.update"
	RouteRoleGroupsDestroy = "manager.api.roles.groups.destroy"

	RouteMemberGroupsIndex   = "manager.api.permissions.groups.index"
	RouteMemberGroupsStore   = "manager.api.permissions.groups.store"
	RouteMemberGroupsUpdate  = "manager.api.permissions.groups.update"
	RouteMemberGroupsDestroy = "manager.api.permissions.groups.destroy"

	RouteDocumentGroupsIndex   = "manager.api.permissions.resources.index"
	RouteDocumentGroupsStore   = "manager.api.permissions.resources.store"
	RouteDocumentGroupsUpdate  = "manager.api.permissions.resources.update"
	RouteDocumentGroupsDestroy = "manager.api.permissions.resources.destroy"

	RouteRelationsIndex   = "manager.api.permissions.relations.index"
	RouteRelationsStore   = "manager.api.permissions.relations.store"
	RouteRelationsDestroy = "manager.api.permissions.relations.destroy"

	RouteResourcesIndex        = "manager.api.resources.index"
	RouteResourcesShow         = "manager.api.resources.show"
	RouteResourcesGroupsUpdate = "manager.api.resources.groups.update"

	RouteUsersAccess       = "manager.api.users.access"
	RouteUsersRoleUpdate   = "manager.api.users.role.update"
	RouteUsersGroupsUpdate = "manager.api.users.groups.update"

	RouteSettingsIndex  = "manager.api.settings.index"
	RouteSettingsUpdate = "manager.api.settings.update"
)

// elementEditors may open template variables, which are shared by all element types.
var elementEditors = []Key{EditTemplate, EditSnippet, EditChunk, EditPlugin} //nolint:gochecknoglobals

var (
	defaultOnce     sync.Once //nolint:gochecknoglobals
	defaultRegistry *Registry //nolint:gochecknoglobals
)

// Default returns the registry of the manager API.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := NewRegistry(DefaultRoutes())
		if err != nil {
			panic(err)
		}

		defaultRegistry = r
	})

	return defaultRegistry
}

// DefaultRoutes returns a fresh copy of the manager route table.
// Every listed key set uses any-of semantics.
func DefaultRoutes() map[string]Policy { //nolint:funlen,maintidx
	return map[string]Policy{
		RouteBootstrap: Public(),
		RouteAuthorize: AnyOf(AccessPermissions, EditRole),

		"manager.api.dashboard.index":  AnyOf(Home),
		"manager.api.cache.clear":      AnyOf(EmptyCache),
		RouteSettingsIndex:             AnyOf(Settings),
		RouteSettingsUpdate:            AnyOf(Settings),
		"manager.api.eventlog.index":   AnyOf(ViewEventlog),
		"manager.api.eventlog.destroy": AnyOf(DeleteEventlog),
		"manager.api.logs.index":       AnyOf(Logs),

		RouteResourcesIndex:             AnyOf(ViewDocument, EditDocument),
		RouteResourcesShow:              AnyOf(ViewDocument, EditDocument),
		"manager.api.resources.tree":    AnyOf(ViewDocument, EditDocument),
		"manager.api.resources.store":   AnyOf(NewDocument),
		"manager.api.resources.update":  AnyOf(SaveDocument),
		"manager.api.resources.publish": AnyOf(PublishDocument),
		"manager.api.resources.move":    AnyOf(MoveDocument),
		"manager.api.resources.destroy": AnyOf(DeleteDocument),
		RouteResourcesGroupsUpdate:      AnyOf(SaveDocument),

		"manager.api.templates.index":   AnyOf(EditTemplate),
		"manager.api.templates.list":    AnyOf(EditTemplate),
		"manager.api.templates.tree":    AnyOf(EditTemplate),
		"manager.api.templates.show":    AnyOf(EditTemplate),
		"manager.api.templates.tvs":     AnyOf(EditTemplate),
		"manager.api.templates.store":   AnyOf(NewTemplate),
		"manager.api.templates.update":  AnyOf(SaveTemplate),
		"manager.api.templates.destroy": AnyOf(DeleteTemplate),

		"manager.api.tvs.index":   AnyOf(elementEditors...),
		"manager.api.tvs.list":    AnyOf(elementEditors...),
		"manager.api.tvs.tree":    AnyOf(elementEditors...),
		"manager.api.tvs.show":    AnyOf(elementEditors...),
		"manager.api.tvs.types":   AnyOf(elementEditors...),
		"manager.api.tvs.sort":    AnyOf(SaveTemplate),
		"manager.api.tvs.store":   AnyOf(NewTemplate),
		"manager.api.tvs.update":  AnyOf(SaveTemplate),
		"manager.api.tvs.destroy": AnyOf(DeleteTemplate),

		"manager.api.chunks.index":   AnyOf(EditChunk),
		"manager.api.chunks.list":    AnyOf(EditChunk),
		"manager.api.chunks.tree":    AnyOf(EditChunk),
		"manager.api.chunks.show":    AnyOf(EditChunk),
		"manager.api.chunks.store":   AnyOf(NewChunk),
		"manager.api.chunks.update":  AnyOf(SaveChunk),
		"manager.api.chunks.destroy": AnyOf(DeleteChunk),

		"manager.api.snippets.index":   AnyOf(EditSnippet),
		"manager.api.snippets.list":    AnyOf(EditSnippet),
		"manager.api.snippets.tree":    AnyOf(EditSnippet),
		"manager.api.snippets.show":    AnyOf(EditSnippet),
		"manager.api.snippets.store":   AnyOf(NewSnippet),
		"manager.api.snippets.update":  AnyOf(SaveSnippet),
		"manager.api.snippets.destroy": AnyOf(DeleteSnippet),

		"manager.api.plugins.index":   AnyOf(EditPlugin),
		"manager.api.plugins.list":    AnyOf(EditPlugin),
		"manager.api.plugins.tree":    AnyOf(EditPlugin),
		"manager.api.plugins.show":    AnyOf(EditPlugin),
		"manager.api.plugins.sort":    AnyOf(SavePlugin),
		"manager.api.plugins.store":   AnyOf(NewPlugin),
		"manager.api.plugins.update":  AnyOf(SavePlugin),
		"manager.api.plugins.destroy": AnyOf(DeletePlugin),

		"manager.api.modules.index":   AnyOf(EditModule, ExecModule),
		"manager.api.modules.list":    AnyOf(EditModule, ExecModule),
		"manager.api.modules.tree":    AnyOf(EditModule, ExecModule),
		"manager.api.modules.show":    AnyOf(EditModule),
		"manager.api.modules.run":     AnyOf(ExecModule),
		"manager.api.modules.store":   AnyOf(NewModule),
		"manager.api.modules.update":  AnyOf(SaveModule),
		"manager.api.modules.destroy": AnyOf(DeleteModule),

		"manager.api.categories.index":   AnyOf(CategoryManager),
		"manager.api.categories.list":    AnyOf(CategoryManager),
		"manager.api.categories.tree":    AnyOf(CategoryManager),
		"manager.api.categories.show":    AnyOf(CategoryManager),
		"manager.api.categories.sort":    AnyOf(CategoryManager),
		"manager.api.categories.store":   AnyOf(CategoryManager),
		"manager.api.categories.update":  AnyOf(CategoryManager),
		"manager.api.categories.destroy": AnyOf(CategoryManager),

		"manager.api.users.index":   AnyOf(EditUser),
		"manager.api.users.list":    AnyOf(EditUser),
		"manager.api.users.show":    AnyOf(EditUser),
		"manager.api.users.store":   AnyOf(NewUser),
		"manager.api.users.update":  AnyOf(SaveUser),
		"manager.api.users.destroy": AnyOf(DeleteUser),
		RouteUsersAccess:            AnyOf(EditUser),
		RouteUsersRoleUpdate:        AnyOf(SaveUser),
		RouteUsersGroupsUpdate:      AnyOf(SaveUser, AccessPermissions),

		RouteRolesIndex:   AnyOf(EditRole),
		RouteRolesShow:    AnyOf(EditRole),
		RouteRolesStore:   AnyOf(NewRole),
		RouteRolesUpdate:  AnyOf(SaveRole),
		RouteRolesDestroy: AnyOf(DeleteRole),

		RouteRolePermissionsIndex:   AnyOf(EditRole),
		RouteRolePermissionsStore:   AnyOf(SaveRole),
		RouteRolePermissionsUpdate:  AnyOf(SaveRole),
		RouteRolePermissionsDestroy: AnyOf(SaveRole),

		RouteRoleGroupsIndex:   AnyOf(EditRole),
		RouteRoleGroupsStore:   AnyOf(SaveRole),
		RouteRoleGroupsUpdate:  AnyOf(SaveRole),
		RouteRoleGroupsDestroy: AnyOf(SaveRole),

		RouteMemberGroupsIndex:   AnyOf(AccessPermissions),
		RouteMemberGroupsStore:   AnyOf(AccessPermissions),
		RouteMemberGroupsUpdate:  AnyOf(AccessPermissions),
		RouteMemberGroupsDestroy: AnyOf(AccessPermissions),

		RouteDocumentGroupsIndex:   AnyOf(AccessPermissions),
		RouteDocumentGroupsStore:   AnyOf(AccessPermissions),
		RouteDocumentGroupsUpdate:  AnyOf(AccessPermissions),
		RouteDocumentGroupsDestroy: AnyOf(AccessPermissions),

		RouteRelationsIndex:   AnyOf(AccessPermissions),
		RouteRelationsStore:   AnyOf(AccessPermissions),
		RouteRelationsDestroy: AnyOf(AccessPermissions),

		"manager.api.filemanager.index":  AnyOf(FileManager, AssetsFiles, AssetsImages),
		"manager.api.filemanager.tree":   AnyOf(FileManager, AssetsFiles, AssetsImages),
		"manager.api.filemanager.show":   AnyOf(FileManager, AssetsFiles, AssetsImages),
		"manager.api.filemanager.update": AnyOf(FileManager),
	}
}

package permission

// Permission keys define the available permissions of the manager.
// They are seeded into the permissions table at install time and referenced
// by role assignments and the route registry.
const (
	// Frames allows using the manager at all.
	Frames Key = "frames"
	// Home allows viewing the manager welcome screen.
	Home Key = "home"
	// ViewEventlog allows viewing the system event log.
	ViewEventlog Key = "view_eventlog"
	// DeleteEventlog allows clearing the system event log.
	DeleteEventlog Key = "delete_eventlog"
	// Logs allows viewing manager action logs.
	Logs Key = "logs"
	// Settings allows changing system settings.
	Settings Key = "settings"
	// EmptyCache allows clearing the site cache.
	EmptyCache Key = "empty_cache"

	// ViewDocument allows viewing resources in the tree.
	ViewDocument Key = "view_document"
	// NewDocument allows creating resources.
	NewDocument Key = "new_document"
	// EditDocument allows opening resources for editing.
	EditDocument Key = "edit_document"
	// SaveDocument allows saving resources, including their permissions tab.
	SaveDocument Key = "save_document"
	// PublishDocument allows publishing and unpublishing resources.
	PublishDocument Key = "publish_document"
	// DeleteDocument allows deleting resources.
	DeleteDocument Key = "delete_document"
	// MoveDocument allows moving resources within the tree.
	MoveDocument Key = "move_document"

	// NewTemplate allows creating templates and template variables.
	NewTemplate Key = "new_template"
	// EditTemplate allows opening templates and template variables.
	EditTemplate Key = "edit_template"
	// SaveTemplate allows saving templates and template variables.
	SaveTemplate Key = "save_template"
	// DeleteTemplate allows deleting templates and template variables.
	DeleteTemplate Key = "delete_template"

	// NewSnippet allows creating snippets.
	NewSnippet Key = "new_snippet"
	// EditSnippet allows opening snippets.
	EditSnippet Key = "edit_snippet"
	// SaveSnippet allows saving snippets.
	SaveSnippet Key = "save_snippet"
	// DeleteSnippet allows deleting snippets.
	DeleteSnippet Key = "delete_snippet"

	// NewChunk allows creating chunks.
	NewChunk Key = "new_chunk"
	// EditChunk allows opening chunks.
	EditChunk Key = "edit_chunk"
	// SaveChunk allows saving chunks.
	SaveChunk Key = "save_chunk"
	// DeleteChunk allows deleting chunks.
	DeleteChunk Key = "delete_chunk"

	// NewPlugin allows creating plugins.
	NewPlugin Key = "new_plugin"
	// EditPlugin allows opening plugins.
	EditPlugin Key = "edit_plugin"
	// SavePlugin allows saving plugins and their event order.
	SavePlugin Key = "save_plugin"
	// DeletePlugin allows deleting plugins.
	DeletePlugin Key = "delete_plugin"

	// NewModule allows creating modules.
	NewModule Key = "new_module"
	// EditModule allows opening modules.
	EditModule Key = "edit_module"
	// SaveModule allows saving modules.
	SaveModule Key = "save_module"
	// DeleteModule allows deleting modules.
	DeleteModule Key = "delete_module"
	// ExecModule allows running modules.
	ExecModule Key = "exec_module"

	// CategoryManager allows managing element categories.
	CategoryManager Key = "category_manager"

	// NewUser allows creating manager users.
	NewUser Key = "new_user"
	// EditUser allows opening manager users.
	EditUser Key = "edit_user"
	// SaveUser allows saving manager users, their role and their member groups.
	SaveUser Key = "save_user"
	// DeleteUser allows deleting manager users.
	DeleteUser Key = "delete_user"

	// NewRole allows creating roles.
	NewRole Key = "new_role"
	// EditRole allows viewing roles and the permission catalog.
	EditRole Key = "edit_role"
	// SaveRole allows saving roles, role permissions and the permission catalog.
	SaveRole Key = "save_role"
	// DeleteRole allows deleting roles.
	DeleteRole Key = "delete_role"

	// AccessPermissions allows managing document groups, member groups and their links.
	AccessPermissions Key = "access_permissions"

	// FileManager allows using the file manager.
	FileManager Key = "file_manager"
	// AssetsFiles allows browsing the files asset folder.
	AssetsFiles Key = "assets_files"
	// AssetsImages allows browsing the images asset folder.
	AssetsImages Key = "assets_images"
)

// Permission groups used to organize the catalog.
const (
	GroupSite        = "site"
	GroupDocuments   = "documents"
	GroupTemplates   = "templates"
	GroupSnippets    = "snippets"
	GroupChunks      = "chunks"
	GroupPlugins     = "plugins"
	GroupModules     = "modules"
	GroupCategories  = "categories"
	GroupUsers       = "users"
	GroupRoles       = "roles"
	GroupPermissions = "permissions"
	GroupFiles       = "files"
)

// CatalogEntry describes one seeded permission.
type CatalogEntry struct {
	Key   Key
	Group string
	Name  string
}

// LangKey returns the translation key used by the manager UI.
func (e CatalogEntry) LangKey() string {
	return "role_" + string(e.Key)
}

var catalog = []CatalogEntry{ //nolint:gochecknoglobals
	{Frames, GroupSite, "Use the manager"},
	{Home, GroupSite, "View welcome screen"},
	{ViewEventlog, GroupSite, "View event log"},
	{DeleteEventlog, GroupSite, "Clear event log"},
	{Logs, GroupSite, "View manager logs"},
	{Settings, GroupSite, "Change system settings"},
	{EmptyCache, GroupSite, "Clear site cache"},

	{ViewDocument, GroupDocuments, "View resources"},
	{NewDocument, GroupDocuments, "Create resources"},
	{EditDocument, GroupDocuments, "Edit resources"},
	{SaveDocument, GroupDocuments, "Save resources"},
	{PublishDocument, GroupDocuments, "Publish resources"},
	{DeleteDocument, GroupDocuments, "Delete resources"},
	{MoveDocument, GroupDocuments, "Move resources"},

	{NewTemplate, GroupTemplates, "Create templates"},
	{EditTemplate, GroupTemplates, "Edit templates"},
	{SaveTemplate, GroupTemplates, "Save templates"},
	{DeleteTemplate, GroupTemplates, "Delete templates"},

	{NewSnippet, GroupSnippets, "Create snippets"},
	{EditSnippet, GroupSnippets, "Edit snippets"},
	{SaveSnippet, GroupSnippets, "Save snippets"},
	{DeleteSnippet, GroupSnippets, "Delete snippets"},

	{NewChunk, GroupChunks, "Create chunks"},
	{EditChunk, GroupChunks, "Edit chunks"},
	{SaveChunk, GroupChunks, "Save chunks"},
	{DeleteChunk, GroupChunks, "Delete chunks"},

	{NewPlugin, GroupPlugins, "Create plugins"},
	{EditPlugin, GroupPlugins, "Edit plugins"},
	{SavePlugin, GroupPlugins, "Save plugins"},
	{DeletePlugin, GroupPlugins, "Delete plugins"},

	{NewModule, GroupModules, "Create modules"},
	{EditModule, GroupModules, "Edit modules"},
	{SaveModule, GroupModules, "Save modules"},
	{DeleteModule, GroupModules, "Delete modules"},
	{ExecModule, GroupModules, "Run modules"},

	{CategoryManager, GroupCategories, "Manage categories"},

	{NewUser, GroupUsers, "Create users"},
	{EditUser, GroupUsers, "Edit users"},
	{SaveUser, GroupUsers, "Save users"},
	{DeleteUser, GroupUsers, "Delete users"},

	{NewRole, GroupRoles, "Create roles"},
	{EditRole, GroupRoles, "Edit roles"},
	{SaveRole, GroupRoles, "Save roles"},
	{DeleteRole, GroupRoles, "Delete roles"},

	{AccessPermissions, GroupPermissions, "Manage access permissions"},

	{FileManager, GroupFiles, "Use file manager"},
	{AssetsFiles, GroupFiles, "Browse files"},
	{AssetsImages, GroupFiles, "Browse images"},
}

// Catalog returns the seeded permission catalog in display order.
func Catalog() []CatalogEntry {
	out := make([]CatalogEntry, len(catalog))
	copy(out, catalog)

	return out
}

// CatalogGroups returns the catalog group names in display order.
func CatalogGroups() []string {
	var (
		seen = make(map[string]bool)
		out  []string
	)

	for _, e := range catalog {
		if !seen[e.Group] {
			seen[e.Group] = true
			out = append(out, e.Group)
		}
	}

	return out
}

// CatalogKeys returns every catalog key as a string.
func CatalogKeys() []string {
	out := make([]string, len(catalog))
	for i, e := range catalog {
		out[i] = string(e.Key)
	}

	return out
}

// Package main provides the entry point of evo-authz, the authorization
// service of the Evolution CMS manager. It decides which manager API routes
// a user may call from the permission keys of the user's role and, when
// row-level permissions are enabled, from the document groups the user can
// reach. The same binary serves the manager API that edits roles, the
// permission catalog and document access, backed by gorm on mysql, postgres
// or sqlite.
package main

// Package auth answers "who is this user and what may their role do".
//
// # Role assignment
//
// Every manager user has at most one role, stored in user_attributes.role.
// Role 0 means "no role" and grants nothing. A role grants permission keys
// through role_permissions, which references the catalog by key string:
//
//	role_permissions.permission = permissions.key
//
// Disabled catalog entries are never granted, even when a role still lists them.
//
// The Service type provides the checks used by the authorization gate:
//   - PermissionsForRole: the deduplicated key set of a role
//   - UserHasAny: at least one required key (false for an empty requirement)
//   - UserHasAll: every required key (true for an empty requirement)
//   - GetUserPermissions: the sorted keys of a user's role
//
// # Caching
//
// Role sets are read through a cache.Store. Concurrent misses for one role
// share a single query. A failing cache falls back to the database, a failing
// database is always reported to the caller. Admin writes call Invalidate for
// one role or InvalidateAll after catalog changes.
//
// # Authentication
//
// LocalProvider checks manager usernames and Argon2id password hashes and
// refuses blocked accounts.
//
// Example usage:
//
//	authService := auth.NewService(db, auth.WithCache(store))
//
//	ok, err := authService.UserHasAny(ctx, auth.Subject{UserID: 7, RoleID: 2},
//	    permission.NewSet(permission.EditTemplate))
package auth

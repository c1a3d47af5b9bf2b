// Package auth provides the session middleware of the manager API.
//
// The middleware reads the session cookie, loads the session data and
// resolves the current role of the user from the store, so a role change
// applies to the next request without a new login. Requests without a valid
// session are answered with 401 and a JSON error body.
//
// The user id, username and role id are stored in fiber.Locals and can be
// read back with UserID, Username and RoleID.
//
// Usage:
//
//	app.Use(authmiddleware.New(authmiddleware.Config{Roles: authService}))
package auth

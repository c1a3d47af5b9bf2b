package login

import "errors"

var (
	// ErrInvalidCredentials is returned when the provided username and/or password
	// are not valid.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrAccountBlocked is returned when the user exists but is blocked.
	ErrAccountBlocked = errors.New("account is blocked")

	// ErrInternalServerError is returned for unexpected failures during the login
	// process.
	ErrInternalServerError = errors.New("internal server error")
)

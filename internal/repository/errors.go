// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios and map
// them onto HTTP status codes: ErrEmailExists becomes a 409 conflict,
// ErrNotFound a 404.
package repository

import "errors"

// ErrEmailExists is returned when registering with an email address that
// already has an account. Handlers should translate this into an HTTP 409
// response without creating any row.
var ErrEmailExists = errors.New("email already exists")

// ErrNotFound is returned when a referenced entity (place, parking slot,
// user) does not exist or an update matched zero rows. Handlers should
// translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

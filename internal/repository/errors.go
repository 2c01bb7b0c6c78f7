// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to perform an operation on a resource owned by someone
// else, while ErrConflict signals that an operation cannot proceed due
// to existing dependent records.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. The error handler translates this into an
// HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a write cannot be performed because of
// conflicting state. The error handler translates this into an HTTP 409
// response.
var ErrConflict = errors.New("conflict")

// ErrEmailExists is returned when registering a user with an email that
// already has a non-deleted row.
var ErrEmailExists = errors.New("email already exists")

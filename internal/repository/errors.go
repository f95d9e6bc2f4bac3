// Package repository holds the gorm-backed data access for every entity,
// plus the sentinel errors shared across them.  Handlers translate these
// into HTTP statuses: ErrNotFound to 404, ErrForbidden to 403 and
// ErrConflict to 409.
package repository

import "errors"

// ErrNotFound is returned when the addressed row does not exist.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when the row exists but its current state
// rules the operation out, such as deciding an already decided payment.
var ErrConflict = errors.New("conflict")

// ErrDuplicate is returned when an insert hits a unique constraint.
var ErrDuplicate = errors.New("already exists")

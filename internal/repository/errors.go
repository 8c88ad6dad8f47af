// Package repository contains the data access layer.  Each entity has
// its own repository over a shared *sql.DB; sentinel errors defined
// here let handlers translate failures into HTTP statuses without
// inspecting driver errors.
package repository

import "errors"

// ErrNotFound is returned when a record does not exist.  Expired
// sessions are reported as ErrNotFound as well: an expired session is
// indistinguishable from an absent one to callers.
var ErrNotFound = errors.New("record not found")

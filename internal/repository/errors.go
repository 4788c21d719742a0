// Package repository implements the persistence layer over MySQL.
// Sentinel errors let handlers distinguish failure classes without
// inspecting driver errors: ErrNotFound maps to HTTP 404 and
// ErrDuplicate to 409 (or, for engagement toggles, to "already in the
// requested state").
package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a unique key.
var ErrDuplicate = errors.New("duplicate")

// isDuplicateKey reports whether err is a MySQL duplicate-entry error
// (error number 1062).
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}

// Package errs defines the error categories shared by the library stores.
// Callers match with errors.Is; the API layer maps each category to an
// HTTP status.
package errs

import "errors"

var (
	// ErrValidation marks bad user input (empty folder name, bad tag).
	ErrValidation = errors.New("invalid input")

	// ErrNotFound marks a missing folder, record, or file.
	ErrNotFound = errors.New("not found")

	// ErrCollision marks a name that already exists.
	ErrCollision = errors.New("already exists")

	// ErrIO marks a disk or network fault surfaced as a value.
	ErrIO = errors.New("io failure")
)

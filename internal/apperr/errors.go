// Package apperr holds sentinel errors shared across the catalog layers.
package apperr

import "errors"

var (
	ErrNotFound   = errors.New("not found")
	ErrOutOfRange = errors.New("index out of range")
	ErrConflict   = errors.New("conflict")

	// Load failure kinds. They never escape the catalog loader.
	ErrNetwork    = errors.New("network error")
	ErrParse      = errors.New("parse error")
	ErrValidation = errors.New("validation error")
)

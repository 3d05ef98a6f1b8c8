package storage

import "errors"

var (
	// ErrNotFound is returned when no stored row matches a lookup.
	ErrNotFound = errors.New("not found")
	// ErrEmptyIntegrationID is returned when a write has no integration to belong to.
	ErrEmptyIntegrationID = errors.New("integration id is required")
)

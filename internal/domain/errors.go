package domain

import "errors"

// Error kinds reported by the admin core. Callers match them with errors.Is;
// services wrap them with the offending id or value.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidState    = errors.New("invalid state")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrConflict        = errors.New("conflict")
)

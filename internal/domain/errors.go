package domain

import "errors"

var (
	// ErrValidation signals caller input that fails a precondition.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound signals a lookup that matched no record.
	ErrNotFound = errors.New("record not found")
	// ErrStorage wraps failures reported by the underlying store.
	ErrStorage = errors.New("storage failure")
	// ErrNoChange signals an update that matched nothing.
	ErrNoChange = errors.New("no changes were made")
	// ErrUnauthorized signals a missing or invalid session.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden signals an authenticated caller without the required role.
	ErrForbidden = errors.New("forbidden")
)

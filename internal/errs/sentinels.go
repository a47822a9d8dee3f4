// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across codec/repository/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity with the same ID is already stored.
	ErrAlreadyExists = errors.New("already exists")

	// ErrMalformedRecord indicates a stored line that cannot be decoded
	// (wrong field count, bad number, unknown enumeration value).
	ErrMalformedRecord = errors.New("malformed record")

	// ErrInvalidRecord indicates an entity that cannot be encoded, e.g. a field
	// containing the record delimiter.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrMissingConfig indicates a configuration key required by an operation is absent.
	ErrMissingConfig = errors.New("missing config key")

	// ErrUnknownFormat indicates an unsupported snapshot format.
	ErrUnknownFormat = errors.New("unknown snapshot format")

	// ErrUnauthorized indicates failed credential verification.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTooManyAttempts indicates logins for a seller are temporarily blocked.
	ErrTooManyAttempts = errors.New("too many login attempts")
)

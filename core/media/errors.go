package media

import "errors"

// Domain errors for media storage operations. Name-validation errors are
// raised before any I/O and are recoverable by supplying a corrected file
// name. Use errors.Is() to check error types.
var (
	ErrEmptyFileName       = errors.New("file name can't be empty")
	ErrHiddenFile          = errors.New("file name must not start with a period")
	ErrPathTraversal       = errors.New("file name must not contain '..'")
	ErrDisallowedCharacter = errors.New("character is not allowed in the file name")
	ErrMissingExtension    = errors.New("file name has no extension")
	ErrExtensionNotAllowed = errors.New("file type is not allowed")

	// ErrKeyCollision means a generated file key already exists in the
	// backend. Never retried: the random key space makes an organic clash
	// astronomically unlikely, so recurrence signals an attack or a bug.
	ErrKeyCollision = errors.New("file key already exists")

	// ErrInvalidFileKey is returned when a caller-supplied key contains
	// path separators or traversal sequences.
	ErrInvalidFileKey = errors.New("invalid file key")

	ErrInvalidConfig = errors.New("invalid storage configuration")

	// ErrBackendUnavailable wraps transport-level failures talking to the
	// storage medium. No automatic retry; retry policy belongs to the caller.
	ErrBackendUnavailable = errors.New("storage backend unavailable")
)

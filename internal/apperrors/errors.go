package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates the acting user lacks the role required for the operation.
var ErrForbidden = errors.New("forbidden")

// ErrUnauthorized indicates missing or invalid credentials.
var ErrUnauthorized = errors.New("unauthorized")

// ErrConflict indicates a concurrent modification was detected (stale record version).
var ErrConflict = errors.New("conflict detected")

// ErrTerminalStage indicates an advance was requested for a transfer that is already
// at the final pipeline stage.
var ErrTerminalStage = errors.New("transfer is at the terminal stage")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

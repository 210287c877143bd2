package service

import (
	"errors"
)

// Error definitions shared by every service. Callers classify with errors.Is;
// the messages are wrapped with details where useful.
var (
	ErrValidation           = errors.New("validation failed")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	// ErrPartialFailure reports a result submission that did not complete a
	// training. Some block results may have been written anyway.
	ErrPartialFailure       = errors.New("partial failure")
	ErrPhotoStorageDisabled = errors.New("photo storage is not configured")
)

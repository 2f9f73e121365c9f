package application

import "errors"

var (
	// ErrConflict is returned when the employee already holds an event on the
	// requested date.
	ErrConflict = errors.New("application: event already exists for date")
	// ErrQuotaExceeded is returned when a remote-work request would exceed the
	// weekly cap.
	ErrQuotaExceeded = errors.New("application: weekly remote work quota exceeded")
	// ErrForbidden is returned when the acting principal's role or assignment
	// scope does not permit the operation.
	ErrForbidden = errors.New("application: forbidden")
	// ErrAlreadyFinalized is returned when a transition targets an event whose
	// status is terminal.
	ErrAlreadyFinalized = errors.New("application: event already finalized")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrInvalidCredentials is returned when authentication fails.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrSessionExpired is returned when a presented session token has expired.
	ErrSessionExpired = errors.New("application: session expired")
	// ErrSessionRevoked is returned when a presented session token was revoked.
	ErrSessionRevoked = errors.New("application: session revoked")
)

// ValidationError captures field level validation issues that callers can
// surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

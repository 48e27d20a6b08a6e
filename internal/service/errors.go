package service

import "errors"

// ValidationError reports bad input; nothing is mutated when it is returned.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func validationf(msg string) error {
	return &ValidationError{Msg: msg}
}

// GatewayError reports a failed payment creation. The order has already been
// moved to failed/failed when it is returned.
type GatewayError struct {
	Msg string
}

func (e *GatewayError) Error() string {
	return e.Msg
}

var (
	// ErrNotFound is returned when a referenced entity does not exist or is
	// not visible to the caller.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the caller does not own the entity.
	ErrForbidden = errors.New("forbidden")

	// ErrCallbackRejected is the single rejection result for callbacks that
	// fail verification, reference an unknown order, mismatch the recorded
	// amount, or arrive after the order settled differently. Collapsing
	// them denies a forger an oracle on which check failed.
	ErrCallbackRejected = errors.New("callback rejected")

	// ErrEmailTaken is returned when registering with an existing email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

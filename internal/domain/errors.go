package domain

import "errors"

// Business rule violations are returned as typed values so callers can
// branch with errors.Is instead of classifying raised faults.
var (
	ErrInvalidRequest  = errors.New("invalid request")
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidState    = errors.New("invalid state")
	ErrSlotUnavailable = errors.New("slot unavailable")
	ErrDoctorNotFound  = errors.New("doctor not found")
	ErrPublishFailed   = errors.New("publish failed")
	ErrPoisonMessage   = errors.New("poison message")
)

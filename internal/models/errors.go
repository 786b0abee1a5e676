package models

import "errors"

// Domain error kinds. Services detect these before any write; handlers map
// them to HTTP statuses. Matched with errors.Is.
var (
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidState        = errors.New("invalid state transition")
	ErrInvalidParticipants = errors.New("teacher and learner must differ")
	ErrInsufficientBalance = errors.New("insufficient credit balance")
	ErrDuplicate           = errors.New("duplicate record")
	ErrConflict            = errors.New("blocked by active references")
	ErrInvalidAmount       = errors.New("invalid credit amount")
)

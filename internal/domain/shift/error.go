package shift

import "errors"

var (
	ErrBranchRequired      = errors.New("branch is required")
	ErrInvalidCash         = errors.New("initial cash must be greater than zero")
	ErrInvalidRequest      = errors.New("invalid shift request")
	ErrShiftNotFound       = errors.New("shift not found")
	ErrNoOpenShift         = errors.New("no open shift")
	ErrShiftClosed         = errors.New("shift is already closed")
	ErrChecklistIncomplete = errors.New("closing checklist is incomplete")
	ErrUnknownChecklist    = errors.New("unknown checklist item")
)

package expense

import "errors"

var (
	ErrNoBranch        = errors.New("no branch selected")
	ErrNoOpenShift     = errors.New("no open shift for branch")
	ErrInvalidAmount   = errors.New("expense amount must be greater than zero")
	ErrInvalidRequest  = errors.New("invalid expense request")
	ErrExpenseNotFound = errors.New("expense not found")
	ErrExpenseSynced   = errors.New("expense already synced and cannot be deleted")
)

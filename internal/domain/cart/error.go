package cart

import "errors"

var (
	ErrRegisterClosed = errors.New("register is closed for the day")
	ErrCartNotFound   = errors.New("cart not found")
	ErrLineNotFound   = errors.New("cart line not found")
	ErrTableOccupied  = errors.New("destination table is occupied")
	ErrSameTable      = errors.New("source and destination tables are the same")
	ErrTableRequired  = errors.New("table is required")
	ErrOrderNotFound  = errors.New("pending order not found")

	ErrCheckoutInProgress = errors.New("checkout in progress for table")
)

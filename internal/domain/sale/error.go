package sale

import "errors"

var (
	ErrNoBranch        = errors.New("no branch selected")
	ErrNoOpenShift     = errors.New("no open shift for branch")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidDiscount = errors.New("discount exceeds subtotal")
	ErrInvalidRequest  = errors.New("invalid checkout request")
	ErrSaleNotFound    = errors.New("sale not found")
	ErrCheckoutBusy    = errors.New("table checkout already in progress")
)

package delivery

import "errors"

var (
	ErrNoBranch         = errors.New("no branch selected")
	ErrNoOpenShift      = errors.New("no open shift for branch")
	ErrInvalidRequest   = errors.New("invalid delivery request")
	ErrDeliveryNotFound = errors.New("delivery not found")
	ErrClientNotFound   = errors.New("client not found")
	ErrStatusFinal      = errors.New("delivery already finished")
)

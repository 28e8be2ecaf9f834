package catalog

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrBranchNotFound  = errors.New("branch not found")
)

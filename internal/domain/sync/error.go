package sync

import "errors"

var (
	ErrNoBranch      = errors.New("no branch selected")
	ErrUnknownBranch = errors.New("branch is not known locally")
	ErrUnknownEntity = errors.New("unknown sync entity")
	// ErrUnauthorized облако отклонило токен устройства
	ErrUnauthorized = errors.New("device token rejected")
)

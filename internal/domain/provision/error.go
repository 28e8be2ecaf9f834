package provision

import "errors"

var (
	ErrRejected       = errors.New("device provisioning rejected")
	ErrExpired        = errors.New("provisioning session expired")
	ErrNoToken        = errors.New("approved session without token")
	ErrNoSession      = errors.New("provisioning session not started")
	ErrInvalidRequest = errors.New("invalid provisioning request")
	ErrNotProvisioned = errors.New("device is not provisioned")
)

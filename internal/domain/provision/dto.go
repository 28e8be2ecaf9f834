package provision

type StartRequest struct {
	Fingerprint string `json:"fingerprint" validate:"required"`
	DeviceName  string `json:"device_name" validate:"required"`
	DeviceType  string `json:"device_type"`
}

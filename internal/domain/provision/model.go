package provision

import (
	"crypto/sha256"
	"encoding/hex"
)

const DeviceTypePOS = "pos"

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusExpired  Status = "expired"
)

// Session сессия привязки устройства, подтверждаемая по QR-коду
type Session struct {
	ID    string `json:"session_id"`
	QRURL string `json:"qr_url"`
}

type PollResult struct {
	Status         Status `json:"status"`
	AuthToken      string `json:"auth_token,omitempty"`
	OrganizationID string `json:"organization_id,omitempty"`
}

// Credentials результат привязки устройства к организации
type Credentials struct {
	Token          string
	OrganizationID string
	DeviceID       string
}

// Fingerprint стабильный отпечаток устройства
func Fingerprint(deviceID, hostname string) string {
	sum := sha256.Sum256([]byte(deviceID + "|" + hostname))
	return hex.EncodeToString(sum[:])
}

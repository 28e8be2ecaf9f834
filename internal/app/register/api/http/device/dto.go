package device

import "gophregister/internal/domain/monitor"

type statusOutput struct {
	Body statusResponse
}

type statusResponse struct {
	Status         string `json:"status"`
	Provisioned    bool   `json:"provisioned"`
	OrganizationID string `json:"organization_id,omitempty"`
	DeviceID       string `json:"device_id"`
	BranchID       string `json:"branch_id,omitempty"`
	OperatorID     string `json:"operator_id,omitempty"`
}

type contextInput struct {
	Body contextRequest
}

type contextRequest struct {
	BranchID   string `json:"branch_id" minLength:"1" doc:"Филиал кассы"`
	OperatorID string `json:"operator_id,omitempty" doc:"Оператор по умолчанию"`
}

type provisionOutput struct {
	Body provisionResponse
}

type provisionResponse struct {
	Status    string `json:"status"`
	SessionID string `json:"session_id"`
	QRURL     string `json:"qr_url" doc:"Ссылка для QR-кода подтверждения"`
}

type output struct {
	Body response
}

type response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type noticesOutput struct {
	Body noticesResponse
}

type noticesResponse struct {
	Status  string           `json:"status"`
	Notices []monitor.Notice `json:"notices"`
}

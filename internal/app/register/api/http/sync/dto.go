package sync

import domainsync "gophregister/internal/domain/sync"

type pullOutput struct {
	Body pullResponse
}

type pullResponse struct {
	Status string                 `json:"status"`
	Result *domainsync.PullResult `json:"result"`
}

type pushOutput struct {
	Body pushResponse
}

type pushResponse struct {
	Status string                 `json:"status"`
	Result *domainsync.PushResult `json:"result"`
}

type statusOutput struct {
	Body statusResponse
}

type statusResponse struct {
	Status string             `json:"status"`
	Sync   *domainsync.Status `json:"sync"`
}

type markInput struct {
	Body markRequest
}

type markRequest struct {
	Entity string   `json:"entity" enum:"sales,expenses,shifts,deliveries,clients" doc:"Таблица"`
	IDs    []string `json:"ids" minItems:"1"`
}

type markOutput struct {
	Body markResponse
}

type markResponse struct {
	Status string `json:"status"`
	Marked int    `json:"marked"`
}

type pruneInput struct {
	Body pruneRequest
}

type pruneRequest struct {
	Days int `json:"days,omitempty" minimum:"0" doc:"Срок хранения, по умолчанию из конфигурации"`
}

type pruneOutput struct {
	Body pruneResponse
}

type pruneResponse struct {
	Status  string `json:"status"`
	Removed int64  `json:"removed"`
}

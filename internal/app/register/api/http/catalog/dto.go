package catalog

import "gophregister/internal/domain/catalog"

type productsOutput struct {
	Body productsResponse
}

type productsResponse struct {
	Status   string            `json:"status"`
	Products []catalog.Product `json:"products"`
}

type tablesOutput struct {
	Body tablesResponse
}

type tablesResponse struct {
	Status string          `json:"status"`
	Tables []catalog.Table `json:"tables"`
}

type branchesOutput struct {
	Body branchesResponse
}

type branchesResponse struct {
	Status   string           `json:"status"`
	Branches []catalog.Branch `json:"branches"`
}

type profilesOutput struct {
	Body profilesResponse
}

type profilesResponse struct {
	Status   string            `json:"status"`
	Profiles []catalog.Profile `json:"profiles"`
}

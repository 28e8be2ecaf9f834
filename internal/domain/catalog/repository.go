package catalog

import "context"

// Repository справочные данные, загружаемые из облака при pull
type Repository interface {
	GetProduct(ctx context.Context, id string) (*Product, error)
	ListProducts(ctx context.Context, branchID string) ([]Product, error)
	ListTables(ctx context.Context, branchID string) ([]Table, error)
	ListBranches(ctx context.Context) ([]Branch, error)
	ListProfiles(ctx context.Context, branchID string) ([]Profile, error)
	BranchExists(ctx context.Context, id string) (bool, error)
}

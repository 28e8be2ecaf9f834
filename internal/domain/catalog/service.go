package catalog

import (
	"context"
	"fmt"

	"golang.org/x/exp/slog"
)

type Servicer interface {
	Product(ctx context.Context, id string) (*Product, error)
	Products(ctx context.Context, branchID string) ([]Product, error)
	Tables(ctx context.Context, branchID string) ([]Table, error)
	Branches(ctx context.Context) ([]Branch, error)
	Profiles(ctx context.Context, branchID string) ([]Profile, error)
}

// Service справочники филиала из локальной базы
type Service struct {
	repo Repository
	log  *slog.Logger
}

// NewService создает сервис справочников
func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

func (s *Service) Product(ctx context.Context, id string) (*Product, error) {
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	return p, nil
}

func (s *Service) Products(ctx context.Context, branchID string) ([]Product, error) {
	return s.repo.ListProducts(ctx, branchID)
}

func (s *Service) Tables(ctx context.Context, branchID string) ([]Table, error) {
	return s.repo.ListTables(ctx, branchID)
}

func (s *Service) Branches(ctx context.Context) ([]Branch, error) {
	return s.repo.ListBranches(ctx)
}

func (s *Service) Profiles(ctx context.Context, branchID string) ([]Profile, error) {
	return s.repo.ListProfiles(ctx, branchID)
}

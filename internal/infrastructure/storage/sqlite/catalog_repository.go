package sqlite

import (
	"context"
	"fmt"

	"golang.org/x/exp/slog"

	"gophregister/internal/domain/catalog"
)

const productColumns = `id, branch_id, name, category, price, stock, active, updated_at`

type CatalogRepository struct {
	s   *Storage
	log *slog.Logger
}

func NewCatalogRepository(s *Storage, log *slog.Logger) *CatalogRepository {
	return &CatalogRepository{
		s:   s,
		log: log.With(slog.String("component", "catalog_repository")),
	}
}

func (r *CatalogRepository) GetProduct(ctx context.Context, id string) (*catalog.Product, error) {
	var p catalog.Product
	err := r.s.db.GetContext(ctx, &p,
		`SELECT `+productColumns+` FROM products WHERE id = ? AND active = 1`, id)
	if err != nil {
		return nil, notFound(err, catalog.ErrProductNotFound)
	}
	return &p, nil
}

func (r *CatalogRepository) ListProducts(ctx context.Context, branchID string) ([]catalog.Product, error) {
	var out []catalog.Product
	err := r.s.db.SelectContext(ctx, &out, `
		SELECT `+productColumns+` FROM products
		WHERE active = 1 AND (branch_id = ? OR branch_id = '')
		ORDER BY category, name`, branchID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return out, nil
}

func (r *CatalogRepository) ListTables(ctx context.Context, branchID string) ([]catalog.Table, error) {
	var out []catalog.Table
	err := r.s.db.SelectContext(ctx, &out,
		`SELECT id, branch_id, name, status, updated_at FROM dining_tables WHERE branch_id = ? ORDER BY name`, branchID)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return out, nil
}

func (r *CatalogRepository) ListBranches(ctx context.Context) ([]catalog.Branch, error) {
	var out []catalog.Branch
	if err := r.s.db.SelectContext(ctx, &out,
		`SELECT id, name, address, updated_at FROM branches ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	return out, nil
}

func (r *CatalogRepository) ListProfiles(ctx context.Context, branchID string) ([]catalog.Profile, error) {
	var out []catalog.Profile
	err := r.s.db.SelectContext(ctx, &out, `
		SELECT id, full_name, role, branch_id, updated_at FROM profiles
		WHERE branch_id = ? OR branch_id = ''
		ORDER BY full_name`, branchID)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return out, nil
}

func (r *CatalogRepository) BranchExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := r.s.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM branches WHERE id = ?)`, id); err != nil {
		return false, fmt.Errorf("branch exists: %w", err)
	}
	return exists, nil
}

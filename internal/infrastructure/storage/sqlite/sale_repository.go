package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"golang.org/x/exp/slog"

	"gophregister/internal/domain/sale"
)

const saleColumns = `id, branch_id, shift_id, operator_id, table_id, total_amount, payment_method,
	tip_amount, discount_amount, diners, synced, created_at`

const saleItemColumns = `id, sale_id, product_id, name, quantity, unit_price, total_price`

type SaleRepository struct {
	s   *Storage
	log *slog.Logger
}

func NewSaleRepository(s *Storage, log *slog.Logger) *SaleRepository {
	return &SaleRepository{
		s:   s,
		log: log.With(slog.String("component", "sale_repository")),
	}
}

func (r *SaleRepository) Create(ctx context.Context, sl *sale.Sale) error {
	return r.s.write(ctx, func(tx *sqlx.Tx) error {
		if err := insertSale(ctx, tx, sl, false); err != nil {
			return err
		}
		return insertSaleItems(ctx, tx, sl.Items)
	})
}

func insertSale(ctx context.Context, tx *sqlx.Tx, sl *sale.Sale, synced bool) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO sales (`+saleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sl.ID, sl.BranchID, sl.ShiftID, sl.OperatorID, sl.TableID, sl.TotalAmount,
		sl.PaymentMethod, sl.TipAmount, sl.DiscountAmount, sl.Diners, synced, sl.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

func insertSaleItems(ctx context.Context, tx *sqlx.Tx, items []sale.Item) error {
	for _, it := range items {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO sale_items (`+saleItemColumns+`)
			VALUES (:id, :sale_id, :product_id, :name, :quantity, :unit_price, :total_price)`, it)
		if err != nil {
			return fmt.Errorf("insert sale item: %w", err)
		}
	}
	return nil
}

func (r *SaleRepository) GetByID(ctx context.Context, id string) (*sale.Sale, error) {
	var sl sale.Sale
	if err := r.s.db.GetContext(ctx, &sl, `SELECT `+saleColumns+` FROM sales WHERE id = ?`, id); err != nil {
		return nil, notFound(err, sale.ErrSaleNotFound)
	}
	if err := r.s.db.SelectContext(ctx, &sl.Items,
		`SELECT `+saleItemColumns+` FROM sale_items WHERE sale_id = ?`, id); err != nil {
		return nil, fmt.Errorf("sale items: %w", err)
	}
	return &sl, nil
}

func (r *SaleRepository) ListByShift(ctx context.Context, shiftID string) ([]sale.Sale, error) {
	var sales []sale.Sale
	err := r.s.db.SelectContext(ctx, &sales,
		`SELECT `+saleColumns+` FROM sales WHERE shift_id = ? ORDER BY created_at`, shiftID)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	if err := attachItems(ctx, r.s.db, sales); err != nil {
		return nil, err
	}
	return sales, nil
}

func attachItems(ctx context.Context, q sqlx.QueryerContext, sales []sale.Sale) error {
	if len(sales) == 0 {
		return nil
	}
	ids := make([]string, len(sales))
	for i, sl := range sales {
		ids[i] = sl.ID
	}

	query, args, err := sqlx.In(`SELECT `+saleItemColumns+` FROM sale_items WHERE sale_id IN (?)`, ids)
	if err != nil {
		return err
	}
	var items []sale.Item
	if err := sqlx.SelectContext(ctx, q, &items, query, args...); err != nil {
		return fmt.Errorf("sale items: %w", err)
	}

	bySale := make(map[string][]sale.Item, len(sales))
	for _, it := range items {
		bySale[it.SaleID] = append(bySale[it.SaleID], it)
	}
	for i := range sales {
		sales[i].Items = bySale[sales[i].ID]
	}
	return nil
}

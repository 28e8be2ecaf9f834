package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/exp/slog"

	"gophregister/internal/domain/cart"
	"gophregister/internal/domain/catalog"
)

type CartRepository struct {
	s   *Storage
	log *slog.Logger
	now func() time.Time
}

func NewCartRepository(s *Storage, log *slog.Logger) *CartRepository {
	return &CartRepository{
		s:   s,
		log: log.With(slog.String("component", "cart_repository")),
		now: time.Now,
	}
}

func (r *CartRepository) CreateOrder(ctx context.Context, o *cart.PendingOrder) error {
	return r.s.write(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO pending_orders (id, table_id, shift_id, branch_id, customer_label,
			                            diners, status, total, created_at, updated_at)
			VALUES (:id, :table_id, :shift_id, :branch_id, :customer_label,
			        :diners, :status, :total, :created_at, :updated_at)`, o)
		if err != nil {
			return fmt.Errorf("insert pending order: %w", err)
		}
		return setTableStatus(ctx, tx, o.TableID, catalog.TableOccupied)
	})
}

func (r *CartRepository) ApplyLine(ctx context.Context, ch cart.LineChange) error {
	return r.s.write(ctx, func(tx *sqlx.Tx) error {
		if ch.StockDelta != 0 {
			if err := adjustStock(ctx, tx, ch.Line.ProductID, ch.StockDelta); err != nil {
				return err
			}
		}
		if ch.OrderID == "" {
			return nil
		}

		if ch.Delete {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM pending_order_lines WHERE id = ?`, ch.Line.ID); err != nil {
				return fmt.Errorf("delete order line: %w", err)
			}
		} else {
			_, err := tx.NamedExecContext(ctx, `
				INSERT INTO pending_order_lines (id, order_id, product_id, name, note,
				                                 quantity, unit_price, total, position)
				VALUES (:id, :order_id, :product_id, :name, :note,
				        :quantity, :unit_price, :total, :position)
				ON CONFLICT(id) DO UPDATE SET
					quantity = excluded.quantity,
					note = excluded.note,
					total = excluded.total,
					position = excluded.position`, ch.Line)
			if err != nil {
				return fmt.Errorf("upsert order line: %w", err)
			}
		}

		_, err := tx.ExecContext(ctx, `
			UPDATE pending_orders
			SET total = (SELECT COALESCE(SUM(total), 0) FROM pending_order_lines WHERE order_id = ?),
			    updated_at = ?
			WHERE id = ?`, ch.OrderID, ch.At, ch.OrderID)
		if err != nil {
			return fmt.Errorf("update order total: %w", err)
		}
		return nil
	})
}

func (r *CartRepository) DiscardOrder(ctx context.Context, d cart.Discard) error {
	return r.s.write(ctx, func(tx *sqlx.Tx) error {
		for _, rs := range d.Restock {
			if err := adjustStock(ctx, tx, rs.ProductID, rs.Delta); err != nil {
				return err
			}
		}
		if d.OrderID != "" {
			if _, err := tx.ExecContext(ctx, `DELETE FROM pending_orders WHERE id = ?`, d.OrderID); err != nil {
				return fmt.Errorf("delete pending order: %w", err)
			}
		}
		return setTableStatus(ctx, tx, d.TableID, catalog.TableAvailable)
	})
}

func (r *CartRepository) MoveOrder(ctx context.Context, orderID, fromTable, toTable string) error {
	return r.s.write(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE pending_orders SET table_id = ?, updated_at = ? WHERE id = ? AND status = ?`,
			toTable, r.now().UTC(), orderID, cart.OrderPending)
		if err != nil {
			return fmt.Errorf("move pending order: %w", err)
		}
		if err := requireRow(res, cart.ErrOrderNotFound); err != nil {
			return err
		}
		if err := setTableStatus(ctx, tx, fromTable, catalog.TableAvailable); err != nil {
			return err
		}
		return setTableStatus(ctx, tx, toTable, catalog.TableOccupied)
	})
}

func (r *CartRepository) MoveTable(ctx context.Context, fromTable, toTable string) error {
	return r.s.write(ctx, func(tx *sqlx.Tx) error {
		if err := setTableStatus(ctx, tx, fromTable, catalog.TableAvailable); err != nil {
			return err
		}
		return setTableStatus(ctx, tx, toTable, catalog.TableOccupied)
	})
}

// TableStatus статус стола; неизвестный стол, в том числе walk-in, считается свободным
func (r *CartRepository) TableStatus(ctx context.Context, tableID string) (string, error) {
	var status string
	err := r.s.db.GetContext(ctx, &status, `SELECT status FROM dining_tables WHERE id = ?`, tableID)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.TableAvailable, nil
	}
	if err != nil {
		return "", fmt.Errorf("table status: %w", err)
	}
	return status, nil
}

func (r *CartRepository) ListPending(ctx context.Context, branchID string) ([]cart.PendingOrder, error) {
	return pendingOrders(ctx, r.s.db, branchID)
}

func pendingOrders(ctx context.Context, q sqlx.QueryerContext, branchID string) ([]cart.PendingOrder, error) {
	var orders []cart.PendingOrder
	err := sqlx.SelectContext(ctx, q, &orders, `
		SELECT id, table_id, shift_id, branch_id, customer_label, diners, status,
		       total, created_at, updated_at
		FROM pending_orders
		WHERE branch_id = ? AND status = ?
		ORDER BY created_at`, branchID, cart.OrderPending)
	if err != nil {
		return nil, fmt.Errorf("list pending orders: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	query, args, err := sqlx.In(`
		SELECT id, order_id, product_id, name, note, quantity, unit_price, total, position
		FROM pending_order_lines
		WHERE order_id IN (?)
		ORDER BY order_id, position`, ids)
	if err != nil {
		return nil, err
	}

	var lines []cart.PendingOrderLine
	if err := sqlx.SelectContext(ctx, q, &lines, query, args...); err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}

	byOrder := make(map[string][]cart.PendingOrderLine, len(orders))
	for _, l := range lines {
		byOrder[l.OrderID] = append(byOrder[l.OrderID], l)
	}
	for i := range orders {
		orders[i].Lines = byOrder[orders[i].ID]
	}
	return orders, nil
}

func adjustStock(ctx context.Context, tx *sqlx.Tx, productID string, delta float64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE products SET stock = stock + ? WHERE id = ?`, delta, productID)
	if err != nil {
		return fmt.Errorf("adjust stock of %s: %w", productID, err)
	}
	return nil
}

func setTableStatus(ctx context.Context, tx *sqlx.Tx, tableID, status string) error {
	if tableID == "" || tableID == cart.WalkInTable {
		return nil
	}
	_, err := tx.ExecContext(ctx,
		`UPDATE dining_tables SET status = ? WHERE id = ?`, status, tableID)
	if err != nil {
		return fmt.Errorf("set table status: %w", err)
	}
	return nil
}

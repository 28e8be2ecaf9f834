package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"golang.org/x/exp/slog"

	"gophregister/internal/domain/expense"
)

const expenseColumns = `id, branch_id, shift_id, amount, description, category, voucher, synced, created_at`

type ExpenseRepository struct {
	s   *Storage
	log *slog.Logger
}

func NewExpenseRepository(s *Storage, log *slog.Logger) *ExpenseRepository {
	return &ExpenseRepository{
		s:   s,
		log: log.With(slog.String("component", "expense_repository")),
	}
}

func (r *ExpenseRepository) Create(ctx context.Context, e *expense.Expense) error {
	return r.s.write(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO expenses (`+expenseColumns+`)
			VALUES (:id, :branch_id, :shift_id, :amount, :description, :category, :voucher, 0, :created_at)`, e)
		if err != nil {
			return fmt.Errorf("insert expense: %w", err)
		}
		return nil
	})
}

// Delete удаляет только еще не выгруженный расход
func (r *ExpenseRepository) Delete(ctx context.Context, id string) error {
	return r.s.write(ctx, func(tx *sqlx.Tx) error {
		var synced bool
		if err := tx.GetContext(ctx, &synced, `SELECT synced FROM expenses WHERE id = ?`, id); err != nil {
			return notFound(err, expense.ErrExpenseNotFound)
		}
		if synced {
			return expense.ErrExpenseSynced
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM expenses WHERE id = ? AND synced = 0`, id)
		if err != nil {
			return fmt.Errorf("delete expense: %w", err)
		}
		return requireRow(res, expense.ErrExpenseNotFound)
	})
}

func (r *ExpenseRepository) ListByShift(ctx context.Context, shiftID string) ([]expense.Expense, error) {
	var out []expense.Expense
	err := r.s.db.SelectContext(ctx, &out,
		`SELECT `+expenseColumns+` FROM expenses WHERE shift_id = ? ORDER BY created_at`, shiftID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return out, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/exp/slog"

	"gophregister/internal/domain/sale"
	"gophregister/internal/domain/shift"
)

const shiftColumns = `id, branch_id, operator_id, start_time, end_time, initial_cash,
	final_cash, expected_cash, turn_type, status, closed_by_method,
	last_heartbeat, synced, created_at`

type ShiftRepository struct {
	s   *Storage
	log *slog.Logger
}

func NewShiftRepository(s *Storage, log *slog.Logger) *ShiftRepository {
	return &ShiftRepository{
		s:   s,
		log: log.With(slog.String("component", "shift_repository")),
	}
}

func (r *ShiftRepository) OpenOrGet(ctx context.Context, candidate *shift.Shift) (*shift.Shift, bool, error) {
	var (
		result  shift.Shift
		retaken bool
	)

	err := r.s.write(ctx, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &result,
			`SELECT `+shiftColumns+` FROM shifts WHERE branch_id = ? AND status = ? LIMIT 1`,
			candidate.BranchID, shift.StatusOpen)
		if err == nil {
			retaken = true
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("find open shift: %w", err)
		}

		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO shifts (id, branch_id, operator_id, start_time, initial_cash,
			                    turn_type, status, synced, created_at)
			VALUES (:id, :branch_id, :operator_id, :start_time, :initial_cash,
			        :turn_type, :status, 0, :created_at)`, candidate)
		if err != nil {
			return fmt.Errorf("insert shift: %w", err)
		}
		result = *candidate
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &result, retaken, nil
}

func (r *ShiftRepository) GetByID(ctx context.Context, id string) (*shift.Shift, error) {
	var sh shift.Shift
	err := r.s.db.GetContext(ctx, &sh, `SELECT `+shiftColumns+` FROM shifts WHERE id = ?`, id)
	if err != nil {
		return nil, notFound(err, shift.ErrShiftNotFound)
	}
	return &sh, nil
}

func (r *ShiftRepository) GetOpen(ctx context.Context, branchID string) (*shift.Shift, error) {
	var sh shift.Shift
	err := r.s.db.GetContext(ctx, &sh,
		`SELECT `+shiftColumns+` FROM shifts WHERE branch_id = ? AND status = ? LIMIT 1`,
		branchID, shift.StatusOpen)
	if err != nil {
		return nil, notFound(err, shift.ErrNoOpenShift)
	}
	return &sh, nil
}

func (r *ShiftRepository) ListRecent(ctx context.Context, branchID string, limit int) ([]shift.Shift, error) {
	var out []shift.Shift
	err := r.s.db.SelectContext(ctx, &out,
		`SELECT `+shiftColumns+` FROM shifts WHERE branch_id = ? ORDER BY start_time DESC LIMIT ?`,
		branchID, limit)
	if err != nil {
		return nil, fmt.Errorf("list shifts: %w", err)
	}
	return out, nil
}

func (r *ShiftRepository) Touch(ctx context.Context, id string, at time.Time) error {
	return r.s.write(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE shifts SET last_heartbeat = ? WHERE id = ? AND status = ?`,
			at, id, shift.StatusOpen)
		if err != nil {
			return err
		}
		return requireRow(res, shift.ErrShiftNotFound)
	})
}

func (r *ShiftRepository) Totals(ctx context.Context, id string) (*shift.Totals, error) {
	var t shift.Totals
	err := r.s.db.GetContext(ctx, &t, `
		SELECT
			COALESCE(SUM(CASE WHEN payment_method = ? THEN total_amount ELSE 0 END), 0) AS cash_sales,
			COALESCE(SUM(CASE WHEN payment_method <> ? THEN total_amount ELSE 0 END), 0) AS other_sales,
			COALESCE(SUM(tip_amount), 0) AS tips,
			(SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE shift_id = ?) AS expenses,
			COUNT(*) AS sales_count
		FROM sales
		WHERE shift_id = ?`,
		sale.PaymentCash, sale.PaymentCash, id, id)
	if err != nil {
		return nil, fmt.Errorf("shift totals: %w", err)
	}
	return &t, nil
}

func (r *ShiftRepository) Close(ctx context.Context, c *shift.Closing) error {
	return r.s.write(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE shifts
			SET status = ?, closed_by_method = ?, end_time = ?, final_cash = ?,
			    expected_cash = ?, synced = 0, revision = revision + 1
			WHERE id = ? AND status = ?`,
			shift.StatusClosed, c.ClosedBy, c.EndTime, c.FinalCash, c.ExpectedCash,
			c.ShiftID, shift.StatusOpen)
		if err != nil {
			return err
		}
		return requireRow(res, shift.ErrShiftClosed)
	})
}

func (r *ShiftRepository) MarkClosedRemotely(ctx context.Context, id string, endTime time.Time) (bool, error) {
	var changed bool
	err := r.s.write(ctx, func(tx *sqlx.Tx) error {
		var status shift.Status
		if err := tx.GetContext(ctx, &status, `SELECT status FROM shifts WHERE id = ?`, id); err != nil {
			return notFound(err, shift.ErrShiftNotFound)
		}
		if status == shift.StatusClosed {
			return nil
		}

		_, err := tx.ExecContext(ctx, `
			UPDATE shifts
			SET status = ?, closed_by_method = ?, end_time = ?, synced = 1
			WHERE id = ?`,
			shift.StatusClosed, shift.ClosedByRemote, endTime, id)
		if err != nil {
			return err
		}
		changed = true
		return nil
	})
	return changed, err
}

func requireRow(res sql.Result, target error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return target
	}
	return nil
}

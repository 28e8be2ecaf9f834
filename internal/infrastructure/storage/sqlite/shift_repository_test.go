package sqlite

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"gophregister/internal/domain/shift"
)

func TestShiftRepository_OpenTwiceReturnsSameShift(t *testing.T) {
	s := newTestStorage(t)
	svc := shift.NewService(NewShiftRepository(s, slog.Default()), slog.Default(), clockAt(9))

	first, err := svc.Open(bg, shift.OpenRequest{BranchID: "b1", OperatorID: "op1", InitialCash: decimal.NewFromInt(50000)})
	require.NoError(t, err)
	assert.False(t, first.Retaken)
	assert.Equal(t, shift.TurnMorning, first.Shift.TurnType)

	second, err := svc.Open(bg, shift.OpenRequest{BranchID: "b1", OperatorID: "op2", InitialCash: decimal.NewFromInt(10)})
	require.NoError(t, err)
	assert.True(t, second.Retaken)
	assert.Equal(t, first.Shift.ID, second.Shift.ID)
	assert.True(t, second.Shift.InitialCash.Equal(decimal.NewFromInt(50000)))

	assert.Equal(t, 1, countRows(t, s, `SELECT COUNT(*) FROM shifts WHERE branch_id = 'b1' AND status = 'open'`))
}

func TestShiftRepository_OneOpenShiftPerBranch(t *testing.T) {
	s := newTestStorage(t)
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	insert := `INSERT INTO shifts (id, branch_id, start_time, turn_type, status, created_at) VALUES (?, 'b1', ?, 'morning', 'open', ?)`
	_, err := s.DB().Exec(insert, "s1", now, now)
	require.NoError(t, err)

	_, err = s.DB().Exec(insert, "s2", now, now)
	assert.Error(t, err)
}

func TestShiftRepository_CloseComputesExpectedCash(t *testing.T) {
	s := newTestStorage(t)
	repo := NewShiftRepository(s, slog.Default())
	svc := shift.NewService(repo, slog.Default(), clockAt(15))

	opened, err := svc.Open(bg, shift.OpenRequest{BranchID: "b1", InitialCash: decimal.NewFromInt(100000)})
	require.NoError(t, err)
	id := opened.Shift.ID
	created := time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC)

	sales := `INSERT INTO sales (id, branch_id, shift_id, total_amount, payment_method, tip_amount, created_at) VALUES (?, 'b1', ?, ?, ?, ?, ?)`
	_, err = s.DB().Exec(sales, "v1", id, decimal.NewFromInt(30000), "cash", decimal.NewFromInt(2000), created)
	require.NoError(t, err)
	_, err = s.DB().Exec(sales, "v2", id, decimal.NewFromInt(45000), "card", decimal.Zero, created)
	require.NoError(t, err)
	_, err = s.DB().Exec(`INSERT INTO expenses (id, branch_id, shift_id, amount, created_at) VALUES ('e1', 'b1', ?, ?, ?)`,
		id, decimal.NewFromInt(5000), created)
	require.NoError(t, err)

	res, err := svc.Close(bg, shift.CloseRequest{ShiftID: id, FinalCash: decimal.NewFromInt(124000)})
	require.NoError(t, err)

	assert.True(t, res.Totals.CashSales.Equal(decimal.NewFromInt(30000)))
	assert.True(t, res.Totals.OtherSales.Equal(decimal.NewFromInt(45000)))
	assert.True(t, res.Totals.Expenses.Equal(decimal.NewFromInt(5000)))
	assert.Equal(t, 2, res.Totals.SalesCount)
	assert.True(t, res.Shift.ExpectedCash.Decimal.Equal(decimal.NewFromInt(125000)))
	assert.Equal(t, shift.StatusClosed, res.Shift.Status)
	assert.Equal(t, shift.ClosedByLocal, res.Shift.ClosedBy)
	assert.False(t, res.Shift.Synced)
	require.NotNil(t, res.Shift.EndTime)

	_, err = svc.Close(bg, shift.CloseRequest{ShiftID: id, FinalCash: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, shift.ErrShiftClosed)

	_, err = svc.Current(bg, "b1")
	assert.ErrorIs(t, err, shift.ErrNoOpenShift)
}

func TestShiftRepository_MarkClosedRemotelyIsIdempotent(t *testing.T) {
	s := newTestStorage(t)
	repo := NewShiftRepository(s, slog.Default())
	svc := shift.NewService(repo, slog.Default(), clockAt(10))

	opened, err := svc.Open(bg, shift.OpenRequest{BranchID: "b1", InitialCash: decimal.NewFromInt(1000)})
	require.NoError(t, err)

	change := shift.Change{ID: opened.Shift.ID, Status: shift.StatusClosed, ClosedBy: shift.ClosedByRemote}
	changed, err := svc.ApplyRemoteClose(bg, change)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = svc.ApplyRemoteClose(bg, change)
	require.NoError(t, err)
	assert.False(t, changed)

	got, err := svc.Get(bg, opened.Shift.ID)
	require.NoError(t, err)
	assert.Equal(t, shift.ClosedByRemote, got.ClosedBy)
	assert.True(t, got.Synced)

	_, err = repo.MarkClosedRemotely(bg, "missing", time.Now())
	assert.ErrorIs(t, err, shift.ErrShiftNotFound)
}

func TestShiftRepository_HeartbeatAndHistory(t *testing.T) {
	s := newTestStorage(t)
	repo := NewShiftRepository(s, slog.Default())
	svc := shift.NewService(repo, slog.Default(), clockAt(11))

	opened, err := svc.Open(bg, shift.OpenRequest{BranchID: "b1", InitialCash: decimal.NewFromInt(1000)})
	require.NoError(t, err)

	require.NoError(t, svc.Heartbeat(bg, opened.Shift.ID))
	got, err := svc.Get(bg, opened.Shift.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastHeartbeat)
	assert.Equal(t, clockAt(11)(), *got.LastHeartbeat)

	assert.ErrorIs(t, svc.Heartbeat(bg, "missing"), shift.ErrShiftNotFound)

	history, err := svc.History(bg, "b1", 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, opened.Shift.ID, history[0].ID)
}

package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "register.db"), slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedBranch(t *testing.T, s *Storage, id string) {
	t.Helper()
	_, err := s.DB().Exec(`INSERT INTO branches (id, name) VALUES (?, ?)`, id, "Branch "+id)
	require.NoError(t, err)
}

func seedProduct(t *testing.T, s *Storage, id string, price int64, stock float64) {
	t.Helper()
	_, err := s.DB().Exec(
		`INSERT INTO products (id, branch_id, name, price, stock, active) VALUES (?, 'b1', ?, ?, ?, 1)`,
		id, "Product "+id, decimal.NewFromInt(price), stock)
	require.NoError(t, err)
}

func seedTable(t *testing.T, s *Storage, id string) {
	t.Helper()
	_, err := s.DB().Exec(`INSERT INTO dining_tables (id, branch_id, name) VALUES (?, 'b1', ?)`, id, "Mesa "+id)
	require.NoError(t, err)
}

func stockOf(t *testing.T, s *Storage, productID string) float64 {
	t.Helper()
	var stock float64
	require.NoError(t, s.DB().Get(&stock, `SELECT stock FROM products WHERE id = ?`, productID))
	return stock
}

func countRows(t *testing.T, s *Storage, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, s.DB().Get(&n, query, args...))
	return n
}

func clockAt(h int) func() time.Time {
	return func() time.Time { return time.Date(2025, 3, 10, h, 0, 0, 0, time.UTC) }
}

var bg = context.Background()

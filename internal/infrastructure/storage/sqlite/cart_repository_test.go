package sqlite

import (
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"gophregister/internal/domain/cart"
	"gophregister/internal/domain/catalog"
	"gophregister/internal/domain/sale"
	"gophregister/internal/domain/shift"
)

type register struct {
	storage *Storage
	shifts  *shift.Service
	carts   *cart.Manager
	sales   *sale.Service
}

func newRegister(t *testing.T) *register {
	t.Helper()
	s := newTestStorage(t)
	log := slog.Default()

	shifts := shift.NewService(NewShiftRepository(s, log), log, clockAt(12))
	carts := cart.NewManager(NewCartRepository(s, log), NewCatalogRepository(s, log), nil, log, clockAt(12))
	sales := sale.NewService(NewSaleRepository(s, log), carts, shifts, log, clockAt(13))

	return &register{storage: s, shifts: shifts, carts: carts, sales: sales}
}

func TestCartRepository_StockRoundTrip(t *testing.T) {
	r := newRegister(t)
	seedProduct(t, r.storage, "coffee", 5000, 20)
	seedTable(t, r.storage, "t1")

	_, err := r.carts.OpenTable(bg, cart.OpenTableRequest{TableID: "t1", BranchID: "b1"})
	require.NoError(t, err)

	var c *cart.Cart
	for i := 0; i < 3; i++ {
		c, err = r.carts.AddLine(bg, cart.AddLineRequest{TableID: "t1", ProductID: "coffee"})
		require.NoError(t, err)
	}
	require.Len(t, c.Lines, 1)
	assert.Equal(t, 3, c.Lines[0].Quantity)
	assert.Equal(t, float64(17), stockOf(t, r.storage, "coffee"))

	c, err = r.carts.UpdateQuantity(bg, cart.UpdateQuantityRequest{TableID: "t1", LineID: c.Lines[0].ID, Delta: -1})
	require.NoError(t, err)
	assert.Equal(t, float64(18), stockOf(t, r.storage, "coffee"))

	var total decimal.Decimal
	require.NoError(t, r.storage.DB().Get(&total, `SELECT total FROM pending_orders WHERE table_id = 't1'`))
	assert.True(t, total.Equal(decimal.NewFromInt(10000)))

	_, err = r.carts.RemoveLine(bg, "t1", c.Lines[0].ID)
	require.NoError(t, err)
	assert.Equal(t, float64(20), stockOf(t, r.storage, "coffee"))
	assert.Equal(t, 0, countRows(t, r.storage, `SELECT COUNT(*) FROM pending_order_lines`))
}

func TestCartRepository_ClearRestoresStockFinalizeDoesNot(t *testing.T) {
	r := newRegister(t)
	seedProduct(t, r.storage, "beer", 8000, 10)
	seedTable(t, r.storage, "t1")
	seedTable(t, r.storage, "t2")

	for _, table := range []string{"t1", "t2"} {
		_, err := r.carts.OpenTable(bg, cart.OpenTableRequest{TableID: table, BranchID: "b1"})
		require.NoError(t, err)
		for i := 0; i < 2; i++ {
			_, err = r.carts.AddLine(bg, cart.AddLineRequest{TableID: table, ProductID: "beer"})
			require.NoError(t, err)
		}
	}
	assert.Equal(t, float64(6), stockOf(t, r.storage, "beer"))
	assert.Equal(t, 2, countRows(t, r.storage, `SELECT COUNT(*) FROM dining_tables WHERE status = ?`, catalog.TableOccupied))

	require.NoError(t, r.carts.Clear(bg, "t1"))
	assert.Equal(t, float64(8), stockOf(t, r.storage, "beer"))

	require.NoError(t, r.carts.Finalize(bg, "t2"))
	assert.Equal(t, float64(8), stockOf(t, r.storage, "beer"))

	assert.Equal(t, 0, countRows(t, r.storage, `SELECT COUNT(*) FROM pending_orders`))
	assert.Equal(t, 0, countRows(t, r.storage, `SELECT COUNT(*) FROM pending_order_lines`))
	assert.Equal(t, 0, countRows(t, r.storage, `SELECT COUNT(*) FROM dining_tables WHERE status = ?`, catalog.TableOccupied))
}

func TestCartRepository_TransferAndRestore(t *testing.T) {
	r := newRegister(t)
	seedProduct(t, r.storage, "tea", 3000, 5)
	seedTable(t, r.storage, "t1")
	seedTable(t, r.storage, "t2")

	_, err := r.carts.OpenTable(bg, cart.OpenTableRequest{TableID: "t1", BranchID: "b1", Diners: 3})
	require.NoError(t, err)
	_, err = r.carts.AddLine(bg, cart.AddLineRequest{TableID: "t1", ProductID: "tea", Note: "sin azucar"})
	require.NoError(t, err)

	require.NoError(t, r.carts.Transfer(bg, cart.TransferRequest{From: "t1", To: "t2"}))

	var status string
	require.NoError(t, r.storage.DB().Get(&status, `SELECT status FROM dining_tables WHERE id = 't2'`))
	assert.Equal(t, catalog.TableOccupied, status)

	// новый менеджер после перезапуска поднимает корзину из базы
	log := slog.Default()
	restarted := cart.NewManager(NewCartRepository(r.storage, log), NewCatalogRepository(r.storage, log), nil, log, clockAt(12))
	n, err := restarted.Restore(bg, "b1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	c, err := restarted.Snapshot("t2")
	require.NoError(t, err)
	assert.Equal(t, 3, c.Diners)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, "sin azucar", c.Lines[0].Note)
	assert.True(t, c.Total().Equal(decimal.NewFromInt(3000)))

	_, err = restarted.Snapshot("t1")
	assert.ErrorIs(t, err, cart.ErrCartNotFound)
}

func TestCheckout_EndToEnd(t *testing.T) {
	r := newRegister(t)
	seedBranch(t, r.storage, "b1")
	seedProduct(t, r.storage, "coffee", 5000, 10)
	seedTable(t, r.storage, "t1")

	opened, err := r.shifts.Open(bg, shift.OpenRequest{BranchID: "b1", OperatorID: "op1", InitialCash: decimal.NewFromInt(50000)})
	require.NoError(t, err)

	_, err = r.carts.OpenTable(bg, cart.OpenTableRequest{TableID: "t1", BranchID: "b1", ShiftID: opened.Shift.ID, Diners: 2})
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err = r.carts.AddLine(bg, cart.AddLineRequest{TableID: "t1", ProductID: "coffee"})
		require.NoError(t, err)
	}

	res, err := r.sales.Checkout(bg, sale.CheckoutRequest{BranchID: "b1", TableID: "t1", PaymentMethod: sale.PaymentCash})
	require.NoError(t, err)
	assert.Empty(t, res.FinalizeError)

	stored, err := r.sales.Get(bg, res.Sale.ID)
	require.NoError(t, err)
	assert.True(t, stored.TotalAmount.Equal(decimal.NewFromInt(10000)))
	assert.Equal(t, opened.Shift.ID, stored.ShiftID)
	assert.Equal(t, "op1", stored.OperatorID)
	assert.Equal(t, 2, stored.Diners)
	assert.False(t, stored.Synced)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, 2, stored.Items[0].Quantity)

	assert.Equal(t, float64(8), stockOf(t, r.storage, "coffee"))
	assert.Equal(t, 0, countRows(t, r.storage, `SELECT COUNT(*) FROM pending_orders`))

	_, err = r.carts.Snapshot("t1")
	assert.ErrorIs(t, err, cart.ErrCartNotFound)

	closed, err := r.shifts.Close(bg, shift.CloseRequest{ShiftID: opened.Shift.ID, FinalCash: decimal.NewFromInt(60000)})
	require.NoError(t, err)
	assert.True(t, closed.Shift.ExpectedCash.Decimal.Equal(decimal.NewFromInt(60000)))
}

func TestCheckout_ConcurrentSameTable(t *testing.T) {
	r := newRegister(t)
	seedBranch(t, r.storage, "b1")
	seedProduct(t, r.storage, "coffee", 5000, 10)
	seedTable(t, r.storage, "t1")

	_, err := r.shifts.Open(bg, shift.OpenRequest{BranchID: "b1", OperatorID: "op1", InitialCash: decimal.NewFromInt(50000)})
	require.NoError(t, err)
	_, err = r.carts.OpenTable(bg, cart.OpenTableRequest{TableID: "t1", BranchID: "b1"})
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err = r.carts.AddLine(bg, cart.AddLineRequest{TableID: "t1", ProductID: "coffee"})
		require.NoError(t, err)
	}

	const attempts = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		ok   int
		errs []error
	)
	start := make(chan struct{})
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := r.sales.Checkout(bg, sale.CheckoutRequest{BranchID: "b1", TableID: "t1", PaymentMethod: sale.PaymentCash})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
				return
			}
			errs = append(errs, err)
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, ok)
	for _, err := range errs {
		assert.True(t, errors.Is(err, sale.ErrCheckoutBusy) || errors.Is(err, sale.ErrEmptyCart), err)
	}
	assert.Equal(t, 1, countRows(t, r.storage, `SELECT COUNT(*) FROM sales`))
	assert.Equal(t, float64(8), stockOf(t, r.storage, "coffee"))
	assert.Equal(t, 0, countRows(t, r.storage, `SELECT COUNT(*) FROM pending_orders`))
}

func TestCheckout_FailedSaleReleasesTable(t *testing.T) {
	r := newRegister(t)
	seedBranch(t, r.storage, "b1")
	seedProduct(t, r.storage, "coffee", 5000, 10)

	_, err := r.shifts.Open(bg, shift.OpenRequest{BranchID: "b1", InitialCash: decimal.NewFromInt(50000)})
	require.NoError(t, err)
	_, err = r.carts.AddLine(bg, cart.AddLineRequest{TableID: "t1", ProductID: "coffee"})
	require.NoError(t, err)

	_, err = r.sales.Checkout(bg, sale.CheckoutRequest{
		BranchID: "b1", TableID: "t1", PaymentMethod: sale.PaymentCash, Discount: decimal.NewFromInt(99999),
	})
	require.ErrorIs(t, err, sale.ErrInvalidDiscount)

	// корзина снова доступна для изменений и оплаты
	_, err = r.carts.AddLine(bg, cart.AddLineRequest{TableID: "t1", ProductID: "coffee"})
	require.NoError(t, err)
	_, err = r.sales.Checkout(bg, sale.CheckoutRequest{BranchID: "b1", TableID: "t1", PaymentMethod: sale.PaymentCash})
	require.NoError(t, err)
	assert.Equal(t, 1, countRows(t, r.storage, `SELECT COUNT(*) FROM sales`))
}

func TestCartRepository_TransferWithoutOrder(t *testing.T) {
	r := newRegister(t)
	seedProduct(t, r.storage, "coffee", 5000, 10)
	seedTable(t, r.storage, "t1")
	seedTable(t, r.storage, "t2")
	_, err := r.storage.DB().Exec(`UPDATE dining_tables SET status = ? WHERE id = 't1'`, catalog.TableOccupied)
	require.NoError(t, err)

	_, err = r.carts.AddLine(bg, cart.AddLineRequest{TableID: "t1", ProductID: "coffee"})
	require.NoError(t, err)
	require.NoError(t, r.carts.Transfer(bg, cart.TransferRequest{From: "t1", To: "t2"}))

	var status string
	require.NoError(t, r.storage.DB().Get(&status, `SELECT status FROM dining_tables WHERE id = 't1'`))
	assert.Equal(t, catalog.TableAvailable, status)
	require.NoError(t, r.storage.DB().Get(&status, `SELECT status FROM dining_tables WHERE id = 't2'`))
	assert.Equal(t, catalog.TableOccupied, status)
}

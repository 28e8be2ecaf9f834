package cart

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"gophregister/internal/domain/catalog"
	"gophregister/internal/utils/validate"
)

// Servicer корзины столов с резервированием остатков
type Servicer interface {
	OpenTable(ctx context.Context, req OpenTableRequest) (*Cart, error)
	AddLine(ctx context.Context, req AddLineRequest) (*Cart, error)
	UpdateQuantity(ctx context.Context, req UpdateQuantityRequest) (*Cart, error)
	RemoveLine(ctx context.Context, tableID, lineID string) (*Cart, error)
	// Clear отменяет заказ стола и возвращает товар на склад
	Clear(ctx context.Context, tableID string) error
	// Finalize удаляет заказ после успешной оплаты, склад не восстанавливается
	Finalize(ctx context.Context, tableID string) error
	Transfer(ctx context.Context, req TransferRequest) error
	Restore(ctx context.Context, branchID string) (int, error)
	Snapshot(tableID string) (*Cart, error)
	Carts() []Cart
}

// Manager держит корзины столов в памяти и зеркалит их в заказы хранилища
type Manager struct {
	repo     Repository
	products ProductLookup
	lock     Locker
	log      *slog.Logger
	now      func() time.Time

	mu    sync.Mutex
	carts map[string]*Cart
	// столы, по которым идет оплата
	claimed map[string]bool
}

// NewManager создает менеджер корзин. lock может быть nil
func NewManager(repo Repository, products ProductLookup, lock Locker, log *slog.Logger, now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{
		repo:     repo,
		products: products,
		lock:     lock,
		log:      log.With(slog.String("component", "cart")),
		now:      now,
		carts:    make(map[string]*Cart),
		claimed:  make(map[string]bool),
	}
}

// OpenTable открывает стол и создает незавершенный заказ.
// Повторное открытие возвращает текущую корзину.
func (m *Manager) OpenTable(ctx context.Context, req OpenTableRequest) (*Cart, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTableRequired, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.carts[req.TableID]
	if ok && c.OrderID != "" {
		return c.clone(), nil
	}
	if !ok {
		c = &Cart{TableID: req.TableID}
	}

	now := m.now().UTC()
	order := &PendingOrder{
		ID:            uuid.NewString(),
		TableID:       req.TableID,
		ShiftID:       req.ShiftID,
		BranchID:      req.BranchID,
		CustomerLabel: req.CustomerLabel,
		Diners:        req.Diners,
		Status:        OrderPending,
		Total:         c.Total(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if order.Diners == 0 {
		order.Diners = 1
	}

	if err := m.repo.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("create pending order: %w", err)
	}

	c.OrderID = order.ID
	c.BranchID = order.BranchID
	c.ShiftID = order.ShiftID
	c.CustomerLabel = order.CustomerLabel
	c.Diners = order.Diners
	m.carts[req.TableID] = c

	// строки, набранные до открытия стола, переносим в заказ без движения склада
	for i, l := range c.Lines {
		m.persist(ctx, LineChange{OrderID: c.OrderID, Line: pendingLine(c.OrderID, l, i), At: now})
	}

	m.log.Info("Стол открыт", slog.String("table_id", req.TableID), slog.String("order_id", order.ID))
	return c.clone(), nil
}

// AddLine добавляет товар в корзину и резервирует единицу на складе
func (m *Manager) AddLine(ctx context.Context, req AddLineRequest) (*Cart, error) {
	if m.lock != nil && m.lock.Locked() {
		return nil, ErrRegisterClosed
	}
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTableRequired, err)
	}

	product, err := m.products.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.claimed[req.TableID] {
		return nil, ErrCheckoutInProgress
	}
	c, ok := m.carts[req.TableID]
	if !ok {
		c = &Cart{TableID: req.TableID, Diners: 1}
		m.carts[req.TableID] = c
	}

	idx := c.findProduct(product.ID, req.Note)
	if idx >= 0 {
		c.Lines[idx].Quantity++
	} else {
		c.Lines = append(c.Lines, Line{
			ID:        uuid.NewString(),
			ProductID: product.ID,
			Name:      product.Name,
			Note:      req.Note,
			Quantity:  1,
			UnitPrice: product.Price,
		})
		idx = len(c.Lines) - 1
	}

	m.persist(ctx, LineChange{
		OrderID:    c.OrderID,
		Line:       pendingLine(c.OrderID, c.Lines[idx], idx),
		StockDelta: -1,
		At:         m.now().UTC(),
	})

	return c.clone(), nil
}

func (m *Manager) UpdateQuantity(ctx context.Context, req UpdateQuantityRequest) (*Cart, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLineNotFound, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.claimed[req.TableID] {
		return nil, ErrCheckoutInProgress
	}
	c, ok := m.carts[req.TableID]
	if !ok {
		return nil, ErrCartNotFound
	}
	idx := c.find(req.LineID)
	if idx < 0 {
		return nil, ErrLineNotFound
	}
	if req.Delta == 0 {
		return c.clone(), nil
	}

	line := c.Lines[idx]
	delta := req.Delta
	if line.Quantity+delta <= 0 {
		// на склад возвращается не больше, чем было в строке
		delta = -line.Quantity
	}
	line.Quantity += delta

	change := LineChange{
		OrderID:    c.OrderID,
		Line:       pendingLine(c.OrderID, line, idx),
		StockDelta: float64(-delta),
		At:         m.now().UTC(),
	}

	if line.Quantity <= 0 {
		change.Delete = true
		c.Lines = append(c.Lines[:idx], c.Lines[idx+1:]...)
	} else {
		c.Lines[idx] = line
	}

	m.persist(ctx, change)
	return c.clone(), nil
}

func (m *Manager) RemoveLine(ctx context.Context, tableID, lineID string) (*Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.claimed[tableID] {
		return nil, ErrCheckoutInProgress
	}
	c, ok := m.carts[tableID]
	if !ok {
		return nil, ErrCartNotFound
	}
	idx := c.find(lineID)
	if idx < 0 {
		return nil, ErrLineNotFound
	}

	line := c.Lines[idx]
	c.Lines = append(c.Lines[:idx], c.Lines[idx+1:]...)

	m.persist(ctx, LineChange{
		OrderID:    c.OrderID,
		Line:       pendingLine(c.OrderID, line, idx),
		Delete:     true,
		StockDelta: float64(line.Quantity),
		At:         m.now().UTC(),
	})

	return c.clone(), nil
}

// Clear отменяет заказ стола и возвращает товар на склад
func (m *Manager) Clear(ctx context.Context, tableID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.claimed[tableID] {
		return ErrCheckoutInProgress
	}
	c, ok := m.carts[tableID]
	if !ok {
		return ErrCartNotFound
	}
	delete(m.carts, tableID)

	d := Discard{
		OrderID:  c.OrderID,
		TableID:  c.TableID,
		BranchID: c.BranchID,
		Restock:  restock(c.Lines),
	}
	if err := m.repo.DiscardOrder(ctx, d); err != nil {
		m.log.Error("Не удалось отменить заказ стола",
			slog.String("table_id", tableID),
			slog.String("order_id", c.OrderID),
			slog.Any("error", err),
		)
	}

	m.log.Info("Корзина очищена", slog.String("table_id", tableID), slog.Int("units", c.Units()))
	return nil
}

// Finalize удаляет заказ после оплаты без возврата на склад
func (m *Manager) Finalize(ctx context.Context, tableID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.carts[tableID]
	if !ok {
		return ErrCartNotFound
	}
	delete(m.carts, tableID)
	delete(m.claimed, tableID)

	d := Discard{
		OrderID:  c.OrderID,
		TableID:  c.TableID,
		BranchID: c.BranchID,
	}
	if err := m.repo.DiscardOrder(ctx, d); err != nil {
		return fmt.Errorf("finalize order %s: %w", c.OrderID, err)
	}
	return nil
}

// Transfer переносит корзину на свободный стол
func (m *Manager) Transfer(ctx context.Context, req TransferRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", ErrTableRequired, err)
	}
	if req.From == req.To {
		return ErrSameTable
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.claimed[req.From] || m.claimed[req.To] {
		return ErrCheckoutInProgress
	}
	c, ok := m.carts[req.From]
	if !ok {
		return ErrCartNotFound
	}
	if dst, ok := m.carts[req.To]; ok && (dst.OrderID != "" || !dst.Empty()) {
		return ErrTableOccupied
	}

	status, err := m.repo.TableStatus(ctx, req.To)
	if err != nil {
		return fmt.Errorf("table status: %w", err)
	}
	if status == catalog.TableOccupied {
		return ErrTableOccupied
	}

	if c.OrderID != "" {
		if err := m.repo.MoveOrder(ctx, c.OrderID, req.From, req.To); err != nil {
			return fmt.Errorf("move order: %w", err)
		}
	} else if err := m.repo.MoveTable(ctx, req.From, req.To); err != nil {
		return fmt.Errorf("move table: %w", err)
	}

	delete(m.carts, req.From)
	c.TableID = req.To
	m.carts[req.To] = c

	m.log.Info("Заказ перенесен", slog.String("from", req.From), slog.String("to", req.To))
	return nil
}

// Restore поднимает корзины из незавершенных заказов после перезапуска
func (m *Manager) Restore(ctx context.Context, branchID string) (int, error) {
	orders, err := m.repo.ListPending(ctx, branchID)
	if err != nil {
		return 0, fmt.Errorf("list pending orders: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	restored := 0
	for _, o := range orders {
		if _, ok := m.carts[o.TableID]; ok {
			continue
		}
		c := &Cart{
			TableID:       o.TableID,
			OrderID:       o.ID,
			BranchID:      o.BranchID,
			ShiftID:       o.ShiftID,
			CustomerLabel: o.CustomerLabel,
			Diners:        o.Diners,
		}
		for _, l := range o.Lines {
			c.Lines = append(c.Lines, Line{
				ID:        l.ID,
				ProductID: l.ProductID,
				Name:      l.Name,
				Note:      l.Note,
				Quantity:  l.Quantity,
				UnitPrice: l.UnitPrice,
			})
		}
		m.carts[o.TableID] = c
		restored++
	}

	if restored > 0 {
		m.log.Info("Корзины восстановлены", slog.Int("count", restored))
	}
	return restored, nil
}

// Claim закрепляет корзину стола за оплатой и возвращает ее копию.
// До Finalize или Release корзину нельзя менять, повторный Claim
// возвращает ErrCheckoutInProgress.
func (m *Manager) Claim(tableID string) (*Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.carts[tableID]
	if !ok {
		return nil, ErrCartNotFound
	}
	if m.claimed[tableID] {
		return nil, ErrCheckoutInProgress
	}
	m.claimed[tableID] = true
	return c.clone(), nil
}

// Release снимает закрепление, если оплата не состоялась
func (m *Manager) Release(tableID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.claimed, tableID)
}

// Snapshot копия корзины стола
func (m *Manager) Snapshot(tableID string) (*Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.carts[tableID]
	if !ok {
		return nil, ErrCartNotFound
	}
	return c.clone(), nil
}

func (m *Manager) Carts() []Cart {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Cart, 0, len(m.carts))
	for _, c := range m.carts {
		out = append(out, *c.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TableID < out[j].TableID })
	return out
}

// persist пишет изменение в локальное хранилище. Ошибка не откатывает
// корзину в памяти: касса продолжает работать, расхождение видно в логах.
func (m *Manager) persist(ctx context.Context, ch LineChange) {
	if err := m.repo.ApplyLine(ctx, ch); err != nil {
		m.log.Error("Не удалось сохранить строку заказа",
			slog.String("order_id", ch.OrderID),
			slog.String("product_id", ch.Line.ProductID),
			slog.Float64("stock_delta", ch.StockDelta),
			slog.Any("error", err),
		)
	}
}

func pendingLine(orderID string, l Line, pos int) PendingOrderLine {
	return PendingOrderLine{
		ID:        l.ID,
		OrderID:   orderID,
		ProductID: l.ProductID,
		Name:      l.Name,
		Note:      l.Note,
		Quantity:  l.Quantity,
		UnitPrice: l.UnitPrice,
		Total:     l.Total(),
		Position:  pos,
	}
}

func restock(lines []Line) []StockDelta {
	byProduct := make(map[string]float64, len(lines))
	order := make([]string, 0, len(lines))
	for _, l := range lines {
		if _, ok := byProduct[l.ProductID]; !ok {
			order = append(order, l.ProductID)
		}
		byProduct[l.ProductID] += float64(l.Quantity)
	}

	out := make([]StockDelta, 0, len(order))
	for _, id := range order {
		out = append(out, StockDelta{ProductID: id, Delta: byProduct[id]})
	}
	return out
}

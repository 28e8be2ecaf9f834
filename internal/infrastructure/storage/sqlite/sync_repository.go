package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/exp/slog"

	"gophregister/internal/domain/catalog"
	"gophregister/internal/domain/delivery"
	"gophregister/internal/domain/expense"
	"gophregister/internal/domain/sale"
	"gophregister/internal/domain/shift"
	domainsync "gophregister/internal/domain/sync"
)

var syncTables = map[string]string{
	domainsync.EntityShifts:     "shifts",
	domainsync.EntitySales:      "sales",
	domainsync.EntityExpenses:   "expenses",
	domainsync.EntityDeliveries: "deliveries",
	domainsync.EntityClients:    "clients",
}

type SyncRepository struct {
	s   *Storage
	log *slog.Logger
}

func NewSyncRepository(s *Storage, log *slog.Logger) *SyncRepository {
	return &SyncRepository{
		s:   s,
		log: log.With(slog.String("component", "sync_repository")),
	}
}

func (r *SyncRepository) ApplySnapshot(ctx context.Context, branchID string, snap *domainsync.Snapshot) (*domainsync.ApplyStats, error) {
	stats := &domainsync.ApplyStats{}

	err := r.s.write(ctx, func(tx *sqlx.Tx) error {
		steps := []func(context.Context, *sqlx.Tx, *domainsync.Snapshot, *domainsync.ApplyStats) error{
			upsertBranches,
			upsertProfiles,
			upsertTables,
			upsertProducts,
			upsertExpenses,
			upsertSales,
			upsertDeliveries,
			upsertRappi,
		}
		for _, step := range steps {
			if err := step(ctx, tx, snap, stats); err != nil {
				return err
			}
		}

		n, err := relinkOrphanSales(ctx, tx, branchID)
		if err != nil {
			return err
		}
		stats.Relinked = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func upsertBranches(ctx context.Context, tx *sqlx.Tx, snap *domainsync.Snapshot, stats *domainsync.ApplyStats) error {
	for _, b := range snap.Branches {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO branches (id, name, address, updated_at)
			VALUES (:id, :name, :address, :updated_at)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				address = excluded.address,
				updated_at = excluded.updated_at`, b)
		if err != nil {
			return fmt.Errorf("upsert branch %s: %w", b.ID, err)
		}
		stats.Upserted++
	}
	return nil
}

func upsertProfiles(ctx context.Context, tx *sqlx.Tx, snap *domainsync.Snapshot, stats *domainsync.ApplyStats) error {
	for _, p := range snap.Profiles {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO profiles (id, full_name, role, branch_id, updated_at)
			VALUES (:id, :full_name, :role, :branch_id, :updated_at)
			ON CONFLICT(id) DO UPDATE SET
				full_name = excluded.full_name,
				role = excluded.role,
				branch_id = excluded.branch_id,
				updated_at = excluded.updated_at`, p)
		if err != nil {
			return fmt.Errorf("upsert profile %s: %w", p.ID, err)
		}
		stats.Upserted++
	}
	return nil
}

// столы с открытым заказом остаются занятыми независимо от облака
func upsertTables(ctx context.Context, tx *sqlx.Tx, snap *domainsync.Snapshot, stats *domainsync.ApplyStats) error {
	for _, t := range snap.Tables {
		if t.Status == "" {
			t.Status = catalog.TableAvailable
		}
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO dining_tables (id, branch_id, name, status, updated_at)
			VALUES (:id, :branch_id, :name, :status, :updated_at)
			ON CONFLICT(id) DO UPDATE SET
				branch_id = excluded.branch_id,
				name = excluded.name,
				status = CASE
					WHEN EXISTS (SELECT 1 FROM pending_orders po
					             WHERE po.table_id = dining_tables.id AND po.status = 'pending')
					THEN dining_tables.status
					ELSE excluded.status
				END,
				updated_at = excluded.updated_at`, t)
		if err != nil {
			return fmt.Errorf("upsert table %s: %w", t.ID, err)
		}
		stats.Upserted++
	}
	return nil
}

// остаток товара, зарезервированного в корзинах или в невыгруженных
// продажах, не перезаписывается: облако его еще не видело
func upsertProducts(ctx context.Context, tx *sqlx.Tx, snap *domainsync.Snapshot, stats *domainsync.ApplyStats) error {
	if len(snap.Products) == 0 {
		return nil
	}

	var reservedIDs []string
	err := tx.SelectContext(ctx, &reservedIDs, `
		SELECT product_id FROM pending_order_lines
		UNION
		SELECT si.product_id FROM sale_items si JOIN sales s ON s.id = si.sale_id WHERE s.synced = 0`)
	if err != nil {
		return fmt.Errorf("reserved products: %w", err)
	}
	reserved := make(map[string]struct{}, len(reservedIDs))
	for _, id := range reservedIDs {
		reserved[id] = struct{}{}
	}

	for _, p := range snap.Products {
		stockExpr := "excluded.stock"
		if _, ok := reserved[p.ID]; ok {
			stockExpr = "products.stock"
			stats.KeptStock++
		}
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO products (`+productColumns+`)
			VALUES (:id, :branch_id, :name, :category, :price, :stock, :active, :updated_at)
			ON CONFLICT(id) DO UPDATE SET
				branch_id = excluded.branch_id,
				name = excluded.name,
				category = excluded.category,
				price = excluded.price,
				stock = `+stockExpr+`,
				active = excluded.active,
				updated_at = excluded.updated_at`, p)
		if err != nil {
			return fmt.Errorf("upsert product %s: %w", p.ID, err)
		}
		stats.Upserted++
	}
	return nil
}

func upsertExpenses(ctx context.Context, tx *sqlx.Tx, snap *domainsync.Snapshot, stats *domainsync.ApplyStats) error {
	for _, e := range snap.Expenses {
		e.CreatedAt = e.CreatedAt.UTC()
		res, err := tx.NamedExecContext(ctx, `
			INSERT INTO expenses (`+expenseColumns+`)
			VALUES (:id, :branch_id, :shift_id, :amount, :description, :category, :voucher, 1, :created_at)
			ON CONFLICT(id) DO UPDATE SET
				branch_id = excluded.branch_id,
				shift_id = excluded.shift_id,
				amount = excluded.amount,
				description = excluded.description,
				category = excluded.category,
				voucher = excluded.voucher,
				created_at = excluded.created_at
			WHERE expenses.synced = 1`, e)
		if err != nil {
			return fmt.Errorf("upsert expense %s: %w", e.ID, err)
		}
		countUpsert(res, stats)
	}
	return nil
}

func upsertSales(ctx context.Context, tx *sqlx.Tx, snap *domainsync.Snapshot, stats *domainsync.ApplyStats) error {
	for i := range snap.Sales {
		sl := &snap.Sales[i]
		res, err := tx.ExecContext(ctx, `
			INSERT INTO sales (`+saleColumns+`)
			VALUES (?, ?, ?, ?, '', ?, ?, ?, ?, ?, 1, ?)
			ON CONFLICT(id) DO UPDATE SET
				branch_id = excluded.branch_id,
				shift_id = CASE WHEN excluded.shift_id = '' THEN sales.shift_id ELSE excluded.shift_id END,
				operator_id = excluded.operator_id,
				total_amount = excluded.total_amount,
				payment_method = excluded.payment_method,
				tip_amount = excluded.tip_amount,
				discount_amount = excluded.discount_amount,
				diners = excluded.diners,
				created_at = excluded.created_at
			WHERE sales.synced = 1`,
			sl.ID, sl.BranchID, sl.ShiftID, sl.OperatorID, sl.TotalAmount, sl.PaymentMethod,
			sl.TipAmount, sl.DiscountAmount, sl.Diners, sl.CreatedAt.UTC())
		if err != nil {
			return fmt.Errorf("upsert sale %s: %w", sl.ID, err)
		}
		if !countUpsert(res, stats) {
			continue
		}

		if len(sl.Items) == 0 {
			continue
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM sale_items WHERE sale_id = ?`, sl.ID); err != nil {
			return fmt.Errorf("replace sale items: %w", err)
		}
		for j := range sl.Items {
			sl.Items[j].SaleID = sl.ID
		}
		if err := insertSaleItems(ctx, tx, sl.Items); err != nil {
			return err
		}
	}
	return nil
}

func upsertDeliveries(ctx context.Context, tx *sqlx.Tx, snap *domainsync.Snapshot, stats *domainsync.ApplyStats) error {
	for _, d := range snap.Deliveries {
		if d.Status == "" {
			d.Status = delivery.StatusPending
		}
		d.CreatedAt = d.CreatedAt.UTC()
		d.UpdatedAt = d.UpdatedAt.UTC()
		res, err := tx.NamedExecContext(ctx, `
			INSERT INTO deliveries (`+deliveryColumns+`)
			VALUES (:id, :branch_id, :shift_id, :client_id, :address, :status, :fee, :total, 1,
			        :created_at, :updated_at)
			ON CONFLICT(id) DO UPDATE SET
				branch_id = excluded.branch_id,
				shift_id = excluded.shift_id,
				client_id = excluded.client_id,
				address = excluded.address,
				status = excluded.status,
				fee = excluded.fee,
				total = excluded.total,
				updated_at = excluded.updated_at
			WHERE deliveries.synced = 1`, d)
		if err != nil {
			return fmt.Errorf("upsert delivery %s: %w", d.ID, err)
		}
		countUpsert(res, stats)
	}
	return nil
}

func upsertRappi(ctx context.Context, tx *sqlx.Tx, snap *domainsync.Snapshot, stats *domainsync.ApplyStats) error {
	for _, d := range snap.RappiDeliveries {
		d.CreatedAt = d.CreatedAt.UTC()
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO rappi_deliveries (`+rappiColumns+`)
			VALUES (:id, :branch_id, :order_ref, :status, :total, :created_at, :updated_at)
			ON CONFLICT(id) DO UPDATE SET
				branch_id = excluded.branch_id,
				order_ref = excluded.order_ref,
				status = excluded.status,
				total = excluded.total,
				updated_at = excluded.updated_at`, d)
		if err != nil {
			return fmt.Errorf("upsert rappi delivery %s: %w", d.ID, err)
		}
		stats.Upserted++
	}
	return nil
}

// relinkOrphanSales привязывает продажи без смены к открытой смене филиала,
// если они сделаны после ее начала
func relinkOrphanSales(ctx context.Context, tx *sqlx.Tx, branchID string) (int, error) {
	var open shift.Shift
	err := tx.GetContext(ctx, &open,
		`SELECT `+shiftColumns+` FROM shifts WHERE branch_id = ? AND status = ? LIMIT 1`,
		branchID, shift.StatusOpen)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("open shift: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE sales SET shift_id = ?, revision = revision + 1
		WHERE branch_id = ? AND shift_id = '' AND created_at >= ?`,
		open.ID, branchID, open.StartTime)
	if err != nil {
		return 0, fmt.Errorf("relink orphan sales: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// countUpsert учитывает строку как примененную или пропущенную из-за
// локальных невыгруженных изменений
func countUpsert(res sql.Result, stats *domainsync.ApplyStats) bool {
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		stats.SkippedDirty++
		return false
	}
	stats.Upserted++
	return true
}

func (r *SyncRepository) Prune(ctx context.Context, before time.Time) (int64, error) {
	statements := []struct {
		query string
		args  []any
	}{
		{`DELETE FROM sales WHERE synced = 1 AND created_at < ?`, []any{before}},
		{`DELETE FROM expenses WHERE synced = 1 AND created_at < ?`, []any{before}},
		{`DELETE FROM deliveries WHERE synced = 1 AND created_at < ?`, []any{before}},
		{`DELETE FROM rappi_deliveries WHERE created_at < ?`, []any{before}},
		{`DELETE FROM shifts WHERE synced = 1 AND status = ? AND start_time < ?`, []any{shift.StatusClosed, before}},
	}

	var total int64
	err := r.s.write(ctx, func(tx *sqlx.Tx) error {
		for _, st := range statements {
			res, err := tx.ExecContext(ctx, st.query, st.args...)
			if err != nil {
				return fmt.Errorf("prune: %w", err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			total += n
		}
		return nil
	})
	return total, err
}

func (r *SyncRepository) BranchExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := r.s.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM branches WHERE id = ?)`, id); err != nil {
		return false, fmt.Errorf("branch exists: %w", err)
	}
	return exists, nil
}

// Строки пакета вместе с ревизией, прочитанной тем же запросом
type (
	revShift struct {
		shift.Shift
		Revision int64 `db:"revision"`
	}
	revSale struct {
		sale.Sale
		Revision int64 `db:"revision"`
	}
	revExpense struct {
		expense.Expense
		Revision int64 `db:"revision"`
	}
	revDelivery struct {
		delivery.Delivery
		Revision int64 `db:"revision"`
	}
	revClient struct {
		delivery.Client
		Revision int64 `db:"revision"`
	}
)

func (r *SyncRepository) Unsynced(ctx context.Context, branchID string) (*domainsync.Batch, error) {
	db := r.s.db
	b := &domainsync.Batch{BranchID: branchID}

	var shifts []revShift
	if err := db.SelectContext(ctx, &shifts,
		`SELECT `+shiftColumns+`, revision FROM shifts WHERE branch_id = ? AND synced = 0 ORDER BY created_at`, branchID); err != nil {
		return nil, fmt.Errorf("unsynced shifts: %w", err)
	}
	for _, row := range shifts {
		b.Shifts = append(b.Shifts, row.Shift)
		b.SetRevision(domainsync.EntityShifts, row.ID, row.Revision)
	}

	var saleRows []revSale
	if err := db.SelectContext(ctx, &saleRows,
		`SELECT `+saleColumns+`, revision FROM sales WHERE branch_id = ? AND synced = 0 ORDER BY created_at`, branchID); err != nil {
		return nil, fmt.Errorf("unsynced sales: %w", err)
	}
	sales := make([]sale.Sale, 0, len(saleRows))
	for _, row := range saleRows {
		sales = append(sales, row.Sale)
		b.SetRevision(domainsync.EntitySales, row.ID, row.Revision)
	}
	if err := attachItems(ctx, db, sales); err != nil {
		return nil, err
	}
	if len(sales) > 0 {
		b.Sales = sales
	}

	var expenses []revExpense
	if err := db.SelectContext(ctx, &expenses,
		`SELECT `+expenseColumns+`, revision FROM expenses WHERE branch_id = ? AND synced = 0 ORDER BY created_at`, branchID); err != nil {
		return nil, fmt.Errorf("unsynced expenses: %w", err)
	}
	for _, row := range expenses {
		b.Expenses = append(b.Expenses, row.Expense)
		b.SetRevision(domainsync.EntityExpenses, row.ID, row.Revision)
	}

	var deliveries []revDelivery
	if err := db.SelectContext(ctx, &deliveries,
		`SELECT `+deliveryColumns+`, revision FROM deliveries WHERE branch_id = ? AND synced = 0 ORDER BY created_at`, branchID); err != nil {
		return nil, fmt.Errorf("unsynced deliveries: %w", err)
	}
	for _, row := range deliveries {
		b.Deliveries = append(b.Deliveries, row.Delivery)
		b.SetRevision(domainsync.EntityDeliveries, row.ID, row.Revision)
	}

	var clients []revClient
	if err := db.SelectContext(ctx, &clients,
		`SELECT `+clientColumns+`, revision FROM clients WHERE synced = 0 ORDER BY created_at`); err != nil {
		return nil, fmt.Errorf("unsynced clients: %w", err)
	}
	for _, row := range clients {
		b.Clients = append(b.Clients, row.Client)
		b.SetRevision(domainsync.EntityClients, row.ID, row.Revision)
	}

	orders, err := pendingOrders(ctx, db, branchID)
	if err != nil {
		return nil, err
	}
	b.Orders = orders

	return b, nil
}

func (r *SyncRepository) MarkSynced(ctx context.Context, entity string, ids []string) error {
	table, ok := syncTables[entity]
	if !ok {
		return fmt.Errorf("unknown sync entity %q", entity)
	}
	if len(ids) == 0 {
		return nil
	}

	query, args, err := sqlx.In(`UPDATE `+table+` SET synced = 1 WHERE id IN (?)`, ids)
	if err != nil {
		return err
	}
	return r.s.write(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, query, args...)
		return err
	})
}

func (r *SyncRepository) AckSynced(ctx context.Context, entity string, acks []domainsync.Ack) (int, error) {
	table, ok := syncTables[entity]
	if !ok {
		return 0, fmt.Errorf("unknown sync entity %q", entity)
	}
	if len(acks) == 0 {
		return 0, nil
	}

	marked := 0
	err := r.s.write(ctx, func(tx *sqlx.Tx) error {
		marked = 0
		stmt, err := tx.PreparexContext(ctx, `UPDATE `+table+` SET synced = 1 WHERE id = ? AND revision = ?`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, a := range acks {
			res, err := stmt.ExecContext(ctx, a.ID, a.Revision)
			if err != nil {
				return fmt.Errorf("ack %s %s: %w", entity, a.ID, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			marked += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if skipped := len(acks) - marked; skipped > 0 {
		r.log.Debug("Пропущены подтверждения устаревших ревизий",
			slog.String("entity", entity),
			slog.Int("skipped", skipped),
		)
	}
	return marked, nil
}

func (r *SyncRepository) PendingCounts(ctx context.Context, branchID string) (map[string]int, error) {
	counts := make(map[string]int, len(syncTables))
	for entity, table := range syncTables {
		query := `SELECT COUNT(*) FROM ` + table + ` WHERE synced = 0`
		args := []any{}
		if entity != domainsync.EntityClients {
			query += ` AND branch_id = ?`
			args = append(args, branchID)
		}
		var n int
		if err := r.s.db.GetContext(ctx, &n, query, args...); err != nil {
			return nil, fmt.Errorf("count unsynced %s: %w", entity, err)
		}
		counts[entity] = n
	}
	return counts, nil
}
